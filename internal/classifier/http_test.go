package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Predict(t *testing.T) {
	var got domain.CropFeatures
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"crop":"maize","top3":[{"crop":"maize","prob":0.6}],"probs":{"maize":0.6},"model_version":"rf-2"}`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL+"/", "secret")
	f := domain.CropFeatures{N: 80, P: 40, K: 20, Temperature: 24, Humidity: 60, PH: 6.2, Rainfall: 80}
	pred, err := c.Predict(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, f, got)
	assert.Equal(t, "maize", pred.Crop)
	assert.Equal(t, "rf-2", pred.ModelVersion)
	assert.Equal(t, []domain.CropProbability{{Crop: "maize", Prob: 0.6}}, pred.Top3)
	assert.Nil(t, pred.SoilSpecificAdvice)
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"error payload", http.StatusOK, `{"error":{"message":"model not loaded"}}`},
		{"no crop", http.StatusOK, `{"probs":{}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewHTTPClient(ts.URL, "").Predict(context.Background(), domain.CropFeatures{})
			assert.Error(t, err)
		})
	}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ProviderHTTP, "", "")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	c, err := NewClient("", "http://model:9000", "")
	require.NoError(t, err)
	assert.IsType(t, &HTTPClient{}, c)

	c, err = NewClient(ProviderMock, "", "")
	require.NoError(t, err)
	pred, err := c.Predict(context.Background(), domain.CropFeatures{})
	require.NoError(t, err)
	assert.Equal(t, "rice", pred.Crop)

	_, err = NewClient("tensorflow", "", "")
	assert.Error(t, err)
}

func TestMockClient_ReturnsCopies(t *testing.T) {
	m := NewMockClient()
	a, _ := m.Predict(context.Background(), domain.CropFeatures{N: 1})
	a.SoilSpecificAdvice = &domain.SoilAdvice{}

	b, _ := m.Predict(context.Background(), domain.CropFeatures{N: 2})
	assert.Nil(t, b.SoilSpecificAdvice)
	assert.Len(t, m.Calls, 2)

	m.Error = errors.New("down")
	_, err := m.Predict(context.Background(), domain.CropFeatures{})
	assert.Error(t, err)
}
