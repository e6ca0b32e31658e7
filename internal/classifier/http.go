package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agroecology/cropvision/internal/domain"
)

const defaultTimeout = 15 * time.Second

// HTTPClient asks a remote model server for a crop recommendation.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type predictResponse struct {
	Crop         string                   `json:"crop"`
	Top3         []domain.CropProbability `json:"top3"`
	Probs        map[string]float64       `json:"probs"`
	ModelVersion string                   `json:"model_version"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *HTTPClient) Predict(ctx context.Context, f domain.CropFeatures) (*domain.CropPrediction, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result predictResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal predict response: %w", err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("model server error: %s", result.Error.Message)
	}

	if result.Crop == "" {
		return nil, fmt.Errorf("model server returned no crop")
	}

	top3 := result.Top3
	if top3 == nil {
		top3 = []domain.CropProbability{}
	}
	probs := result.Probs
	if probs == nil {
		probs = map[string]float64{}
	}
	return &domain.CropPrediction{
		Crop:         result.Crop,
		Top3:         top3,
		Probs:        probs,
		ModelVersion: result.ModelVersion,
	}, nil
}
