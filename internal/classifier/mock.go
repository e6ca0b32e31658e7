package classifier

import (
	"context"
	"sync"

	"github.com/agroecology/cropvision/internal/domain"
)

// MockClient is a configurable crop classifier for testing and demos.
// Set Response and Error to control what Predict returns.
type MockClient struct {
	Response *domain.CropPrediction
	Error    error

	mu sync.Mutex
	// Call tracking for assertions
	Calls []domain.CropFeatures
}

func NewMockClient() *MockClient {
	return &MockClient{
		Response: &domain.CropPrediction{
			Crop: "rice",
			Top3: []domain.CropProbability{
				{Crop: "rice", Prob: 0.82},
				{Crop: "jute", Prob: 0.11},
				{Crop: "maize", Prob: 0.04},
			},
			Probs:        map[string]float64{"rice": 0.82, "jute": 0.11, "maize": 0.04},
			ModelVersion: "mock",
		},
	}
}

func (c *MockClient) Predict(_ context.Context, f domain.CropFeatures) (*domain.CropPrediction, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, f)
	c.mu.Unlock()

	if c.Error != nil {
		return nil, c.Error
	}
	// Callers may attach advice; hand out a copy.
	out := *c.Response
	return &out, nil
}
