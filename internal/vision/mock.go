package vision

import (
	"context"
	"sync"

	"github.com/agroecology/cropvision/internal/domain"
)

// MockClient is a configurable vision client for testing and demos.
// Set Response and Error to control what Identify returns.
type MockClient struct {
	Response *domain.VisionResponse
	Error    error
	// Block, when set, makes Identify wait for it to close or for ctx.
	Block chan struct{}
	// Panic, when set, makes Identify panic with this value.
	Panic any

	mu sync.Mutex
	// Call tracking for assertions
	Calls []domain.VisionRequest
}

// NewMockClient returns a client answering with one high-confidence
// disease suggestion.
func NewMockClient() *MockClient {
	return &MockClient{
		Response: &domain.VisionResponse{
			Success:         true,
			ConfidenceLevel: domain.ConfidenceHigh,
			APISource:       "mock",
			Suggestions: []domain.VisionSuggestion{
				{
					Disease: &domain.DiseaseAssessment{
						Suggestions: []domain.DiseaseSuggestion{
							{
								Name:        "Late Blight",
								Probability: 0.92,
								Details: domain.DiseaseDetails{
									Description: "Mock late blight detection",
									EntityName:  "Phytophthora infestans",
								},
							},
						},
					},
				},
			},
		},
	}
}

func (c *MockClient) Identify(ctx context.Context, req domain.VisionRequest) (*domain.VisionResponse, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, req)
	c.mu.Unlock()

	if c.Panic != nil {
		panic(c.Panic)
	}
	if c.Block != nil {
		select {
		case <-c.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.Error != nil {
		return nil, c.Error
	}
	return c.Response, nil
}

func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}
