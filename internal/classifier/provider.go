package classifier

import (
	"errors"
	"fmt"

	"github.com/agroecology/cropvision/internal/domain"
)

// Provider constants
const (
	ProviderHTTP = "http"
	ProviderMock = "mock"
)

// ErrNotConfigured is returned by NewClient when no model server is set.
var ErrNotConfigured = errors.New("crop classifier not configured")

// NewClient creates a crop classifier based on the provider name.
// Returns ErrNotConfigured if the http provider has no URL.
func NewClient(provider, baseURL, apiKey string) (domain.CropClassifier, error) {
	switch provider {
	case ProviderHTTP, "":
		if baseURL == "" {
			return nil, ErrNotConfigured
		}
		return NewHTTPClient(baseURL, apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (valid options: http, mock)", provider)
	}
}
