package vision

import (
	"errors"
	"fmt"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

// Provider constants
const (
	ProviderPlantID = "plantid"
	ProviderMock    = "mock"
	ProviderNone    = "none"
)

// ErrProviderDisabled is returned by NewClient when no remote provider is
// configured. Callers run on the local fallback alone.
var ErrProviderDisabled = errors.New("vision provider disabled")

type Config struct {
	Provider     string
	APIKey       string
	BaseURL      string
	MaxPerMinute int
	MaxPerDay    int
}

// NewClient creates the primary vision client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(cfg Config, logger *zap.Logger) (domain.VisionClient, error) {
	switch cfg.Provider {
	case ProviderPlantID, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("PLANT_ID_API_KEY is required for Plant.id provider")
		}
		c := NewPlantIDClient(cfg.APIKey, NewQuota(cfg.MaxPerMinute, cfg.MaxPerDay), logger)
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		return c, nil

	case ProviderMock:
		return NewMockClient(), nil

	case ProviderNone:
		return nil, ErrProviderDisabled

	default:
		return nil, fmt.Errorf("unknown vision provider: %s (valid options: plantid, mock, none)", cfg.Provider)
	}
}
