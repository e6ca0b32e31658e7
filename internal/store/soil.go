package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

// ParseSoilCatalog decodes a soil catalog document. Soil and crop keys are
// lowercased so lookups are case-insensitive.
func ParseSoilCatalog(data []byte) (*domain.SoilCatalog, error) {
	var raw domain.SoilCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode soil catalog: %w", err)
	}

	c := &domain.SoilCatalog{
		SoilTypes:           make(map[string]domain.SoilType, len(raw.SoilTypes)),
		CompatibilityMatrix: make(map[string]map[string]domain.Compatibility, len(raw.CompatibilityMatrix)),
	}
	for k, v := range raw.SoilTypes {
		c.SoilTypes[strings.ToLower(k)] = v
	}
	for crop, soils := range raw.CompatibilityMatrix {
		row := make(map[string]domain.Compatibility, len(soils))
		for soil, compat := range soils {
			row[strings.ToLower(soil)] = compat
		}
		c.CompatibilityMatrix[strings.ToLower(crop)] = row
	}
	return c, nil
}

// LoadSoilCatalog reads the soil catalog at path. A missing or malformed
// file yields an empty catalog.
func LoadSoilCatalog(path string, logger *zap.Logger) *domain.SoilCatalog {
	empty := &domain.SoilCatalog{}
	if path == "" {
		return empty
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("soil catalog not readable, soil advice disabled",
			zap.String("path", path), zap.Error(err))
		return empty
	}
	c, err := ParseSoilCatalog(data)
	if err != nil {
		logger.Warn("soil catalog malformed, soil advice disabled",
			zap.String("path", path), zap.Error(err))
		return empty
	}
	logger.Info("soil catalog loaded",
		zap.String("path", path),
		zap.Int("soil_types", len(c.SoilTypes)),
		zap.Int("crops", len(c.CompatibilityMatrix)))
	return c
}
