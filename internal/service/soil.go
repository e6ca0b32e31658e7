package service

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultCompatibilityCacheSize = 256
	DefaultCompatibilityScore     = 0.5

	lowCompatibilityScore = 0.5
)

type soilCropKey struct {
	crop string
	soil string
}

// SoilService answers soil and crop-compatibility questions from an
// immutable catalog. Lookups are memoized in bounded caches owned by the
// service.
type SoilService struct {
	catalog *domain.SoilCatalog
	compat  *boundedCache[soilCropKey, domain.Compatibility]
	soils   *boundedCache[string, *domain.SoilType]
	logger  *zap.Logger
}

func NewSoilService(catalog *domain.SoilCatalog, cacheSize int, logger *zap.Logger) *SoilService {
	if catalog == nil {
		catalog = &domain.SoilCatalog{}
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCompatibilityCacheSize
	}
	return &SoilService{
		catalog: catalog,
		compat:  newBoundedCache[soilCropKey, domain.Compatibility](cacheSize),
		soils:   newBoundedCache[string, *domain.SoilType](cacheSize),
		logger:  logger,
	}
}

func (s *SoilService) Loaded() bool {
	return s.catalog.Loaded()
}

// SoilTypes lists the known soil type keys in sorted order.
func (s *SoilService) SoilTypes() []string {
	out := make([]string, 0, len(s.catalog.SoilTypes))
	for k := range s.catalog.SoilTypes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *SoilService) SoilType(soil string) (domain.SoilType, bool) {
	key := normalize(soil)
	st := s.soils.GetOrCompute(key, func() *domain.SoilType {
		if v, ok := s.catalog.SoilTypes[key]; ok {
			return &v
		}
		return nil
	})
	if st == nil {
		return domain.SoilType{}, false
	}
	return *st, true
}

func (s *SoilService) ValidSoilType(soil string) bool {
	_, ok := s.SoilType(soil)
	return ok
}

// Compatibility returns the catalog score for growing crop in soil. Pairs
// missing from the catalog get a neutral score and a warning.
func (s *SoilService) Compatibility(crop, soil string) domain.Compatibility {
	key := soilCropKey{crop: normalize(crop), soil: normalize(soil)}
	return s.compat.GetOrCompute(key, func() domain.Compatibility {
		if c, ok := s.catalog.CompatibilityMatrix[key.crop][key.soil]; ok {
			if c.Warnings == nil {
				c.Warnings = []string{}
			}
			return c
		}
		return domain.Compatibility{
			Score:    DefaultCompatibilityScore,
			Warnings: []string{fmt.Sprintf("Compatibility data not available for %s in %s soil", crop, soil)},
		}
	})
}

func (s *SoilService) SuitableCrops(soil string) []string {
	st, _ := s.SoilType(soil)
	return nonNil(st.SuitableCrops)
}

func (s *SoilService) Characteristics(soil string) []string {
	st, _ := s.SoilType(soil)
	return nonNil(st.Characteristics)
}

// VarietyRecommendations suggests which varieties of crop to plant in
// soil. The list is never empty.
func (s *SoilService) VarietyRecommendations(crop, soil string) []string {
	st, _ := s.SoilType(soil)
	soilName := st.Name
	if soilName == "" {
		soilName = soil
	}
	soilName = strings.ToLower(soilName)

	var recs []string
	if normalize(st.WaterRetention) == "low" {
		recs = append(recs, fmt.Sprintf("Choose drought-tolerant %s varieties suited to fast-draining soil", crop))
	}
	if normalize(st.Drainage) == "poor" || normalize(st.WaterRetention) == "high" {
		recs = append(recs, fmt.Sprintf("Select %s varieties tolerant of waterlogging and heavy soils", crop))
	}
	if s.Compatibility(crop, soil).Score < lowCompatibilityScore {
		recs = append(recs, fmt.Sprintf("Consider %s varieties bred for marginal %s soils, or an alternative crop", crop, soilName))
	}
	if slices.Contains(st.SuitableCrops, normalize(crop)) {
		recs = append(recs, fmt.Sprintf("Standard %s varieties perform well in %s soil", crop, soilName))
	}
	recs = append(recs, fmt.Sprintf("Use certified %s seed adapted to your local climate", crop))
	return recs
}

// Advice combines compatibility, amendments and irrigation guidance for
// crop in soil. It returns nil for an unknown soil.
func (s *SoilService) Advice(crop, soil string) *domain.SoilAdvice {
	st, ok := s.SoilType(soil)
	if !ok {
		s.logger.Debug("no soil advice for unknown soil type", zap.String("soil_type", soil))
		return nil
	}
	compat := s.Compatibility(crop, soil)

	amendments := make([]domain.Amendment, len(st.Amendments))
	copy(amendments, st.Amendments)
	warnings := make([]string, len(compat.Warnings))
	copy(warnings, compat.Warnings)

	return &domain.SoilAdvice{
		SoilType:               normalize(soil),
		CompatibilityScore:     compat.Score,
		Amendments:             amendments,
		IrrigationTips:         st.IrrigationGuidance,
		VarietyRecommendations: s.VarietyRecommendations(crop, soil),
		Warnings:               warnings,
	}
}
