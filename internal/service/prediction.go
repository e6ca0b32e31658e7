package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrInvalidFeatures       = errors.New("invalid crop features")
	ErrClassifierUnavailable = errors.New("crop classifier not configured")
)

// ValidateFeatures checks the measurement ranges the classifier accepts.
func ValidateFeatures(f domain.CropFeatures) error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"N", f.N},
		{"P", f.P},
		{"K", f.K},
		{"Rainfall", f.Rainfall},
	}
	for _, v := range nonNegative {
		if !(v.value >= 0) {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidFeatures, v.name)
		}
	}
	if !(f.Humidity >= 0 && f.Humidity <= 100) {
		return fmt.Errorf("%w: Humidity must be between 0 and 100%%", ErrInvalidFeatures)
	}
	if !(f.PH >= 0 && f.PH <= 14) {
		return fmt.Errorf("%w: pH value must be between 0 and 14", ErrInvalidFeatures)
	}
	return nil
}

type PredictionService struct {
	classifier domain.CropClassifier
	soil       *SoilService
	logger     *zap.Logger
}

// NewPredictionService accepts a nil classifier; Predict then reports
// ErrClassifierUnavailable.
func NewPredictionService(classifier domain.CropClassifier, soil *SoilService, logger *zap.Logger) *PredictionService {
	return &PredictionService{classifier: classifier, soil: soil, logger: logger}
}

func (s *PredictionService) Available() bool {
	return s.classifier != nil
}

// Predict recommends a crop for f. When soilType names a known soil the
// prediction carries soil-specific advice for the recommended crop.
func (s *PredictionService) Predict(ctx context.Context, f domain.CropFeatures, soilType string) (*domain.CropPrediction, error) {
	if err := ValidateFeatures(f); err != nil {
		return nil, err
	}
	if s.classifier == nil {
		return nil, ErrClassifierUnavailable
	}

	pred, err := s.classifier.Predict(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("crop prediction: %w", err)
	}

	if soilType != "" && s.soil != nil {
		if advice := s.soil.Advice(pred.Crop, soilType); advice != nil {
			pred.SoilSpecificAdvice = advice
		} else {
			s.logger.Warn("unknown soil type, prediction returned without soil advice",
				zap.String("soil_type", soilType))
		}
	}

	s.logger.Info("crop predicted",
		zap.String("crop", pred.Crop),
		zap.String("model_version", pred.ModelVersion),
		zap.Bool("soil_advice", pred.SoilSpecificAdvice != nil))
	return pred, nil
}
