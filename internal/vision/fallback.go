package vision

import (
	"context"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

const (
	APISourceLocal = "enhanced_fallback_analysis"

	localAssessmentProbability = 0.4
	commonIssueProbability     = 0.3

	categoryGeneral       domain.Category = "general"
	categoryPossibleIssue domain.Category = "possible_issue"

	localMessage = "Primary identification service unavailable. Providing comprehensive general guidance based on common plant issues."
)

type commonIssue struct {
	name            string
	symptoms        []string
	causes          []string
	recommendations []string
}

var commonIssues = []commonIssue{
	{
		name:     "General Plant Stress",
		symptoms: []string{"wilting", "yellowing", "browning", "spots"},
		causes:   []string{"watering issues", "nutrient deficiency", "disease", "pest damage"},
		recommendations: []string{
			"Check soil moisture levels",
			"Inspect for visible pests",
			"Ensure adequate lighting",
			"Consider nutrient deficiency",
		},
	},
	{
		name:     "Possible Fungal Issue",
		symptoms: []string{"spots", "mold", "discoloration", "wilting"},
		causes:   []string{"high humidity", "poor air circulation", "overwatering"},
		recommendations: []string{
			"Improve air circulation",
			"Reduce watering frequency",
			"Remove affected plant parts",
			"Apply fungicidal treatment if available",
		},
	},
	{
		name:     "Possible Pest Damage",
		symptoms: []string{"holes", "chewed leaves", "sticky residue", "visible insects"},
		causes:   []string{"aphids", "caterpillars", "mites", "other insects"},
		recommendations: []string{
			"Inspect plants carefully for pests",
			"Use insecticidal soap or neem oil",
			"Remove heavily infested parts",
			"Monitor regularly for pest activity",
		},
	},
}

// LocalClient is the always-available heuristic client. It never calls
// out and never fails; its answers are general guidance.
type LocalClient struct {
	logger *zap.Logger
}

func NewLocalClient(logger *zap.Logger) *LocalClient {
	return &LocalClient{logger: logger}
}

func (c *LocalClient) Identify(ctx context.Context, req domain.VisionRequest) (*domain.VisionResponse, error) {
	c.logger.Info("using local fallback identification", zap.String("crop_type", req.CropType))

	suggestions := make([]domain.VisionSuggestion, 0, len(commonIssues)+1)
	suggestions = append(suggestions, domain.VisionSuggestion{
		Name:        "General Plant Health Assessment",
		Probability: localAssessmentProbability,
		Category:    categoryGeneral,
		Description: "Primary identification service unavailable. Based on common plant issues, your plant may be experiencing stress from various factors.",
		Symptoms:    []string{"Visual symptoms detected", "Professional assessment recommended"},
		Recommendations: []string{
			"Contact your local agricultural extension service for in-person diagnosis",
			"Take additional photos from different angles and lighting conditions",
			"Note any recent changes in plant care, environment, or weather",
			"Document when symptoms first appeared and how they've progressed",
			"Check for common issues like watering, lighting, or nutrient deficiencies",
		},
	})
	for _, issue := range commonIssues {
		suggestions = append(suggestions, domain.VisionSuggestion{
			Name:            issue.name,
			Probability:     commonIssueProbability,
			Category:        categoryPossibleIssue,
			Description:     "Common plant issue that could match your symptoms. " + strings.Join(issue.causes, ", ") + " are typical causes.",
			Symptoms:        append([]string(nil), issue.symptoms...),
			Recommendations: append([]string(nil), issue.recommendations...),
		})
	}

	return &domain.VisionResponse{
		Success:            true,
		Suggestions:        suggestions,
		ConfidenceLevel:    domain.ConfidenceLow,
		APISource:          APISourceLocal,
		FallbackMode:       true,
		Message:            localMessage,
		AdditionalGuidance: localGuidance(),
	}, nil
}

func localGuidance() *domain.AdditionalGuidance {
	return &domain.AdditionalGuidance{
		ImmediateActions: []string{
			"Isolate the affected plant if possible to prevent spread",
			"Remove any severely damaged or dead plant material",
			"Ensure proper watering - not too much, not too little",
			"Check for visible pests on leaves, stems, and soil",
		},
		MonitoringTips: []string{
			"Take photos daily to track symptom progression",
			"Note environmental conditions (temperature, humidity, light)",
			"Record any treatments applied and their effects",
			"Monitor other plants for similar symptoms",
		},
		WhenToSeekHelp: []string{
			"Symptoms are spreading rapidly to other plants",
			"Plant condition is deteriorating quickly",
			"You're unsure about the safety of treatments",
			"Multiple plants are showing similar symptoms",
		},
	}
}
