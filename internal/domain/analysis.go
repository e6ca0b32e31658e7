package domain

// CombinedRecommendation groups the leading treatments of one match.
type CombinedRecommendation struct {
	PestDisease string                    `json:"pest_disease"`
	Confidence  float64                   `json:"confidence"`
	Treatments  []TreatmentRecommendation `json:"treatments"`
}

type ConfidenceSummary struct {
	HighestConfidence     float64 `json:"highest_confidence"`
	AverageConfidence     float64 `json:"average_confidence"`
	TotalMatches          int     `json:"total_matches"`
	HighConfidenceMatches int     `json:"high_confidence_matches"`
}

// AnalysisResult combines name and symptom search with recommendations.
// ConfidenceSummary is nil when nothing matched.
type AnalysisResult struct {
	NameMatches             []MatchSummary           `json:"name_matches"`
	SymptomMatches          []MatchSummary           `json:"symptom_matches"`
	CombinedRecommendations []CombinedRecommendation `json:"combined_recommendations"`
	ExpertResources         []ExpertResource         `json:"expert_resources"`
	ConfidenceSummary       *ConfidenceSummary       `json:"confidence_summary,omitempty"`
}
