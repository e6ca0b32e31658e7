package domain

type Amendment struct {
	Name            string `json:"name"`
	Purpose         string `json:"purpose"`
	ApplicationRate string `json:"application_rate"`
	Timing          string `json:"timing"`
}

type IrrigationGuidance struct {
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Method       string `json:"method"`
	SpecialNotes string `json:"special_notes"`
}

type SoilType struct {
	Name               string             `json:"name"`
	Characteristics    []string           `json:"characteristics"`
	WaterRetention     string             `json:"water_retention"`
	Drainage           string             `json:"drainage"`
	SuitableCrops      []string           `json:"suitable_crops"`
	Amendments         []Amendment        `json:"amendments"`
	IrrigationGuidance IrrigationGuidance `json:"irrigation_guidance"`
}

// Compatibility is how well a crop grows in a soil, in [0,1].
type Compatibility struct {
	Score    float64  `json:"score"`
	Warnings []string `json:"warnings"`
}

// SoilCatalog is the immutable soil reference data.
type SoilCatalog struct {
	SoilTypes           map[string]SoilType                 `json:"soil_types"`
	CompatibilityMatrix map[string]map[string]Compatibility `json:"compatibility_matrix"`
}

func (c *SoilCatalog) Loaded() bool {
	return c != nil && len(c.SoilTypes) > 0
}

type SoilAdvice struct {
	SoilType               string             `json:"soil_type"`
	CompatibilityScore     float64            `json:"compatibility_score"`
	Amendments             []Amendment        `json:"amendments"`
	IrrigationTips         IrrigationGuidance `json:"irrigation_tips"`
	VarietyRecommendations []string           `json:"variety_recommendations"`
	Warnings               []string           `json:"warnings"`
}
