package domain

import "context"

// CropFeatures are the soil and climate measurements the crop classifier
// was trained on.
type CropFeatures struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

type CropProbability struct {
	Crop string  `json:"crop"`
	Prob float64 `json:"prob"`
}

type CropPrediction struct {
	Crop               string             `json:"crop"`
	Top3               []CropProbability  `json:"top3"`
	Probs              map[string]float64 `json:"probs"`
	ModelVersion       string             `json:"model_version"`
	SoilSpecificAdvice *SoilAdvice        `json:"soil_specific_advice,omitempty"`
}

type CropClassifier interface {
	Predict(ctx context.Context, f CropFeatures) (*CropPrediction, error)
}
