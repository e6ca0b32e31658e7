package domain

import (
	"context"
	"time"
)

// VisionRequest is what an image identification client receives.
type VisionRequest struct {
	Image    []byte
	CropType string
	Location string
}

// VisionResponse is the normalized answer of a vision client. Clients
// report transport and API failures through their error return; Success is
// false only when a client chooses to answer without a usable result.
type VisionResponse struct {
	Success            bool                `json:"success"`
	Suggestions        []VisionSuggestion  `json:"suggestions,omitempty"`
	ConfidenceLevel    ConfidenceLevel     `json:"confidence_level,omitempty"`
	APISource          string              `json:"api_source,omitempty"`
	IsPlantProbability float64             `json:"is_plant_probability,omitempty"`
	FallbackMode       bool                `json:"fallback_mode,omitempty"`
	Message            string              `json:"message,omitempty"`
	AdditionalGuidance *AdditionalGuidance `json:"additional_guidance,omitempty"`
	Error              string              `json:"error,omitempty"`
	ErrorType          string              `json:"error_type,omitempty"`
	StatusCode         int                 `json:"status_code,omitempty"`
}

// VisionSuggestion is one raw suggestion. Remote APIs fill Disease or
// PlantHealthAssessment; the local heuristic client fills the flat fields.
type VisionSuggestion struct {
	Disease               *DiseaseAssessment `json:"disease,omitempty"`
	PlantHealthAssessment *HealthAssessment  `json:"plant_health_assessment,omitempty"`

	Name            string   `json:"name,omitempty"`
	Probability     float64  `json:"probability,omitempty"`
	Category        Category `json:"category,omitempty"`
	Description     string   `json:"description,omitempty"`
	Symptoms        []string `json:"symptoms,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

type DiseaseAssessment struct {
	Suggestions []DiseaseSuggestion `json:"suggestions"`
}

type DiseaseSuggestion struct {
	Name          string         `json:"name"`
	Probability   float64        `json:"probability"`
	Details       DiseaseDetails `json:"details"`
	SimilarImages []SimilarImage `json:"similar_images,omitempty"`
}

type DiseaseDetails struct {
	Description    string   `json:"description,omitempty"`
	CommonNames    []string `json:"common_names,omitempty"`
	EntityName     string   `json:"entity_name,omitempty"`
	Classification []string `json:"classification,omitempty"`
	URL            string   `json:"url,omitempty"`
}

type SimilarImage struct {
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity,omitempty"`
}

type HealthAssessment struct {
	IsHealthy *HealthProbability `json:"is_healthy,omitempty"`
}

type HealthProbability struct {
	Probability float64 `json:"probability"`
}

// AdditionalGuidance is general advice supplied by the local fallback.
type AdditionalGuidance struct {
	ImmediateActions []string `json:"immediate_actions"`
	MonitoringTips   []string `json:"monitoring_tips"`
	WhenToSeekHelp   []string `json:"when_to_seek_help"`
}

// RateLimitStatus is a snapshot of a client's request quota.
type RateLimitStatus struct {
	RequestsMadeThisMinute int       `json:"requests_made_this_minute"`
	MaxRequestsPerMinute   int       `json:"max_requests_per_minute"`
	DailyRequests          int       `json:"daily_requests"`
	MaxRequestsPerDay      int       `json:"max_requests_per_day"`
	DailyResetTime         time.Time `json:"daily_reset_time"`
	CanMakeRequest         bool      `json:"can_make_request"`
}

type VisionClient interface {
	Identify(ctx context.Context, req VisionRequest) (*VisionResponse, error)
}

// RateLimitReporter is implemented by clients that track a request quota.
type RateLimitReporter interface {
	RateLimitStatus() RateLimitStatus
}
