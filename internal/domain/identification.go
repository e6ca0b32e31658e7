package domain

import (
	"context"

	"github.com/google/uuid"
)

// Provenance identifies which path of the orchestrator produced a result.
type Provenance string

const (
	ProvenancePrimaryAPI    Provenance = "primary-api"
	ProvenanceLocalFallback Provenance = "local-fallback"
	ProvenanceTimeout       Provenance = "timeout-fallback"
	ProvenanceServiceError  Provenance = "service-error-fallback"
)

const (
	APISourceTimeout      = "timeout_fallback"
	APISourceServiceError = "service_error_fallback"
)

// IdentificationRequest is the input of one identification call.
type IdentificationRequest struct {
	Image          []byte
	CropType       string
	Location       string
	AdditionalInfo string
}

// IdentificationMatch is one candidate diagnosis in a result.
type IdentificationMatch struct {
	Name           string   `json:"name"`
	ScientificName *string  `json:"scientific_name"`
	Confidence     float64  `json:"confidence"`
	Category       Category `json:"category"`
	Description    string   `json:"description"`
	Symptoms       []string `json:"symptoms"`
	Images         []string `json:"images"`
}

// IdentificationResult is the normalized payload returned for every
// identification, whichever path produced it.
type IdentificationResult struct {
	ID                 uuid.UUID             `json:"id"`
	Matches            []IdentificationMatch `json:"matches"`
	Treatments         []Treatment           `json:"treatments"`
	PreventionTips     []string              `json:"prevention_tips"`
	ExpertResources    []ExpertResource      `json:"expert_resources"`
	ConfidenceLevel    ConfidenceLevel       `json:"confidence_level"`
	APISource          string                `json:"api_source"`
	Provenance         Provenance            `json:"provenance"`
	FallbackMode       bool                  `json:"fallback_mode,omitempty"`
	Message            string                `json:"message,omitempty"`
	AdditionalGuidance *AdditionalGuidance   `json:"additional_guidance,omitempty"`
}

// ServiceStatus reports which identification paths are available.
type ServiceStatus struct {
	ServiceAvailable    bool             `json:"service_available"`
	PrimaryAPIAvailable bool             `json:"primary_api_available"`
	FallbackAvailable   bool             `json:"fallback_available"`
	LocalDatabaseLoaded bool             `json:"local_database_loaded"`
	PestDiseaseCount    int              `json:"pest_disease_count"`
	RateLimitStatus     *RateLimitStatus `json:"rate_limit_status,omitempty"`
}

// Identifier is the orchestrator contract used by the HTTP boundary.
type Identifier interface {
	Identify(ctx context.Context, req IdentificationRequest) *IdentificationResult
	Status() ServiceStatus
}
