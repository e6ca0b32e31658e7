package domain

import "strings"

type TreatmentMethod string

const (
	MethodOrganic      TreatmentMethod = "organic"
	MethodChemical     TreatmentMethod = "chemical"
	MethodCultural     TreatmentMethod = "cultural"
	MethodConsultation TreatmentMethod = "consultation"
	MethodGeneral      TreatmentMethod = "general"
)

const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3

	DefaultEffectiveness = 0.7
	DefaultTiming        = "As needed"
	DefaultSafetyNotes   = "Follow label instructions"
)

// DefaultPriority is the priority given to a treatment whose record does
// not set one: organic and cultural practices rank first.
func (m TreatmentMethod) DefaultPriority() int {
	switch TreatmentMethod(strings.ToLower(string(m))) {
	case MethodOrganic, MethodCultural:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Treatment is the caller-facing treatment shape.
type Treatment struct {
	Method      TreatmentMethod `json:"method"`
	Treatment   string          `json:"treatment"`
	Application string          `json:"application"`
	Timing      string          `json:"timing"`
	SafetyNotes string          `json:"safety_notes"`
}

// TreatmentRecommendation is a Treatment ranked for a specific entry.
type TreatmentRecommendation struct {
	Treatment
	Priority      int     `json:"priority"`
	Effectiveness float64 `json:"effectiveness"`
}
