package domain

type ExpertType string

const (
	ExpertGovernment       ExpertType = "government"
	ExpertAcademic         ExpertType = "academic"
	ExpertConsultant       ExpertType = "consultant"
	ExpertExtensionService ExpertType = "extension_service"
	ExpertUniversity       ExpertType = "university"
)

type ExpertResource struct {
	Name           string     `json:"name" yaml:"name"`
	Contact        string     `json:"contact" yaml:"contact"`
	Type           ExpertType `json:"type" yaml:"type"`
	Location       string     `json:"location,omitempty" yaml:"location,omitempty"`
	Specialization string     `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Availability   string     `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// BuiltinExpertDirectory is the directory used when no expert file is
// configured.
func BuiltinExpertDirectory() []ExpertResource {
	return []ExpertResource{
		{
			Name:           "Agricultural Extension Office",
			Contact:        "1-800-ASK-FARM",
			Type:           ExpertGovernment,
			Location:       "Local",
			Specialization: "General crop management",
			Availability:   "Business hours",
		},
		{
			Name:           "Plant Disease Clinic",
			Contact:        "university-clinic@example.edu",
			Type:           ExpertAcademic,
			Location:       "State University",
			Specialization: "Disease diagnosis",
			Availability:   "By appointment",
		},
		{
			Name:           "Integrated Pest Management Specialist",
			Contact:        "ipm-expert@example.com",
			Type:           ExpertConsultant,
			Specialization: "Sustainable pest control",
			Availability:   "On-call",
		},
	}
}

// DefaultExpertResources is the guidance of last resort attached to every
// identification result when nothing better is available.
func DefaultExpertResources() []ExpertResource {
	return []ExpertResource{
		{
			Name:     "Local Agricultural Extension Service",
			Contact:  "Contact your local county extension office",
			Type:     ExpertExtensionService,
			Location: "Local",
		},
		{
			Name:     "Plant Disease Diagnostic Lab",
			Contact:  "Submit samples to your state's plant diagnostic laboratory",
			Type:     ExpertUniversity,
			Location: "State University",
		},
		{
			Name:     "Certified Crop Advisor",
			Contact:  "Find a CCA through the American Society of Agronomy",
			Type:     ExpertConsultant,
			Location: "Regional",
		},
	}
}
