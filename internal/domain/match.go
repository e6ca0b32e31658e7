package domain

type MatchType string

const (
	MatchExact       MatchType = "exact"
	MatchFuzzy       MatchType = "fuzzy"
	MatchScientific  MatchType = "scientific"
	MatchAlternative MatchType = "alternative"
	MatchSymptom     MatchType = "symptom"
)

// MatchResult is a per-query hit against the knowledge base.
type MatchResult struct {
	Key        string    `json:"key"`
	Entry      *Entry    `json:"-"`
	Confidence float64   `json:"confidence"`
	MatchType  MatchType `json:"match_type"`
	Details    string    `json:"match_details"`
}

// MatchSummary is the serialized view of a MatchResult.
type MatchSummary struct {
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	CommonName     string    `json:"common_name"`
	ScientificName string    `json:"scientific_name"`
	Category       Category  `json:"category"`
	Confidence     float64   `json:"confidence"`
	MatchType      MatchType `json:"match_type"`
	MatchDetails   string    `json:"match_details"`
	Description    string    `json:"description"`
	Symptoms       []string  `json:"symptoms"`
}

func (m MatchResult) Summary() MatchSummary {
	s := MatchSummary{
		Key:          m.Key,
		Confidence:   m.Confidence,
		MatchType:    m.MatchType,
		MatchDetails: m.Details,
		Symptoms:     []string{},
	}
	if m.Entry != nil {
		s.Name = m.Entry.DisplayName()
		s.CommonName = m.Entry.CommonName
		s.ScientificName = m.Entry.ScientificName
		s.Category = m.Entry.Category
		s.Description = m.Entry.Description
		if m.Entry.Symptoms != nil {
			s.Symptoms = m.Entry.Symptoms
		}
	}
	return s
}

// SummarizeMatches converts at most limit matches; limit <= 0 means all.
func SummarizeMatches(matches []MatchResult, limit int) []MatchSummary {
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Summary())
	}
	return out
}
