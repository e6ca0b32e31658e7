package service

import (
	"sort"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

const (
	AnalysisNameMinConfidence    = 0.3
	AnalysisSymptomMinConfidence = 0.2

	analysisMatchLimit          = 5
	analysisRecommendationLimit = 3
	treatmentsPerRecommendation = 3
)

// RecommendationService turns knowledge base entries into ranked
// treatments and expert contacts.
type RecommendationService struct {
	matcher *MatchingService
	experts []domain.ExpertResource
	logger  *zap.Logger
}

// NewRecommendationService uses experts as the expert directory, or the
// built-in directory when experts is empty.
func NewRecommendationService(matcher *MatchingService, experts []domain.ExpertResource, logger *zap.Logger) *RecommendationService {
	if len(experts) == 0 {
		experts = domain.BuiltinExpertDirectory()
	}
	return &RecommendationService{matcher: matcher, experts: experts, logger: logger}
}

// Treatments ranks the entry's treatment records by priority, then by
// effectiveness. Records without a method are treated as general advice.
func (s *RecommendationService) Treatments(entry *domain.Entry, organicOnly bool) []domain.TreatmentRecommendation {
	if entry == nil {
		return []domain.TreatmentRecommendation{}
	}

	out := make([]domain.TreatmentRecommendation, 0, len(entry.Treatments))
	for _, rec := range entry.Treatments {
		t := recommendationFromRecord(rec)
		if organicOnly && t.Method != domain.MethodOrganic {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Effectiveness > out[j].Effectiveness
	})
	return out
}

// TreatmentsForKey is Treatments for the entry stored under key.
func (s *RecommendationService) TreatmentsForKey(key string, organicOnly bool) ([]domain.TreatmentRecommendation, error) {
	e, err := s.matcher.Entry(key)
	if err != nil {
		return nil, err
	}
	return s.Treatments(e, organicOnly), nil
}

func recommendationFromRecord(rec domain.TreatmentRecord) domain.TreatmentRecommendation {
	method := domain.TreatmentMethod(normalize(rec.Method))
	if method == "" {
		method = domain.MethodGeneral
	}

	priority := method.DefaultPriority()
	if rec.Priority != nil {
		priority = *rec.Priority
	}
	priority = min(max(priority, domain.PriorityHigh), domain.PriorityLow)

	effectiveness := domain.DefaultEffectiveness
	if rec.Effectiveness != nil {
		effectiveness = *rec.Effectiveness
	}
	effectiveness = min(max(effectiveness, 0), 1)

	return domain.TreatmentRecommendation{
		Treatment:     treatmentFromRecord(rec, method),
		Priority:      priority,
		Effectiveness: effectiveness,
	}
}

func treatmentFromRecord(rec domain.TreatmentRecord, method domain.TreatmentMethod) domain.Treatment {
	t := domain.Treatment{
		Method:      method,
		Treatment:   rec.Treatment,
		Application: rec.Application,
		Timing:      rec.Timing,
		SafetyNotes: rec.SafetyNotes,
	}
	if t.Timing == "" {
		t.Timing = domain.DefaultTiming
	}
	if t.SafetyNotes == "" {
		t.SafetyNotes = domain.DefaultSafetyNotes
	}
	return t
}

// ExpertResources returns the expert directory, or the experts whose
// specialization contains specialization (case-insensitive).
func (s *RecommendationService) ExpertResources(specialization string) []domain.ExpertResource {
	want := normalize(specialization)
	out := make([]domain.ExpertResource, 0, len(s.experts))
	for _, e := range s.experts {
		if want == "" || strings.Contains(strings.ToLower(e.Specialization), want) {
			out = append(out, e)
		}
	}
	return out
}

// ComprehensiveAnalysis runs name and symptom search together and attaches
// treatments to the strongest matches. It never fails; an empty query
// still yields expert resources.
func (s *RecommendationService) ComprehensiveAnalysis(query string, symptoms []string, cropType string) *domain.AnalysisResult {
	nameMatches := s.matcher.SearchByName(query, "", AnalysisNameMinConfidence)
	var symptomMatches []domain.MatchResult
	if len(symptoms) > 0 {
		symptomMatches = s.matcher.SearchBySymptoms(symptoms, cropType, AnalysisSymptomMinConfidence)
	}

	all := make([]domain.MatchResult, 0, len(nameMatches)+len(symptomMatches))
	all = append(all, nameMatches...)
	all = append(all, symptomMatches...)
	unique := Deduplicate(all)

	res := &domain.AnalysisResult{
		NameMatches:             domain.SummarizeMatches(nameMatches, analysisMatchLimit),
		SymptomMatches:          domain.SummarizeMatches(symptomMatches, analysisMatchLimit),
		CombinedRecommendations: []domain.CombinedRecommendation{},
		ExpertResources:         s.ExpertResources(""),
	}
	if len(res.ExpertResources) == 0 {
		res.ExpertResources = domain.DefaultExpertResources()
	}

	top := unique
	if len(top) > analysisRecommendationLimit {
		top = top[:analysisRecommendationLimit]
	}
	for _, m := range top {
		treatments := s.Treatments(m.Entry, false)
		if len(treatments) == 0 {
			continue
		}
		if len(treatments) > treatmentsPerRecommendation {
			treatments = treatments[:treatmentsPerRecommendation]
		}
		res.CombinedRecommendations = append(res.CombinedRecommendations, domain.CombinedRecommendation{
			PestDisease: m.Key,
			Confidence:  m.Confidence,
			Treatments:  treatments,
		})
	}

	if len(unique) > 0 {
		res.ConfidenceSummary = summarizeConfidence(unique)
	}

	s.logger.Debug("comprehensive analysis",
		zap.String("query", query),
		zap.Int("name_matches", len(nameMatches)),
		zap.Int("symptom_matches", len(symptomMatches)),
		zap.Int("unique_matches", len(unique)))
	return res
}

func summarizeConfidence(matches []domain.MatchResult) *domain.ConfidenceSummary {
	sum := &domain.ConfidenceSummary{TotalMatches: len(matches)}
	var total float64
	for _, m := range matches {
		total += m.Confidence
		sum.HighestConfidence = max(sum.HighestConfidence, m.Confidence)
		if m.Confidence >= domain.HighConfidenceThreshold {
			sum.HighConfidenceMatches++
		}
	}
	sum.AverageConfidence = total / float64(len(matches))
	return sum
}
