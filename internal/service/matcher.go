package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

var ErrEntryNotFound = errors.New("pest or disease not found")

const (
	// DefaultNameMinConfidence is the default threshold for name search.
	DefaultNameMinConfidence = 0.4
	// DefaultSymptomMinConfidence is the default threshold for symptom search.
	DefaultSymptomMinConfidence = 0.3
	// PartialSymptomScore is credited to a query symptom that overlaps an
	// entry symptom without being equal to it.
	PartialSymptomScore = 0.7
	// SymptomSimilarityThreshold is the ratio above which two symptom
	// phrases count as overlapping.
	SymptomSimilarityThreshold = 0.7
)

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T of a and b
// computed over their runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchingService scores free text and symptom lists against the
// knowledge base. It holds no mutable state.
type MatchingService struct {
	kb     *domain.KnowledgeBase
	logger *zap.Logger
}

func NewMatchingService(kb *domain.KnowledgeBase, logger *zap.Logger) *MatchingService {
	if kb == nil {
		kb = domain.EmptyKnowledgeBase()
	}
	return &MatchingService{kb: kb, logger: logger}
}

func (s *MatchingService) KnowledgeBase() *domain.KnowledgeBase {
	return s.kb
}

func (s *MatchingService) Entry(key string) (*domain.Entry, error) {
	e, ok := s.kb.Get(key)
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// SearchByName matches query against every entry's name fields. An empty
// category searches all categories. Results are sorted by confidence,
// ties in load order.
func (s *MatchingService) SearchByName(query, category string, minConfidence float64) []domain.MatchResult {
	q := normalize(query)
	if q == "" {
		return nil
	}
	var want domain.Category
	if category != "" {
		want = domain.NormalizeCategory(category)
	}

	var results []domain.MatchResult
	for _, e := range s.kb.Entries() {
		if want != "" && e.Category != want {
			continue
		}
		if isExactNameMatch(q, e) {
			results = append(results, domain.MatchResult{
				Key:        e.Key,
				Entry:      e,
				Confidence: 1.0,
				MatchType:  domain.MatchExact,
				Details:    fmt.Sprintf("Exact match found for %s", e.Category),
			})
			continue
		}
		if m, ok := fuzzyNameMatch(q, e); ok && m.Confidence >= minConfidence {
			results = append(results, m)
		}
	}

	sortByConfidence(results)
	s.logger.Debug("name search",
		zap.String("query", q),
		zap.String("category", string(want)),
		zap.Int("matches", len(results)))
	return results
}

func isExactNameMatch(q string, e *domain.Entry) bool {
	for _, f := range []string{e.Name, e.CommonName, e.ScientificName} {
		if f != "" && normalize(f) == q {
			return true
		}
	}
	for _, alt := range e.AlternativeNames {
		if alt != "" && normalize(alt) == q {
			return true
		}
	}
	return false
}

// fuzzyNameMatch keeps the best scoring name field. Fields are tried in a
// fixed order and a later field must score strictly higher to win.
func fuzzyNameMatch(q string, e *domain.Entry) (domain.MatchResult, bool) {
	best := domain.MatchResult{Key: e.Key, Entry: e}

	consider := func(field, label string, mt domain.MatchType) {
		if field == "" {
			return
		}
		if r := Similarity(q, normalize(field)); r > best.Confidence {
			best.Confidence = r
			best.MatchType = mt
			best.Details = fmt.Sprintf("Fuzzy match with %s: %s", label, field)
		}
	}
	consider(e.Name, "name", domain.MatchFuzzy)
	consider(e.CommonName, "common name", domain.MatchFuzzy)
	consider(e.ScientificName, "scientific name", domain.MatchScientific)
	for _, alt := range e.AlternativeNames {
		consider(alt, "alternative name", domain.MatchAlternative)
	}

	return best, best.Confidence > 0
}

// SearchBySymptoms scores entries by how many query symptoms they share.
// An empty cropType disables the crop filter. Blank symptoms are ignored;
// a list with no usable symptom matches nothing.
func (s *MatchingService) SearchBySymptoms(symptoms []string, cropType string, minConfidence float64) []domain.MatchResult {
	query := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		if n := normalize(sym); n != "" {
			query = append(query, n)
		}
	}
	if len(query) == 0 {
		return nil
	}
	crop := normalize(cropType)

	var results []domain.MatchResult
	for _, e := range s.kb.Entries() {
		if crop != "" && !e.AffectsCrop(crop) {
			continue
		}
		conf := symptomConfidence(query, e.Symptoms)
		if conf <= 0 || conf < minConfidence {
			continue
		}
		results = append(results, domain.MatchResult{
			Key:        e.Key,
			Entry:      e,
			Confidence: conf,
			MatchType:  domain.MatchSymptom,
			Details:    fmt.Sprintf("Symptom match for %s", e.Category),
		})
	}

	sortByConfidence(results)
	s.logger.Debug("symptom search",
		zap.Int("symptoms", len(query)),
		zap.String("crop_type", crop),
		zap.Int("matches", len(results)))
	return results
}

// symptomConfidence is the mean per-symptom score of query against the
// entry's symptoms, capped at 1. query must be normalized and non-empty.
func symptomConfidence(query, entrySymptoms []string) float64 {
	known := make([]string, 0, len(entrySymptoms))
	for _, sym := range entrySymptoms {
		if n := normalize(sym); n != "" {
			known = append(known, n)
		}
	}
	if len(known) == 0 {
		return 0
	}

	var total float64
	for _, q := range query {
		total += symptomScore(q, known)
	}
	return math.Min(1.0, total/float64(len(query)))
}

func symptomScore(q string, known []string) float64 {
	for _, k := range known {
		if k == q {
			return 1.0
		}
	}
	for _, k := range known {
		if strings.Contains(k, q) || strings.Contains(q, k) || Similarity(q, k) > SymptomSimilarityThreshold {
			return PartialSymptomScore
		}
	}
	return 0
}

// Deduplicate keeps the highest confidence match per key, ordered by
// confidence. Among equal confidences the earlier match wins.
func Deduplicate(matches []domain.MatchResult) []domain.MatchResult {
	sorted := make([]domain.MatchResult, len(matches))
	copy(sorted, matches)
	sortByConfidence(sorted)

	seen := make(map[string]struct{}, len(sorted))
	out := make([]domain.MatchResult, 0, len(sorted))
	for _, m := range sorted {
		if _, dup := seen[m.Key]; dup {
			continue
		}
		seen[m.Key] = struct{}{}
		out = append(out, m)
	}
	return out
}

func sortByConfidence(matches []domain.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
}
