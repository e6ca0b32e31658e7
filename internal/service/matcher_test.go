package service

import (
	"strings"
	"testing"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// testKnowledgeBase is a small fixture covering every category and the
// crop filter variants.
func testKnowledgeBase(t *testing.T) *domain.KnowledgeBase {
	t.Helper()
	entries := []*domain.Entry{
		{
			Key:              "aphids",
			Name:             "Aphids",
			CommonName:       "Plant lice",
			ScientificName:   "Aphidoidea",
			Category:         domain.CategoryPest,
			Description:      "Sap-sucking insects.",
			AlternativeNames: []string{"greenfly", "blackfly"},
			Symptoms:         []string{"curled leaves", "yellowing leaves", "sticky honeydew"},
			AffectedCrops:    []string{"all"},
			Treatments: []domain.TreatmentRecord{
				{Method: "chemical", Treatment: "Imidacloprid", Effectiveness: floatPtr(0.9)},
				{Method: "organic", Treatment: "Insecticidal soap", Effectiveness: floatPtr(0.6)},
				{Method: "cultural", Treatment: "Ladybugs", Effectiveness: floatPtr(0.8)},
				{Treatment: "Monitor", Priority: intPtr(7), Effectiveness: floatPtr(1.4)},
			},
			Prevention: []string{"Inspect new growth weekly", "Encourage beneficial insects"},
			Images:     []string{"https://img.example/aphids.jpg"},
		},
		{
			Key:            "late_blight",
			Name:           "Late Blight",
			ScientificName: "Phytophthora infestans",
			Category:       domain.CategoryDisease,
			Symptoms:       []string{"dark lesions on leaves", "white growth on leaf undersides"},
			AffectedCrops:  []string{"tomato", "potato"},
			Treatments: []domain.TreatmentRecord{
				{Method: "chemical", Treatment: "Copper fungicide"},
			},
			Prevention: []string{"Encourage beneficial insects", "Rotate crops"},
		},
		{
			Key:           "fusarium_wilt",
			Name:          "Fusarium Wilt",
			Category:      domain.CategoryDisease,
			Symptoms:      []string{"yellowing leaves", "wilting", "stunted growth"},
			AffectedCrops: []string{"tomato", "banana"},
		},
		{
			Key:           "nitrogen_deficiency",
			Name:          "Nitrogen Deficiency",
			Category:      domain.CategoryDeficiency,
			Symptoms:      []string{"pale older leaves", "stunted growth"},
			AffectedCrops: []string{},
		},
		{
			Key:      "healthy",
			Name:     "Healthy Plant",
			Category: domain.CategoryHealthy,
		},
	}
	kb, dropped := domain.NewKnowledgeBase(entries)
	require.Empty(t, dropped)
	return kb
}

func newTestMatcher(t *testing.T) *MatchingService {
	return NewMatchingService(testKnowledgeBase(t), zap.NewNop())
}

func assertSortedDescending(t *testing.T, matches []domain.MatchResult) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence,
			"matches out of order at %d", i)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 10.0/12.0, Similarity("aphidz", "aphids"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("blight", "blight"), 1e-9)
}

func TestSearchByName_ExactMatch(t *testing.T) {
	m := newTestMatcher(t)

	results := m.SearchByName("aphids", "", DefaultNameMinConfidence)
	require.NotEmpty(t, results)
	assert.Equal(t, "aphids", results[0].Key)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Equal(t, domain.MatchExact, results[0].MatchType)
	assert.Equal(t, "Exact match found for pest", results[0].Details)
}

func TestSearchByName_ExactOnEveryNameField(t *testing.T) {
	m := newTestMatcher(t)
	kb := m.KnowledgeBase()

	for _, e := range kb.Entries() {
		fields := append([]string{e.Name, e.CommonName, e.ScientificName}, e.AlternativeNames...)
		for _, f := range fields {
			if f == "" {
				continue
			}
			for _, q := range []string{f, strings.ToUpper(f), "  " + strings.ToLower(f) + " "} {
				results := m.SearchByName(q, "", DefaultNameMinConfidence)
				var hit *domain.MatchResult
				for i := range results {
					if results[i].Key == e.Key {
						hit = &results[i]
					}
				}
				require.NotNil(t, hit, "query %q should find %s", q, e.Key)
				assert.Equal(t, 1.0, hit.Confidence)
				assert.Equal(t, domain.MatchExact, hit.MatchType)
			}
		}
	}
}

func TestSearchByName_FuzzyTypo(t *testing.T) {
	m := newTestMatcher(t)

	results := m.SearchByName("aphidz", "", 0.3)
	require.NotEmpty(t, results)
	top := results[0]
	assert.Equal(t, "aphids", top.Key)
	assert.Equal(t, domain.MatchFuzzy, top.MatchType)
	assert.Greater(t, top.Confidence, 0.3)
	assert.Less(t, top.Confidence, 1.0)
	assert.Equal(t, "Fuzzy match with name: Aphids", top.Details)
}

func TestSearchByName_WinningFieldSetsType(t *testing.T) {
	m := newTestMatcher(t)

	results := m.SearchByName("phytophthora infestan", "", DefaultNameMinConfidence)
	require.NotEmpty(t, results)
	assert.Equal(t, "late_blight", results[0].Key)
	assert.Equal(t, domain.MatchScientific, results[0].MatchType)

	results = m.SearchByName("greenflies", "", DefaultNameMinConfidence)
	require.NotEmpty(t, results)
	assert.Equal(t, "aphids", results[0].Key)
	assert.Equal(t, domain.MatchAlternative, results[0].MatchType)
}

func TestSearchByName_BelowThresholdIsEmpty(t *testing.T) {
	m := newTestMatcher(t)
	assert.Empty(t, m.SearchByName("qqqqqqqq", "", DefaultNameMinConfidence))
	assert.Empty(t, m.SearchByName("", "", 0))
	assert.Empty(t, m.SearchByName("   ", "", 0))
}

func TestSearchByName_CategoryFilter(t *testing.T) {
	m := newTestMatcher(t)

	assert.Empty(t, m.SearchByName("aphids", "disease", DefaultNameMinConfidence))

	for _, c := range []string{"pest", "Pests", " PEST "} {
		results := m.SearchByName("aphids", c, DefaultNameMinConfidence)
		require.Len(t, results, 1, c)
		assert.Equal(t, "aphids", results[0].Key)
	}
}

func TestSearchByName_CategoryFilterEndingInS(t *testing.T) {
	kb, _ := domain.NewKnowledgeBase([]*domain.Entry{
		{Key: "mosaic", Name: "Mosaic", Category: "virus"},
		{Key: "aphids", Name: "Aphids", Category: domain.CategoryPest},
	})
	m := NewMatchingService(kb, zap.NewNop())

	results := m.SearchByName("mosaic", "Virus", DefaultNameMinConfidence)
	require.Len(t, results, 1)
	assert.Equal(t, "mosaic", results[0].Key)
	assert.Empty(t, m.SearchByName("mosaic", "viru", DefaultNameMinConfidence))
}

func TestSearchByName_Sorted(t *testing.T) {
	m := newTestMatcher(t)
	for _, q := range []string{"blight", "wilt", "aphid", "deficiency", "plant"} {
		assertSortedDescending(t, m.SearchByName(q, "", 0))
	}
}

func TestSearchBySymptoms_AllSymptomsMatch(t *testing.T) {
	m := newTestMatcher(t)

	results := m.SearchBySymptoms([]string{"yellowing leaves", "wilting"}, "", DefaultSymptomMinConfidence)
	require.NotEmpty(t, results)
	assert.Equal(t, "fusarium_wilt", results[0].Key)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Equal(t, domain.MatchSymptom, results[0].MatchType)
	assert.Equal(t, "Symptom match for disease", results[0].Details)
	assertSortedDescending(t, results)

	for _, r := range results[1:] {
		assert.Less(t, r.Confidence, 1.0)
	}
}

func TestSearchBySymptoms_PartialScore(t *testing.T) {
	m := newTestMatcher(t)

	results := m.SearchBySymptoms([]string{"Curled"}, "", DefaultSymptomMinConfidence)
	require.Len(t, results, 1)
	assert.Equal(t, "aphids", results[0].Key)
	assert.InDelta(t, PartialSymptomScore, results[0].Confidence, 1e-9)
}

func TestSearchBySymptoms_QueryCountDenominator(t *testing.T) {
	m := newTestMatcher(t)

	// One of two query symptoms matches aphids exactly.
	results := m.SearchBySymptoms([]string{"sticky honeydew", "qqqq"}, "", 0.1)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.5, results[0].Confidence, 1e-9)
}

func TestSearchBySymptoms_CropFilter(t *testing.T) {
	m := newTestMatcher(t)

	keys := func(results []domain.MatchResult) []string {
		out := make([]string, 0, len(results))
		for _, r := range results {
			out = append(out, r.Key)
		}
		return out
	}

	wheat := keys(m.SearchBySymptoms([]string{"stunted growth", "yellowing leaves"}, "wheat", 0.1))
	assert.Contains(t, wheat, "aphids")
	assert.NotContains(t, wheat, "fusarium_wilt")
	assert.NotContains(t, wheat, "nitrogen_deficiency")

	tomato := keys(m.SearchBySymptoms([]string{"stunted growth", "yellowing leaves"}, "Tomato", 0.1))
	assert.Contains(t, tomato, "aphids")
	assert.Contains(t, tomato, "fusarium_wilt")

	anyCrop := keys(m.SearchBySymptoms([]string{"stunted growth"}, "", 0.1))
	assert.Contains(t, anyCrop, "nitrogen_deficiency")
}

func TestSearchBySymptoms_EmptyInput(t *testing.T) {
	m := newTestMatcher(t)
	assert.Empty(t, m.SearchBySymptoms(nil, "", 0))
	assert.Empty(t, m.SearchBySymptoms([]string{"", "  "}, "", 0))
}

func TestSearchBySymptoms_EntriesWithoutSymptomsNeverMatch(t *testing.T) {
	m := newTestMatcher(t)
	for _, r := range m.SearchBySymptoms([]string{"leaves"}, "", 0) {
		assert.NotEqual(t, "healthy", r.Key)
	}
}

func TestDeduplicate(t *testing.T) {
	in := []domain.MatchResult{
		{Key: "a", Confidence: 0.5, MatchType: domain.MatchFuzzy},
		{Key: "b", Confidence: 0.9},
		{Key: "a", Confidence: 0.8, MatchType: domain.MatchSymptom},
		{Key: "c", Confidence: 0.8},
	}
	out := Deduplicate(in)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].Key)
	assert.Equal(t, "a", out[1].Key)
	assert.Equal(t, domain.MatchSymptom, out[1].MatchType)
	assert.Equal(t, "c", out[2].Key)

	assert.Equal(t, "a", in[0].Key, "input must not be reordered")
	assert.Empty(t, Deduplicate(nil))
}

func TestMatchingService_Entry(t *testing.T) {
	m := newTestMatcher(t)

	e, err := m.Entry("late_blight")
	require.NoError(t, err)
	assert.Equal(t, "Late Blight", e.Name)

	_, err = m.Entry("missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestMatchingService_RandomInputs(t *testing.T) {
	m := newTestMatcher(t)
	faker := gofakeit.New(42)

	for i := 0; i < 200; i++ {
		query := faker.Word()
		if i%3 == 0 {
			query = faker.Sentence(3)
		}
		threshold := faker.Float64Range(0, 1)

		results := m.SearchByName(query, "", threshold)
		assertSortedDescending(t, results)
		for _, r := range results {
			assert.GreaterOrEqual(t, r.Confidence, threshold)
			assert.LessOrEqual(t, r.Confidence, 1.0)
		}

		symptoms := []string{faker.Phrase(), faker.Word()}
		results = m.SearchBySymptoms(symptoms, faker.Word(), threshold)
		assertSortedDescending(t, results)
		for _, r := range results {
			assert.Greater(t, r.Confidence, 0.0)
			assert.LessOrEqual(t, r.Confidence, 1.0)
		}
	}
}
