package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// LocalNameMinConfidence is the threshold for enriching a vision match
	// from the knowledge base by its name.
	LocalNameMinConfidence = 0.6
	// LocalScientificMinConfidence is the threshold for the scientific
	// name lookup tried when the name finds nothing.
	LocalScientificMinConfidence = 0.7

	maxVisionSuggestions      = 3
	maxDiseasesPerSuggestion  = 2
	maxMatchImages            = 3
	healthyProbabilityCutoff  = 0.5
	unidentifiedConfidence    = 0.3
	diagnosticMatchConfidence = 0.1

	APISourcePrimary  = "primary_api"
	APISourceFallback = "fallback_analysis"

	CategoryHealthIssue domain.Category = "health_issue"

	FallbackMessage = "Primary identification service unavailable. Providing general guidance."
)

var ErrNoVisionClient = errors.New("no vision client configured")

// GenericTreatments are attached when no entry-specific treatment exists.
func GenericTreatments() []domain.Treatment {
	return []domain.Treatment{
		{
			Method:      domain.MethodCultural,
			Treatment:   "Improve plant care practices",
			Application: "Ensure proper watering, lighting, and nutrition",
			Timing:      "Ongoing",
			SafetyNotes: "Monitor plant response to changes",
		},
		{
			Method:      domain.MethodOrganic,
			Treatment:   "Neem oil or horticultural soap",
			Application: "Spray according to product instructions",
			Timing:      "Early morning or evening",
			SafetyNotes: "Test on small area first",
		},
	}
}

// GenericPreventionTips are attached when no entry-specific tip exists.
func GenericPreventionTips() []string {
	return []string{
		"Monitor plants regularly for early detection of issues",
		"Maintain proper plant spacing for good air circulation",
		"Water at soil level to avoid wetting leaves",
		"Remove and dispose of affected plant material properly",
		"Practice crop rotation to break disease cycles",
	}
}

// IdentificationService coordinates the vision clients with the knowledge
// base. Either client may be nil.
type IdentificationService struct {
	primary     domain.VisionClient
	fallback    domain.VisionClient
	matcher     *MatchingService
	recommender *RecommendationService
	logger      *zap.Logger
}

func NewIdentificationService(
	primary domain.VisionClient,
	fallback domain.VisionClient,
	matcher *MatchingService,
	recommender *RecommendationService,
	logger *zap.Logger,
) *IdentificationService {
	return &IdentificationService{
		primary:     primary,
		fallback:    fallback,
		matcher:     matcher,
		recommender: recommender,
		logger:      logger,
	}
}

// Identify always returns a well-formed result. If ctx ends before the
// pipeline finishes the caller gets TimeoutResult; a panic inside the
// pipeline yields ServiceErrorResult.
func (s *IdentificationService) Identify(ctx context.Context, req domain.IdentificationRequest) *domain.IdentificationResult {
	done := make(chan *domain.IdentificationResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("identification pipeline panicked", zap.Any("panic", r))
				done <- ServiceErrorResult()
			}
		}()
		done <- s.run(ctx, req)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		s.logger.Warn("identification timed out", zap.Error(ctx.Err()))
		return TimeoutResult()
	}
}

func (s *IdentificationService) run(ctx context.Context, req domain.IdentificationRequest) *domain.IdentificationResult {
	s.logger.Info("starting identification",
		zap.String("crop_type", req.CropType),
		zap.String("location", req.Location),
		zap.Int("image_bytes", len(req.Image)))

	vreq := domain.VisionRequest{Image: req.Image, CropType: req.CropType, Location: req.Location}

	resp, err := s.tryPrimary(ctx, vreq)
	if err == nil {
		res := s.fromPrimary(resp)
		s.logger.Info("identification completed", zap.String("api_source", res.APISource))
		return res
	}
	s.logger.Warn("primary identification unavailable, using fallback", zap.Error(err))

	resp, err = s.tryFallback(ctx, vreq)
	if err != nil {
		s.logger.Warn("fallback client unavailable, returning general guidance", zap.Error(err))
		return s.unidentifiedResult()
	}
	return s.fromFallback(resp)
}

func (s *IdentificationService) tryPrimary(ctx context.Context, req domain.VisionRequest) (*domain.VisionResponse, error) {
	return callVision(ctx, s.primary, req)
}

func (s *IdentificationService) tryFallback(ctx context.Context, req domain.VisionRequest) (*domain.VisionResponse, error) {
	return callVision(ctx, s.fallback, req)
}

func callVision(ctx context.Context, c domain.VisionClient, req domain.VisionRequest) (*domain.VisionResponse, error) {
	if c == nil {
		return nil, ErrNoVisionClient
	}
	resp, err := c.Identify(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		msg := "unsuccessful response"
		if resp != nil && resp.Error != "" {
			msg = resp.Error
		}
		return nil, fmt.Errorf("vision client: %s", msg)
	}
	return resp, nil
}

func (s *IdentificationService) fromPrimary(resp *domain.VisionResponse) *domain.IdentificationResult {
	matches := ParseVisionSuggestions(resp.Suggestions)

	var treatments []domain.Treatment
	var prevention []string
	for i := range matches {
		entry := s.localMatch(matches[i])
		if entry == nil {
			continue
		}
		matches[i] = enrichMatch(matches[i], entry)
		treatments = append(treatments, s.treatmentsFor(entry)...)
		prevention = append(prevention, entry.Prevention...)
	}

	level := resp.ConfidenceLevel
	if !domain.ValidConfidenceLevel(string(level)) {
		level = domain.ComputeConfidenceLevel(maxConfidence(matches))
	}
	source := resp.APISource
	if source == "" {
		source = APISourcePrimary
	}

	return s.buildResult(matches, treatments, prevention, level, source, domain.ProvenancePrimaryAPI)
}

func (s *IdentificationService) fromFallback(resp *domain.VisionResponse) *domain.IdentificationResult {
	matches := make([]domain.IdentificationMatch, 0, len(resp.Suggestions))
	for _, sg := range resp.Suggestions {
		category := sg.Category
		if category == "" {
			category = domain.CategoryUnknown
		}
		matches = append(matches, domain.IdentificationMatch{
			Name:        sg.Name,
			Confidence:  sg.Probability,
			Category:    category,
			Description: sg.Description,
			Symptoms:    nonNil(sg.Symptoms),
			Images:      []string{},
		})
	}
	if len(matches) == 0 {
		matches = append(matches, unidentifiedMatch())
	}

	source := resp.APISource
	if source == "" {
		source = APISourceFallback
	}
	message := resp.Message
	if message == "" {
		message = FallbackMessage
	}

	res := s.buildResult(matches, nil, nil, domain.ConfidenceLow, source, domain.ProvenanceLocalFallback)
	res.FallbackMode = true
	res.Message = message
	res.AdditionalGuidance = resp.AdditionalGuidance
	return res
}

func (s *IdentificationService) unidentifiedResult() *domain.IdentificationResult {
	res := s.buildResult([]domain.IdentificationMatch{unidentifiedMatch()}, nil, nil,
		domain.ConfidenceLow, APISourceFallback, domain.ProvenanceLocalFallback)
	res.FallbackMode = true
	res.Message = FallbackMessage
	return res
}

func unidentifiedMatch() domain.IdentificationMatch {
	return domain.IdentificationMatch{
		Name:        "Unable to Identify Specific Issue",
		Confidence:  unidentifiedConfidence,
		Category:    domain.CategoryUnknown,
		Description: "Primary identification service unavailable. Please consult local experts for accurate diagnosis.",
		Symptoms:    []string{"Visual inspection recommended", "Professional diagnosis needed"},
		Images:      []string{},
	}
}

// localMatch finds the knowledge base entry for a vision match, first by
// name and then by scientific name.
func (s *IdentificationService) localMatch(m domain.IdentificationMatch) *domain.Entry {
	if s.matcher == nil {
		return nil
	}
	if found := s.matcher.SearchByName(m.Name, "", LocalNameMinConfidence); len(found) > 0 {
		s.logger.Debug("local match by name",
			zap.String("name", m.Name),
			zap.String("key", found[0].Key),
			zap.Float64("confidence", found[0].Confidence))
		return found[0].Entry
	}
	if m.ScientificName != nil && *m.ScientificName != "" {
		if found := s.matcher.SearchByName(*m.ScientificName, "", LocalScientificMinConfidence); len(found) > 0 {
			s.logger.Debug("local match by scientific name",
				zap.String("scientific_name", *m.ScientificName),
				zap.String("key", found[0].Key))
			return found[0].Entry
		}
	}
	return nil
}

// enrichMatch replaces the display fields of m with the entry's, keeping
// the confidence reported by the vision client.
func enrichMatch(m domain.IdentificationMatch, e *domain.Entry) domain.IdentificationMatch {
	out := m
	out.Name = e.DisplayName()
	if e.ScientificName != "" {
		sci := e.ScientificName
		out.ScientificName = &sci
	}
	if e.Category != "" {
		out.Category = e.Category
	}
	if e.Description != "" {
		out.Description = e.Description
	}
	if e.Symptoms != nil {
		out.Symptoms = e.Symptoms
	}
	if e.Images != nil {
		out.Images = e.Images
	}
	return out
}

// treatmentsFor prefers the ranked recommendations and falls back to the
// entry's raw records.
func (s *IdentificationService) treatmentsFor(e *domain.Entry) []domain.Treatment {
	if s.recommender != nil {
		recs := s.recommender.Treatments(e, false)
		out := make([]domain.Treatment, 0, len(recs))
		for _, r := range recs {
			out = append(out, r.Treatment)
		}
		return out
	}
	out := make([]domain.Treatment, 0, len(e.Treatments))
	for _, rec := range e.Treatments {
		method := domain.TreatmentMethod(normalize(rec.Method))
		if method == "" {
			method = domain.MethodGeneral
		}
		out = append(out, treatmentFromRecord(rec, method))
	}
	return out
}

func (s *IdentificationService) expertResources() []domain.ExpertResource {
	if s.recommender != nil {
		if experts := s.recommender.ExpertResources(""); len(experts) > 0 {
			return experts
		}
	}
	return domain.DefaultExpertResources()
}

// buildResult applies the empty-list fallbacks shared by every path.
func (s *IdentificationService) buildResult(
	matches []domain.IdentificationMatch,
	treatments []domain.Treatment,
	prevention []string,
	level domain.ConfidenceLevel,
	source string,
	provenance domain.Provenance,
) *domain.IdentificationResult {
	if len(treatments) == 0 {
		treatments = GenericTreatments()
	}
	prevention = dedupeStrings(prevention)
	if len(prevention) == 0 {
		prevention = GenericPreventionTips()
	}
	if matches == nil {
		matches = []domain.IdentificationMatch{}
	}
	return &domain.IdentificationResult{
		ID:              uuid.New(),
		Matches:         matches,
		Treatments:      treatments,
		PreventionTips:  prevention,
		ExpertResources: s.expertResources(),
		ConfidenceLevel: level,
		APISource:       source,
		Provenance:      provenance,
	}
}

// ParseVisionSuggestions converts raw primary API suggestions into
// matches: up to two diseases from each of the first three suggestions,
// or a generic health issue when only a health assessment is present.
func ParseVisionSuggestions(suggestions []domain.VisionSuggestion) []domain.IdentificationMatch {
	if len(suggestions) > maxVisionSuggestions {
		suggestions = suggestions[:maxVisionSuggestions]
	}

	matches := []domain.IdentificationMatch{}
	for _, sg := range suggestions {
		switch {
		case sg.Disease != nil:
			diseases := sg.Disease.Suggestions
			if len(diseases) > maxDiseasesPerSuggestion {
				diseases = diseases[:maxDiseasesPerSuggestion]
			}
			for _, d := range diseases {
				matches = append(matches, diseaseMatch(d))
			}
		case sg.PlantHealthAssessment != nil:
			if m, ok := healthIssueMatch(sg.PlantHealthAssessment); ok {
				matches = append(matches, m)
			}
		}
	}
	return matches
}

func diseaseMatch(d domain.DiseaseSuggestion) domain.IdentificationMatch {
	m := domain.IdentificationMatch{
		Name:        d.Name,
		Confidence:  d.Probability,
		Category:    domain.CategoryDisease,
		Description: d.Details.Description,
		Symptoms:    nonNil(d.Details.CommonNames),
		Images:      []string{},
	}
	if m.Name == "" {
		m.Name = "Unknown Disease"
	}
	if m.Description == "" {
		m.Description = "No description available"
	}
	if d.Details.EntityName != "" {
		sci := d.Details.EntityName
		m.ScientificName = &sci
	}
	for _, img := range d.SimilarImages {
		if len(m.Images) == maxMatchImages {
			break
		}
		if img.URL != "" {
			m.Images = append(m.Images, img.URL)
		}
	}
	return m
}

// healthIssueMatch reports a generic issue when the plant is more likely
// unhealthy than healthy. A missing probability counts as 0 for the check
// and 0.5 for the confidence.
func healthIssueMatch(h *domain.HealthAssessment) (domain.IdentificationMatch, bool) {
	check, conf := 0.0, 0.5
	if h.IsHealthy != nil {
		check = h.IsHealthy.Probability
		conf = 1 - h.IsHealthy.Probability
	}
	if check >= healthyProbabilityCutoff {
		return domain.IdentificationMatch{}, false
	}
	return domain.IdentificationMatch{
		Name:        "Plant Health Issue Detected",
		Confidence:  conf,
		Category:    CategoryHealthIssue,
		Description: "Plant appears to have health issues that require attention",
		Symptoms:    []string{"General plant stress indicators detected"},
		Images:      []string{},
	}, true
}

// Status reports which identification paths are available.
func (s *IdentificationService) Status() domain.ServiceStatus {
	var kb *domain.KnowledgeBase
	if s.matcher != nil {
		kb = s.matcher.KnowledgeBase()
	}
	st := domain.ServiceStatus{
		ServiceAvailable:    true,
		PrimaryAPIAvailable: s.primary != nil,
		FallbackAvailable:   true,
		LocalDatabaseLoaded: kb.Len() > 0,
		PestDiseaseCount:    kb.Len(),
	}
	if r, ok := s.primary.(domain.RateLimitReporter); ok {
		rl := r.RateLimitStatus()
		st.RateLimitStatus = &rl
	}
	return st
}

// TimeoutResult is returned when identification does not finish in time.
func TimeoutResult() *domain.IdentificationResult {
	return cannedResult(
		domain.IdentificationMatch{
			Name:        "Identification Timeout",
			Confidence:  diagnosticMatchConfidence,
			Category:    domain.CategoryUnknown,
			Description: "The identification service took too long to respond. Please try again or consult a local expert.",
			Symptoms:    []string{"Unable to analyze image within time limit"},
			Images:      []string{},
		},
		domain.APISourceTimeout,
		domain.ProvenanceTimeout,
		"Identification timed out. Providing general guidance.",
	)
}

// ServiceErrorResult is returned when identification fails unexpectedly.
func ServiceErrorResult() *domain.IdentificationResult {
	return cannedResult(
		domain.IdentificationMatch{
			Name:        "Service Error - Unable to Analyze",
			Confidence:  diagnosticMatchConfidence,
			Category:    domain.CategoryUnknown,
			Description: "An unexpected error occurred while analyzing the image. Please consult local experts for diagnosis.",
			Symptoms:    []string{"Image could not be analyzed"},
			Images:      []string{},
		},
		domain.APISourceServiceError,
		domain.ProvenanceServiceError,
		"Identification service error. Providing general guidance.",
	)
}

func cannedResult(m domain.IdentificationMatch, source string, provenance domain.Provenance, message string) *domain.IdentificationResult {
	treatments := []domain.Treatment{
		{
			Method:      domain.MethodConsultation,
			Treatment:   "Consult a local agricultural expert",
			Application: "Bring a sample or clear photos of the affected plant",
			Timing:      "As soon as possible",
			SafetyNotes: "Isolate affected plants until diagnosed",
		},
	}
	treatments = append(treatments, GenericTreatments()...)

	return &domain.IdentificationResult{
		ID:              uuid.New(),
		Matches:         []domain.IdentificationMatch{m},
		Treatments:      treatments,
		PreventionTips:  GenericPreventionTips(),
		ExpertResources: domain.DefaultExpertResources(),
		ConfidenceLevel: domain.ConfidenceLow,
		APISource:       source,
		Provenance:      provenance,
		FallbackMode:    true,
		Message:         message,
	}
}

func maxConfidence(matches []domain.IdentificationMatch) float64 {
	var best float64
	for _, m := range matches {
		best = max(best, m.Confidence)
	}
	return best
}

// dedupeStrings keeps the first occurrence of each string.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
