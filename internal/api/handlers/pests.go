package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/agroecology/cropvision/internal/service"
	"github.com/go-chi/chi/v5"
)

type PestHandler struct {
	matcher     *service.MatchingService
	recommender *service.RecommendationService
}

func NewPestHandler(matcher *service.MatchingService, recommender *service.RecommendationService) *PestHandler {
	return &PestHandler{matcher: matcher, recommender: recommender}
}

type matchesResponse struct {
	Query   string                `json:"query,omitempty"`
	Matches []domain.MatchSummary `json:"matches"`
	Count   int                   `json:"count"`
}

func (h *PestHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	minConfidence, err := queryFloat(r, "min_confidence", service.DefaultNameMinConfidence)
	if err != nil || !validConfidence(minConfidence) {
		writeError(w, http.StatusBadRequest, "min_confidence must be a number between 0 and 1")
		return
	}

	matches := h.matcher.SearchByName(q, r.URL.Query().Get("category"), minConfidence)
	summaries := domain.SummarizeMatches(matches, 0)
	writeJSON(w, http.StatusOK, matchesResponse{Query: q, Matches: summaries, Count: len(summaries)})
}

type symptomsRequest struct {
	Symptoms      []string `json:"symptoms"`
	CropType      string   `json:"crop_type"`
	MinConfidence *float64 `json:"min_confidence"`
}

func (h *PestHandler) Symptoms(w http.ResponseWriter, r *http.Request) {
	var req symptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "symptoms must not be empty")
		return
	}
	minConfidence := service.DefaultSymptomMinConfidence
	if req.MinConfidence != nil {
		if !validConfidence(*req.MinConfidence) {
			writeError(w, http.StatusBadRequest, "min_confidence must be between 0 and 1")
			return
		}
		minConfidence = *req.MinConfidence
	}

	matches := h.matcher.SearchBySymptoms(req.Symptoms, req.CropType, minConfidence)
	summaries := domain.SummarizeMatches(matches, 0)
	writeJSON(w, http.StatusOK, matchesResponse{Matches: summaries, Count: len(summaries)})
}

type analyzeRequest struct {
	Query    string   `json:"query"`
	Symptoms []string `json:"symptoms"`
	CropType string   `json:"crop_type"`
}

func (h *PestHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" && len(req.Symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "query or symptoms is required")
		return
	}

	writeJSON(w, http.StatusOK, h.recommender.ComprehensiveAnalysis(req.Query, req.Symptoms, req.CropType))
}

func (h *PestHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	entry, err := h.matcher.Entry(chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type treatmentsResponse struct {
	Key        string                           `json:"key"`
	Treatments []domain.TreatmentRecommendation `json:"treatments"`
}

func (h *PestHandler) Treatments(w http.ResponseWriter, r *http.Request) {
	organicOnly, err := queryBool(r, "organic_only")
	if err != nil {
		writeError(w, http.StatusBadRequest, "organic_only must be a boolean")
		return
	}

	key := chi.URLParam(r, "key")
	treatments, err := h.recommender.TreatmentsForKey(key, organicOnly)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get treatments")
		return
	}
	writeJSON(w, http.StatusOK, treatmentsResponse{Key: key, Treatments: treatments})
}

func (h *PestHandler) Experts(w http.ResponseWriter, r *http.Request) {
	experts := h.recommender.ExpertResources(r.URL.Query().Get("specialization"))
	writeJSON(w, http.StatusOK, map[string]any{"experts": experts, "count": len(experts)})
}
