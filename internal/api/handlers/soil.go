package handlers

import (
	"net/http"
	"strings"

	"github.com/agroecology/cropvision/internal/service"
	"github.com/go-chi/chi/v5"
)

type SoilHandler struct {
	svc *service.SoilService
}

func NewSoilHandler(svc *service.SoilService) *SoilHandler {
	return &SoilHandler{svc: svc}
}

func (h *SoilHandler) List(w http.ResponseWriter, r *http.Request) {
	types := h.svc.SoilTypes()
	writeJSON(w, http.StatusOK, map[string]any{"soil_types": types, "count": len(types)})
}

func (h *SoilHandler) Get(w http.ResponseWriter, r *http.Request) {
	soil := chi.URLParam(r, "soil")
	st, ok := h.svc.SoilType(soil)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown soil type: "+soil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Advice returns compatibility, amendments and variety advice for a crop.
func (h *SoilHandler) Advice(w http.ResponseWriter, r *http.Request) {
	soil := chi.URLParam(r, "soil")
	crop := strings.TrimSpace(chi.URLParam(r, "crop"))
	if crop == "" {
		writeError(w, http.StatusBadRequest, "crop is required")
		return
	}

	advice := h.svc.Advice(crop, soil)
	if advice == nil {
		writeError(w, http.StatusNotFound, "unknown soil type: "+soil)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}
