package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/agroecology/cropvision/internal/service"
	"go.uber.org/zap"
)

type PredictHandler struct {
	svc    *service.PredictionService
	logger *zap.Logger
}

func NewPredictHandler(svc *service.PredictionService, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{svc: svc, logger: logger}
}

type predictRequest struct {
	domain.CropFeatures
	SoilType string `json:"soil_type"`
}

func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := h.svc.Predict(r.Context(), req.CropFeatures, req.SoilType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFeatures):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrClassifierUnavailable):
			writeError(w, http.StatusServiceUnavailable, "crop prediction is not available")
		default:
			h.logger.Error("crop prediction failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "crop prediction failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, pred)
}
