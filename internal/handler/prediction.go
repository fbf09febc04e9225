package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/service"
	"github.com/go-chi/chi/v5"
)

// PredictionHandler handles the gateway's prediction and feedback endpoints.
type PredictionHandler struct {
	predictionSvc *service.PredictionService
	logger        *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictionSvc *service.PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionSvc: predictionSvc,
		logger:        logger,
	}
}

// Predict handles POST /api/v0.1/deployments/{name}/predictions.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.predictionSvc.Predict(r.Context(), chi.URLParam(r, "name"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteRawJSON(w, http.StatusOK, resp)
}

// Feedback handles POST /api/v0.1/deployments/{name}/feedback.
func (h *PredictionHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.predictionSvc.SendFeedback(r.Context(), chi.URLParam(r, "name"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteRawJSON(w, http.StatusOK, resp)
}

// fail logs microservice failures with their cause, which the response
// does not expose, then writes the error response.
func (h *PredictionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Category() == domain.MicroserviceError {
		id, _ := service.RequestIDFromContext(r.Context())
		h.logger.Warn("microservice call failed",
			slog.String("deployment", chi.URLParam(r, "name")),
			slog.String("request_id", id),
			slog.String("error", err.Error()),
		)
	}
	mapError(w, err)
}
