package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"chargepulse/internal/models"
	"chargepulse/internal/service"
)

// EvaluateHandler is the process entry point: it receives one trigger event
// and answers with the decided charging status.
type EvaluateHandler struct {
	svc    *service.StatusService
	logger *zap.Logger
}

// NewEvaluateHandler builds the handler.
func NewEvaluateHandler(svc *service.StatusService, logger *zap.Logger) *EvaluateHandler {
	return &EvaluateHandler{
		svc:    svc,
		logger: logger,
	}
}

// Handle handles POST /internal/sessions/evaluate.
func (h *EvaluateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event models.TriggerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := event.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("evaluating session",
		zap.String("booking_id", event.BookingID),
		zap.String("vendor_id", event.VendorID))

	status := h.svc.EvaluateWithFallback(r.Context(), event)
	writeJSON(w, http.StatusOK, map[string]string{"current_status": status.String()})
}
