package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/contact"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

// LeadHandler serves the public intake quiz.
type LeadHandler struct {
	capture *usecase.CaptureLeadUseCase
	logger  *zap.Logger
}

func NewLeadHandler(capture *usecase.CaptureLeadUseCase, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{capture: capture, logger: logger}
}

func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var req usecase.CaptureLeadInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	output, err := h.capture.Execute(r.Context(), req)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	middleware.RecordLeadCaptured()

	h.logger.Info("lead captured",
		zap.String("lead_id", output.ID),
		zap.String("client_ip", middleware.ClientIP(r)),
	)
	writeJSON(w, http.StatusCreated, output)
}

// Countries lists the calling codes the intake form offers.
func (h *LeadHandler) Countries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contact.Countries())
}
