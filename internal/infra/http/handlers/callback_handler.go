package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

const callbackActor = "api_callback"

type LeadUpdater interface {
	Execute(ctx context.Context, input usecase.UpdateLeadInput) (*entity.Lead, error)
}

type AgentDataUpdater interface {
	Execute(ctx context.Context, input usecase.UpdateLeadFromAgentInput) (*entity.Lead, error)
}

// CallbackHandler serves the two API-key protected endpoints used by
// external automations.
type CallbackHandler struct {
	apiKey      string
	updateLead  LeadUpdater
	updateAgent AgentDataUpdater
	logger      *zap.Logger
}

func NewCallbackHandler(apiKey string, updateLead LeadUpdater, updateAgent AgentDataUpdater, logger *zap.Logger) *CallbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallbackHandler{apiKey: apiKey, updateLead: updateLead, updateAgent: updateAgent, logger: logger}
}

type UpdateLeadStatusRequest struct {
	LeadID string  `json:"leadId"`
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

type UpdateLeadStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
	Status  string `json:"status,omitempty"`
}

type UpdateLeadFromAgentRequest struct {
	LeadID    string          `json:"leadId"`
	AgentData json.RawMessage `json:"agentData"`
}

type callbackError struct {
	Error string `json:"error"`
}

func (h *CallbackHandler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}

	var req UpdateLeadStatusRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, callbackError{"Invalid JSON body"})
		return
	}
	req.LeadID = strings.TrimSpace(req.LeadID)
	if req.LeadID == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, callbackError{"Missing required fields: leadId, status"})
		return
	}
	if _, err := entity.ParseLeadStatus(req.Status); err != nil {
		writeJSON(w, http.StatusBadRequest, callbackError{"Invalid status. Must be one of: lead, onboarding, sale, rejected"})
		return
	}

	lead, err := h.updateLead.Execute(r.Context(), usecase.UpdateLeadInput{
		LeadID:      req.LeadID,
		Status:      &req.Status,
		Notes:       req.Notes,
		Details:     "Actualizado vía API",
		PerformedBy: callbackActor,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	middleware.RecordLeadStatusChange(string(lead.Status), "callback")

	writeJSON(w, http.StatusOK, UpdateLeadStatusResponse{
		Success: true,
		Message: "Lead status updated successfully",
		LeadID:  lead.ID,
		Status:  string(lead.Status),
	})
}

func (h *CallbackHandler) UpdateLeadFromAgent(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}

	var req UpdateLeadFromAgentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, callbackError{"Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.LeadID) == "" || len(req.AgentData) == 0 {
		writeJSON(w, http.StatusBadRequest, callbackError{"Missing required fields: leadId, agentData"})
		return
	}

	lead, err := h.updateAgent.Execute(r.Context(), usecase.UpdateLeadFromAgentInput{
		LeadID:    strings.TrimSpace(req.LeadID),
		AgentData: req.AgentData,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateLeadStatusResponse{
		Success: true,
		Message: "Lead agent data updated successfully",
		LeadID:  lead.ID,
	})
}

// guard answers preflight, rejects other methods and checks the API key.
// It reports whether the request may proceed.
func (h *CallbackHandler) guard(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return false
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, callbackError{"Method not allowed"})
		return false
	}

	token, ok := middleware.BearerToken(r)
	if !ok || h.apiKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.apiKey)) != 1 {
		writeJSON(w, http.StatusForbidden, callbackError{"Unauthorized"})
		return false
	}
	return true
}

func (h *CallbackHandler) writeError(w http.ResponseWriter, err error) {
	de, ok := usecase.AsDomainError(err)
	if !ok {
		h.logger.Error("callback update failed", zap.Error(err))
		middleware.RecordIntegrationError("callback")
		writeJSON(w, http.StatusInternalServerError, callbackError{"Internal server error"})
		return
	}
	switch de.Code {
	case usecase.CodeLeadNotFound:
		writeJSON(w, http.StatusNotFound, callbackError{"Lead not found"})
	default:
		writeJSON(w, http.StatusBadRequest, callbackError{de.Message})
	}
}
