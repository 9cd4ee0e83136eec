package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/http/handlers"
	"github.com/edicionpersuasiva/crm/internal/infra/memory"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

const testAPIKey = "cb-secret-key"

func seedLead(t *testing.T, store *memory.Store, status entity.LeadStatus) *entity.Lead {
	t.Helper()
	lead := entity.NewLead("Diego Pardo", "diego@example.com", "+5215512345678", time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	lead.Status = status
	require.NoError(t, store.Leads().Create(context.Background(), lead))
	return lead
}

func newCallbackHandler(store *memory.Store) *handlers.CallbackHandler {
	return handlers.NewCallbackHandler(testAPIKey,
		usecase.NewUpdateLeadUseCase(store.Leads()),
		usecase.NewUpdateLeadFromAgentUseCase(store.Leads()),
		nil)
}

func callback(h http.HandlerFunc, method, key string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/updateLeadStatus", &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestCallbackPreflight(t *testing.T) {
	h := newCallbackHandler(memory.NewStore())

	rec := callback(h.UpdateLeadStatus, http.MethodOptions, "", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, rec.Body.String())
}

func TestCallbackRejectsOtherMethods(t *testing.T) {
	h := newCallbackHandler(memory.NewStore())

	rec := callback(h.UpdateLeadFromAgent, http.MethodGet, testAPIKey, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCallbackRequiresAPIKey(t *testing.T) {
	store := memory.NewStore()
	lead := seedLead(t, store, entity.LeadStatusLead)
	h := newCallbackHandler(store)

	for _, key := range []string{"", "wrong-key"} {
		rec := callback(h.UpdateLeadStatus, http.MethodPost, key, map[string]string{"leadId": lead.ID, "status": "onboarding"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Unauthorized", errorBody(t, rec))
	}

	stored, err := store.Leads().FindByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusLead, stored.Status)
}

func TestCallbackUpdateLeadStatus(t *testing.T) {
	store := memory.NewStore()
	lead := seedLead(t, store, entity.LeadStatusLead)
	h := newCallbackHandler(store)

	rec := callback(h.UpdateLeadStatus, http.MethodPost, testAPIKey,
		map[string]string{"leadId": lead.ID, "status": "onboarding", "notes": "agendó llamada"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.UpdateLeadStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, lead.ID, resp.LeadID)
	assert.Equal(t, "onboarding", resp.Status)

	stored, err := store.Leads().FindByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "agendó llamada", stored.Notes)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "api_callback", stored.StatusHistory[0].PerformedBy)
	assert.Equal(t, entity.LeadStatusLead, stored.StatusHistory[0].PreviousStatus)
}

func TestCallbackUpdateLeadStatusErrors(t *testing.T) {
	store := memory.NewStore()
	open := seedLead(t, store, entity.LeadStatusLead)
	sold := seedLead(t, store, entity.LeadStatusSale)
	h := newCallbackHandler(store)

	cases := []struct {
		name string
		body any
		code int
	}{
		{"missing fields", map[string]string{"leadId": open.ID}, http.StatusBadRequest},
		{"unknown status", map[string]string{"leadId": open.ID, "status": "won"}, http.StatusBadRequest},
		{"sale requires create sale", map[string]string{"leadId": open.ID, "status": "sale"}, http.StatusBadRequest},
		{"sale is locked", map[string]string{"leadId": sold.ID, "status": "rejected"}, http.StatusBadRequest},
		{"unknown lead", map[string]string{"leadId": "missing", "status": "rejected"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := callback(h.UpdateLeadStatus, http.MethodPost, testAPIKey, tc.body)
			assert.Equal(t, tc.code, rec.Code)
			assert.NotEmpty(t, errorBody(t, rec))
		})
	}
}

func TestCallbackInvalidJSON(t *testing.T) {
	h := newCallbackHandler(memory.NewStore())
	req := httptest.NewRequest(http.MethodPost, "/updateLeadStatus", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()

	h.UpdateLeadStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingUpdater struct{}

func (failingUpdater) Execute(ctx context.Context, input usecase.UpdateLeadInput) (*entity.Lead, error) {
	return nil, &usecase.TechnicalError{Code: usecase.CodeDatabase, Message: "db down", Err: errors.New("timeout")}
}

func TestCallbackStorageFailure(t *testing.T) {
	h := handlers.NewCallbackHandler(testAPIKey, failingUpdater{}, nil, nil)

	rec := callback(h.UpdateLeadStatus, http.MethodPost, testAPIKey, map[string]string{"leadId": "l1", "status": "rejected"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rec))
}

func TestCallbackUpdateLeadFromAgent(t *testing.T) {
	store := memory.NewStore()
	lead := seedLead(t, store, entity.LeadStatusOnboarding)
	h := newCallbackHandler(store)

	payload := map[string]any{
		"leadId":    lead.ID,
		"agentData": map[string]any{"score": 87, "summary": "interesado en plan de 3 pagos"},
	}
	rec := callback(h.UpdateLeadFromAgent, http.MethodPost, testAPIKey, payload)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, lead.ID, resp["leadId"])
	assert.NotContains(t, resp, "status")

	stored, err := store.Leads().FindByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":87,"summary":"interesado en plan de 3 pagos"}`, string(stored.AgentData))
	assert.Equal(t, entity.LeadStatusOnboarding, stored.Status)
	assert.Empty(t, stored.StatusHistory)
}

func TestCallbackUpdateLeadFromAgentErrors(t *testing.T) {
	h := newCallbackHandler(memory.NewStore())

	rec := callback(h.UpdateLeadFromAgent, http.MethodPost, testAPIKey, map[string]any{"leadId": "l1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = callback(h.UpdateLeadFromAgent, http.MethodPost, testAPIKey, map[string]any{"leadId": "missing", "agentData": map[string]int{"a": 1}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
