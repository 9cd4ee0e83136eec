package entity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound      = errors.New("lead no encontrado")
	ErrInvalidStatus     = errors.New("estado de lead inválido")
	ErrTransitionBlocked = errors.New("transición de estado no permitida")
	// ErrStatusConflict means the stored status changed after it was read.
	ErrStatusConflict = errors.New("el estado del lead cambió, vuelve a cargarlo")
)

type LeadStatus string

const (
	LeadStatusLead       LeadStatus = "lead"
	LeadStatusOnboarding LeadStatus = "onboarding"
	LeadStatusSale       LeadStatus = "sale"
	LeadStatusRejected   LeadStatus = "rejected"
)

// SystemActor is recorded as performedBy when no human actor is known.
const SystemActor = "system"

// leadTransitions lists the manual transitions. LeadStatusSale is only
// reachable through sale creation and has no outgoing edges.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusLead:       {LeadStatusOnboarding, LeadStatusRejected},
	LeadStatusOnboarding: {LeadStatusLead, LeadStatusRejected},
	LeadStatusRejected:   {LeadStatusLead, LeadStatusOnboarding},
	LeadStatusSale:       {},
}

func ParseLeadStatus(s string) (LeadStatus, error) {
	switch st := LeadStatus(strings.TrimSpace(s)); st {
	case LeadStatusLead, LeadStatusOnboarding, LeadStatusSale, LeadStatusRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// CanTransitionTo reports whether a manual status change from s to next is allowed.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the manual targets reachable from s.
func (s LeadStatus) AllowedTransitions() []LeadStatus {
	out := make([]LeadStatus, len(leadTransitions[s]))
	copy(out, leadTransitions[s])
	return out
}

// CanConvertToSale reports whether a lead in status s may be converted into a sale.
func (s LeadStatus) CanConvertToSale() bool {
	return s == LeadStatusLead || s == LeadStatusOnboarding
}

type LeadHistoryEntry struct {
	ID             string     `json:"id"`
	PreviousStatus LeadStatus `json:"previousStatus"`
	NewStatus      LeadStatus `json:"newStatus"`
	Details        string     `json:"details,omitempty"`
	PerformedBy    string     `json:"performedBy"`
	PerformedAt    time.Time  `json:"performedAt"`
}

func NewLeadHistoryEntry(prev, next LeadStatus, details, performedBy string, at time.Time) LeadHistoryEntry {
	if performedBy == "" {
		performedBy = SystemActor
	}
	return LeadHistoryEntry{
		ID:             uuid.New().String(),
		PreviousStatus: prev,
		NewStatus:      next,
		Details:        details,
		PerformedBy:    performedBy,
		PerformedAt:    at,
	}
}

// Lead is a prospective customer captured by the intake quiz.
type Lead struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role,omitempty"`
	Level      string     `json:"level,omitempty"`
	Software   string     `json:"software,omitempty"`
	Clients    string     `json:"clients,omitempty"`
	Investment string     `json:"investment,omitempty"`
	Why        string     `json:"why,omitempty"`
	Status     LeadStatus `json:"status"`
	SaleID     string     `json:"saleId,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	AssignedTo string     `json:"assignedTo,omitempty"`

	// AgentData is an opaque payload pushed by the enrichment agent.
	AgentData json.RawMessage `json:"agentData,omitempty"`

	StatusHistory []LeadHistoryEntry `json:"statusHistory"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// NewLead builds a lead in the initial status regardless of caller input.
func NewLead(name, email, phone string, at time.Time) *Lead {
	return &Lead{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		Phone:         phone,
		Status:        LeadStatusLead,
		StatusHistory: []LeadHistoryEntry{},
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

// LeadPatch carries the mutable subset of lead fields. Nil means unchanged.
type LeadPatch struct {
	Status     *LeadStatus
	Notes      *string
	AssignedTo *string
	AgentData  json.RawMessage
}

type LeadFilter struct {
	Status LeadStatus
	Limit  int
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	// Update applies patch and appends entries to the status history in one write.
	Update(ctx context.Context, id string, patch LeadPatch, entries []LeadHistoryEntry, at time.Time) (*Lead, error)
}
