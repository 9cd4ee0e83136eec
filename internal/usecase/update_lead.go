package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

// UpdateLeadUseCase changes notes, assignment and status of a lead. Status
// changes go through the transition table and always leave a history entry.
type UpdateLeadUseCase struct {
	Repo LeadRepositoryInterface
	Now  func() time.Time
}

func NewUpdateLeadUseCase(repo LeadRepositoryInterface) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Repo: repo, Now: time.Now}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, input UpdateLeadInput) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, mapLeadError(err)
	}

	now := uc.Now().UTC()
	var patch entity.LeadPatch
	var entries []entity.LeadHistoryEntry

	if input.Status != nil {
		next, err := entity.ParseLeadStatus(*input.Status)
		if err != nil {
			return nil, newDomainError(CodeInvalidStatus, "estado inválido: usa lead, onboarding, sale o rejected")
		}
		if next != lead.Status {
			if err := checkManualTransition(lead.Status, next); err != nil {
				return nil, err
			}
			patch.Status = &next
			entries = append(entries, entity.NewLeadHistoryEntry(lead.Status, next, input.Details, input.PerformedBy, now))
		}
	}
	if input.Notes != nil {
		notes := strings.TrimSpace(*input.Notes)
		patch.Notes = &notes
	}
	if input.AssignedTo != nil {
		assigned := strings.TrimSpace(*input.AssignedTo)
		patch.AssignedTo = &assigned
	}

	updated, err := uc.Repo.Update(ctx, lead.ID, patch, entries, now)
	if err != nil {
		return nil, mapLeadError(err)
	}
	return updated, nil
}

func checkManualTransition(from, to entity.LeadStatus) error {
	switch {
	case from == entity.LeadStatusSale:
		return newDomainError(CodeSaleLocked, "el lead ya es una venta; cualquier cambio requiere soporte")
	case to == entity.LeadStatusSale:
		return newDomainError(CodeInvalidTransition, "para marcar una venta usa la creación de venta")
	case !from.CanTransitionTo(to):
		return newDomainError(CodeInvalidTransition, "transición no permitida de "+string(from)+" a "+string(to))
	}
	return nil
}

// UpdateLeadFromAgentUseCase stores the enrichment payload pushed by the agent.
type UpdateLeadFromAgentUseCase struct {
	Repo LeadRepositoryInterface
	Now  func() time.Time
}

func NewUpdateLeadFromAgentUseCase(repo LeadRepositoryInterface) *UpdateLeadFromAgentUseCase {
	return &UpdateLeadFromAgentUseCase{Repo: repo, Now: time.Now}
}

func (uc *UpdateLeadFromAgentUseCase) Execute(ctx context.Context, input UpdateLeadFromAgentInput) (*entity.Lead, error) {
	if strings.TrimSpace(input.LeadID) == "" {
		return nil, newValidationError([]ValidationError{{"leadId", "es obligatorio"}})
	}
	data := bytes.TrimSpace(input.AgentData)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || !json.Valid(data) {
		return nil, newValidationError([]ValidationError{{"agentData", "debe ser un JSON válido"}})
	}

	updated, err := uc.Repo.Update(ctx, input.LeadID, entity.LeadPatch{AgentData: data}, nil, uc.Now().UTC())
	if err != nil {
		return nil, mapLeadError(err)
	}
	return updated, nil
}

func mapLeadError(err error) error {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return newDomainError(CodeLeadNotFound, entity.ErrLeadNotFound.Error())
	case errors.Is(err, entity.ErrStatusConflict):
		return newDomainError(CodeStatusConflict, entity.ErrStatusConflict.Error())
	case errors.Is(err, entity.ErrSaleAlreadyExists):
		return newDomainError(CodeSaleAlreadyExists, entity.ErrSaleAlreadyExists.Error())
	case errors.Is(err, entity.ErrTransitionBlocked):
		return newDomainError(CodeInvalidTransition, entity.ErrTransitionBlocked.Error())
	}
	return databaseError("error al acceder al lead", err)
}
