package memory

import (
	"context"
	"sort"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type LeadRepository struct {
	s *Store
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.leads[lead.ID] = cloneLead(lead)
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return cloneLead(l), nil
}

// List returns leads newest first.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Lead, 0, len(r.s.leads))
	for _, l := range r.s.leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, cloneLead(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch, entries []entity.LeadHistoryEntry, at time.Time) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	if len(entries) > 0 && entries[0].PreviousStatus != l.Status {
		return nil, entity.ErrStatusConflict
	}
	applyLeadPatch(l, patch)
	l.StatusHistory = append(l.StatusHistory, entries...)
	l.UpdatedAt = at
	return cloneLead(l), nil
}

func applyLeadPatch(l *entity.Lead, patch entity.LeadPatch) {
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	if patch.Notes != nil {
		l.Notes = *patch.Notes
	}
	if patch.AssignedTo != nil {
		l.AssignedTo = *patch.AssignedTo
	}
	if patch.AgentData != nil {
		l.AgentData = append([]byte{}, patch.AgentData...)
	}
}
