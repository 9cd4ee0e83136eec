package memory

import (
	"context"
	"sort"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type SaleRepository struct {
	s *Store
}

func (r *SaleRepository) CreateForLead(ctx context.Context, sale *entity.Sale, leadEntry entity.LeadHistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[sale.LeadID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if l.SaleID != "" || l.Status == entity.LeadStatusSale {
		return entity.ErrSaleAlreadyExists
	}
	if l.Status != leadEntry.PreviousStatus {
		return entity.ErrStatusConflict
	}
	r.s.sales[sale.ID] = cloneSale(sale)
	l.Status = entity.LeadStatusSale
	l.SaleID = sale.ID
	l.StatusHistory = append(l.StatusHistory, leadEntry)
	l.UpdatedAt = sale.CreatedAt
	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[id]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	return cloneSale(s), nil
}

func (r *SaleRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, s := range r.s.sales {
		if s.LeadID == leadID {
			return cloneSale(s), nil
		}
	}
	return nil, entity.ErrSaleNotFound
}

func (r *SaleRepository) List(ctx context.Context, filter entity.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Sale, 0, len(r.s.sales))
	for _, s := range r.s.sales {
		if filter.ActiveOnly && !s.IsActiveMember() {
			continue
		}
		if filter.AccessGranted != nil && s.AccessGranted != *filter.AccessGranted {
			continue
		}
		out = append(out, cloneSale(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *SaleRepository) AppendPayment(ctx context.Context, saleID string, proof entity.PaymentProof, entry entity.SaleHistoryEntry, at time.Time) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[saleID]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	s.PaidAmount = s.PaidAmount.Add(proof.Amount)
	s.PaymentProofs = append(s.PaymentProofs, proof)
	s.StatusHistory = append(s.StatusHistory, entry)
	s.UpdatedAt = at
	return cloneSale(s), nil
}

func (r *SaleRepository) SetAccess(ctx context.Context, saleID string, window entity.AccessWindow, entry entity.SaleHistoryEntry, at time.Time) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[saleID]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	s.AccessGranted = window.Granted
	s.AccessStartDate = window.Start
	s.AccessEndDate = window.End
	s.StatusHistory = append(s.StatusHistory, entry)
	s.UpdatedAt = at
	return cloneSale(s), nil
}

func (r *SaleRepository) SetExemption(ctx context.Context, saleID, reason string, entry entity.SaleHistoryEntry, at time.Time) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[saleID]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	s.ExemptionGranted = true
	s.ExemptionReason = reason
	s.StatusHistory = append(s.StatusHistory, entry)
	s.UpdatedAt = at
	return cloneSale(s), nil
}
