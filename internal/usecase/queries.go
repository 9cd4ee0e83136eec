package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

const defaultListLimit = 200

// SaleView is a sale with the values derived at read time.
type SaleView struct {
	*entity.Sale
	AccessStatus    entity.AccessStatus `json:"accessStatus"`
	IsActiveMember  bool                `json:"isActiveMember"`
	PaymentProgress decimal.Decimal     `json:"paymentProgress"`
}

func NewSaleView(s *entity.Sale, now time.Time) SaleView {
	return SaleView{
		Sale:            s,
		AccessStatus:    s.AccessStatus(now),
		IsActiveMember:  s.IsActiveMember(),
		PaymentProgress: s.PaymentProgress(),
	}
}

// LeadDetail is a lead with its sale, when converted.
type LeadDetail struct {
	*entity.Lead
	AllowedTransitions []entity.LeadStatus `json:"allowedTransitions"`
	Sale               *SaleView           `json:"sale,omitempty"`
}

type CRMQueryUseCase struct {
	Leads LeadRepositoryInterface
	Sales SaleRepositoryInterface
	Now   func() time.Time
}

func NewCRMQueryUseCase(leads LeadRepositoryInterface, sales SaleRepositoryInterface) *CRMQueryUseCase {
	return &CRMQueryUseCase{Leads: leads, Sales: sales, Now: time.Now}
}

func (uc *CRMQueryUseCase) ListLeads(ctx context.Context, status string, limit int) ([]*entity.Lead, error) {
	filter := entity.LeadFilter{Limit: clampLimit(limit)}
	if status != "" {
		st, err := entity.ParseLeadStatus(status)
		if err != nil {
			return nil, newDomainError(CodeInvalidStatus, err.Error())
		}
		filter.Status = st
	}
	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, databaseError("error al listar leads", err)
	}
	return leads, nil
}

func (uc *CRMQueryUseCase) GetLead(ctx context.Context, id string) (*LeadDetail, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, mapLeadError(err)
	}
	detail := &LeadDetail{Lead: lead, AllowedTransitions: lead.Status.AllowedTransitions()}
	if lead.SaleID != "" {
		sale, err := uc.Sales.FindByID(ctx, lead.SaleID)
		switch {
		case err == nil:
			view := NewSaleView(sale, uc.Now())
			detail.Sale = &view
		case !errors.Is(err, entity.ErrSaleNotFound):
			return nil, mapSaleError(err)
		}
	}
	return detail, nil
}

func (uc *CRMQueryUseCase) ListSales(ctx context.Context, filter entity.SaleFilter) ([]SaleView, error) {
	filter.Limit = clampLimit(filter.Limit)
	sales, err := uc.Sales.List(ctx, filter)
	if err != nil {
		return nil, databaseError("error al listar ventas", err)
	}
	now := uc.Now()
	views := make([]SaleView, 0, len(sales))
	for _, s := range sales {
		views = append(views, NewSaleView(s, now))
	}
	return views, nil
}

func (uc *CRMQueryUseCase) GetSale(ctx context.Context, id string) (*SaleView, error) {
	sale, err := uc.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, mapSaleError(err)
	}
	view := NewSaleView(sale, uc.Now())
	return &view, nil
}

func (uc *CRMQueryUseCase) GetSaleByLead(ctx context.Context, leadID string) (*SaleView, error) {
	sale, err := uc.Sales.FindByLeadID(ctx, leadID)
	if err != nil {
		return nil, mapSaleError(err)
	}
	view := NewSaleView(sale, uc.Now())
	return &view, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}
