package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

// CreateSaleUseCase converts a lead into a sale. It is the only path that
// moves a lead into the sale status.
type CreateSaleUseCase struct {
	LeadRepo LeadRepositoryInterface
	SaleRepo SaleRepositoryInterface
	Now      func() time.Time
}

func NewCreateSaleUseCase(leadRepo LeadRepositoryInterface, saleRepo SaleRepositoryInterface) *CreateSaleUseCase {
	return &CreateSaleUseCase{LeadRepo: leadRepo, SaleRepo: saleRepo, Now: time.Now}
}

func (uc *CreateSaleUseCase) Execute(ctx context.Context, input CreateSaleInput) (*entity.Sale, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, mapLeadError(err)
	}
	if lead.SaleID != "" || lead.Status == entity.LeadStatusSale {
		return nil, newDomainError(CodeSaleAlreadyExists, entity.ErrSaleAlreadyExists.Error())
	}
	if !lead.Status.CanConvertToSale() {
		return nil, newDomainError(CodeInvalidTransition, "solo un lead en estado lead u onboarding puede convertirse en venta")
	}

	var fieldErrors []ValidationError
	product, err := entity.ParseProduct(input.Product)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{"product", "usa acceso_curso u others"})
	}
	plan, err := entity.FindPaymentPlan(entity.PaymentPlanID(input.PaymentPlan))
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{"paymentPlan", "plan de pago desconocido"})
	}
	total := plan.Total
	if input.TotalAmount != nil && !input.TotalAmount.IsZero() {
		total = *input.TotalAmount
	}
	if err == nil && !total.IsPositive() {
		fieldErrors = append(fieldErrors, ValidationError{"totalAmount", "debe ser mayor que 0"})
	}
	if len(fieldErrors) > 0 {
		return nil, newValidationError(fieldErrors)
	}

	performedBy := input.PerformedBy
	if performedBy == "" {
		performedBy = input.SaleUserID
	}
	now := uc.Now().UTC()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		LeadID:        lead.ID,
		SaleUserID:    input.SaleUserID,
		Product:       product,
		PaymentPlan:   plan.ID,
		TotalAmount:   total,
		PaidAmount:    decimal.Zero,
		PaymentProofs: []entity.PaymentProof{},
		StatusHistory: []entity.SaleHistoryEntry{
			entity.NewSaleHistoryEntry(entity.ActionSaleCreated,
				fmt.Sprintf("Venta creada con plan %s por $%s", plan.ID, total.StringFixed(2)),
				performedBy, now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	leadEntry := entity.NewLeadHistoryEntry(lead.Status, entity.LeadStatusSale, string(entity.ActionSaleCreated), performedBy, now)

	if err := uc.SaleRepo.CreateForLead(ctx, sale, leadEntry); err != nil {
		if errors.Is(err, entity.ErrSaleAlreadyExists) || errors.Is(err, entity.ErrLeadNotFound) ||
			errors.Is(err, entity.ErrStatusConflict) || errors.Is(err, entity.ErrTransitionBlocked) {
			return nil, mapLeadError(err)
		}
		return nil, databaseError("no se pudo crear la venta", err)
	}
	return sale, nil
}
