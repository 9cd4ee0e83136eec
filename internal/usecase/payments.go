package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

// AddPaymentProofUseCase records a payment against a sale. The increment of
// paidAmount happens inside the repository so concurrent payments add up.
type AddPaymentProofUseCase struct {
	SaleRepo SaleRepositoryInterface
	Now      func() time.Time
}

func NewAddPaymentProofUseCase(saleRepo SaleRepositoryInterface) *AddPaymentProofUseCase {
	return &AddPaymentProofUseCase{SaleRepo: saleRepo, Now: time.Now}
}

func (uc *AddPaymentProofUseCase) Execute(ctx context.Context, input AddPaymentProofInput) (*entity.Sale, error) {
	amount := input.Amount.Round(2)
	var fieldErrors []ValidationError
	if !amount.IsPositive() {
		fieldErrors = append(fieldErrors, ValidationError{"amount", "debe ser mayor que 0"})
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		fieldErrors = append(fieldErrors, ValidationError{"imageUrl", "adjunta el comprobante de pago"})
	}
	if len(fieldErrors) > 0 {
		return nil, newValidationError(fieldErrors)
	}

	now := uc.Now().UTC()
	proof := entity.PaymentProof{
		ID:          uuid.New().String(),
		Amount:      amount,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Description: strings.TrimSpace(input.Description),
		UploadedBy:  input.PerformedBy,
		UploadedAt:  now,
	}
	entry := entity.NewSaleHistoryEntry(entity.ActionPaymentAdded,
		fmt.Sprintf("Pago de $%s registrado", amount.StringFixed(2)), input.PerformedBy, now)

	sale, err := uc.SaleRepo.AppendPayment(ctx, input.SaleID, proof, entry, now)
	if err != nil {
		return nil, mapSaleError(err)
	}
	return sale, nil
}

// GrantPaymentExemptionUseCase lets a sale qualify as active member without
// reaching the payment threshold.
type GrantPaymentExemptionUseCase struct {
	SaleRepo SaleRepositoryInterface
	Now      func() time.Time
}

func NewGrantPaymentExemptionUseCase(saleRepo SaleRepositoryInterface) *GrantPaymentExemptionUseCase {
	return &GrantPaymentExemptionUseCase{SaleRepo: saleRepo, Now: time.Now}
}

func (uc *GrantPaymentExemptionUseCase) Execute(ctx context.Context, input GrantExemptionInput) (*entity.Sale, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, newValidationError([]ValidationError{{"reason", "indica el motivo de la exención"}})
	}

	now := uc.Now().UTC()
	entry := entity.NewSaleHistoryEntry(entity.ActionExemptionGranted, reason, input.PerformedBy, now)
	sale, err := uc.SaleRepo.SetExemption(ctx, input.SaleID, reason, entry, now)
	if err != nil {
		return nil, mapSaleError(err)
	}
	return sale, nil
}

func mapSaleError(err error) error {
	if errors.Is(err, entity.ErrSaleNotFound) {
		return newDomainError(CodeSaleNotFound, entity.ErrSaleNotFound.Error())
	}
	return databaseError("error al acceder a la venta", err)
}
