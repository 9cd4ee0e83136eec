package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

const accessDateLayout = "2006-01-02"

// CourseAccessUseCase grants, moves and revokes the course access window of a sale.
type CourseAccessUseCase struct {
	SaleRepo SaleRepositoryInterface
	Now      func() time.Time
}

func NewCourseAccessUseCase(saleRepo SaleRepositoryInterface) *CourseAccessUseCase {
	return &CourseAccessUseCase{SaleRepo: saleRepo, Now: time.Now}
}

func (uc *CourseAccessUseCase) Grant(ctx context.Context, input CourseAccessInput) (*entity.Sale, error) {
	if input.StartDate.IsZero() {
		return nil, newValidationError([]ValidationError{{"startDate", "indica la fecha de inicio del acceso"}})
	}

	sale, err := uc.SaleRepo.FindByID(ctx, input.SaleID)
	if err != nil {
		return nil, mapSaleError(err)
	}
	if sale.AccessGranted {
		return nil, newDomainError(CodeAccessAlreadyActive, "el acceso ya está concedido; actualiza las fechas en su lugar")
	}
	if !sale.IsActiveMember() {
		return nil, newDomainError(CodeThresholdNotMet, "la venta no alcanza el 50% pagado ni tiene exención")
	}

	start := input.StartDate.UTC()
	end := entity.CalculateAccessEndDate(start)
	now := uc.Now().UTC()
	entry := entity.NewSaleHistoryEntry(entity.ActionAccessGranted, windowDetails(start, end), input.PerformedBy, now)

	updated, err := uc.SaleRepo.SetAccess(ctx, sale.ID, entity.AccessWindow{Granted: true, Start: &start, End: &end}, entry, now)
	if err != nil {
		return nil, mapSaleError(err)
	}
	return updated, nil
}

// Update moves the window to a new start date. The end date is always
// recomputed from the new start.
func (uc *CourseAccessUseCase) Update(ctx context.Context, input CourseAccessInput) (*entity.Sale, error) {
	if input.StartDate.IsZero() {
		return nil, newValidationError([]ValidationError{{"startDate", "indica la nueva fecha de inicio"}})
	}

	sale, err := uc.SaleRepo.FindByID(ctx, input.SaleID)
	if err != nil {
		return nil, mapSaleError(err)
	}
	if !sale.AccessGranted {
		return nil, newDomainError(CodeAccessNotGranted, "la venta no tiene acceso concedido")
	}

	start := input.StartDate.UTC()
	end := entity.CalculateAccessEndDate(start)
	now := uc.Now().UTC()
	entry := entity.NewSaleHistoryEntry(entity.ActionAccessUpdated, windowDetails(start, end), input.PerformedBy, now)

	updated, err := uc.SaleRepo.SetAccess(ctx, sale.ID, entity.AccessWindow{Granted: true, Start: &start, End: &end}, entry, now)
	if err != nil {
		return nil, mapSaleError(err)
	}
	return updated, nil
}

func (uc *CourseAccessUseCase) Revoke(ctx context.Context, input CourseAccessInput) (*entity.Sale, error) {
	sale, err := uc.SaleRepo.FindByID(ctx, input.SaleID)
	if err != nil {
		return nil, mapSaleError(err)
	}
	if !sale.AccessGranted {
		return nil, newDomainError(CodeAccessNotGranted, "la venta no tiene acceso concedido")
	}

	details := "Acceso revocado"
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		details += ": " + reason
	}
	now := uc.Now().UTC()
	entry := entity.NewSaleHistoryEntry(entity.ActionAccessRevoked, details, input.PerformedBy, now)

	updated, err := uc.SaleRepo.SetAccess(ctx, sale.ID, entity.AccessWindow{}, entry, now)
	if err != nil {
		return nil, mapSaleError(err)
	}
	return updated, nil
}

func windowDetails(start, end time.Time) string {
	return fmt.Sprintf("Acceso del %s al %s", start.Format(accessDateLayout), end.Format(accessDateLayout))
}
