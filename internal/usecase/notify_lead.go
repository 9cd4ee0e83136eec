package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

// LeadTemperature maps the investment answer of the quiz to the label shown
// in the admin summary email.
func LeadTemperature(investment string) string {
	switch strings.ToLower(strings.TrimSpace(investment)) {
	case "si", "sí":
		return "🔥 Caliente"
	case "tal_vez":
		return "🌤 Tibio"
	case "no":
		return "❄️ Frío"
	}
	return "Sin definir"
}

// NotifyLeadUseCase sends the admin summary and the lead confirmation for a
// freshly created lead.
type NotifyLeadUseCase struct {
	Repo           LeadRepositoryInterface
	Mailer         EmailService
	AdminEmail     string
	AppURL         string
	WhatsAppNumber string
	Logger         *zap.Logger
}

func NewNotifyLeadUseCase(
	repo LeadRepositoryInterface,
	mailer EmailService,
	adminEmail, appURL, whatsAppNumber string,
	logger *zap.Logger,
) *NotifyLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifyLeadUseCase{
		Repo:           repo,
		Mailer:         mailer,
		AdminEmail:     adminEmail,
		AppURL:         strings.TrimRight(appURL, "/"),
		WhatsAppNumber: whatsAppNumber,
		Logger:         logger,
	}
}

// Execute sends both emails even if one of them fails. The returned error
// joins every delivery failure.
func (uc *NotifyLeadUseCase) Execute(ctx context.Context, event LeadCreatedEvent) error {
	lead, err := uc.Repo.FindByID(ctx, event.LeadID)
	if err != nil {
		return mapLeadError(err)
	}

	var errs []error
	if uc.AdminEmail != "" {
		summary := LeadSummaryEmail{
			LeadID:       lead.ID,
			Name:         lead.Name,
			Email:        lead.Email,
			Phone:        lead.Phone,
			Role:         lead.Role,
			Level:        lead.Level,
			Software:     lead.Software,
			Clients:      lead.Clients,
			Investment:   lead.Investment,
			Why:          lead.Why,
			Temperature:  LeadTemperature(lead.Investment),
			DashboardURL: uc.dashboardURL(lead),
			CreatedAt:    lead.CreatedAt,
		}
		if err := uc.Mailer.SendLeadSummary(ctx, uc.AdminEmail, summary); err != nil {
			errs = append(errs, fmt.Errorf("admin summary: %w", err))
		}
	}

	confirmation := LeadConfirmationEmail{
		Name:        lead.Name,
		WhatsAppURL: BuildWhatsAppURL(uc.WhatsAppNumber, lead.Name),
	}
	if err := uc.Mailer.SendLeadConfirmation(ctx, lead.Email, confirmation); err != nil {
		errs = append(errs, fmt.Errorf("lead confirmation: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	uc.Logger.Info("lead notifications sent", zap.String("lead_id", lead.ID))
	return nil
}

func (uc *NotifyLeadUseCase) dashboardURL(lead *entity.Lead) string {
	return uc.AppURL + "/admin/leads/" + lead.ID
}
