package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

const whatsAppGreeting = "¡Hola! Soy %s, acabo de completar el quiz de Edición Persuasiva y me gustaría recibir más información."

// CaptureLeadUseCase stores a lead coming from the public intake quiz.
type CaptureLeadUseCase struct {
	Repo           LeadRepositoryInterface
	Publisher      LeadEventPublisher
	WhatsAppNumber string
	Logger         *zap.Logger
	Now            func() time.Time
}

func NewCaptureLeadUseCase(
	repo LeadRepositoryInterface,
	publisher LeadEventPublisher,
	whatsAppNumber string,
	logger *zap.Logger,
) *CaptureLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureLeadUseCase{
		Repo:           repo,
		Publisher:      publisher,
		WhatsAppNumber: whatsAppNumber,
		Logger:         logger,
		Now:            time.Now,
	}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	validationErrors, phone := ValidateCaptureLeadInput(input)
	if len(validationErrors) > 0 {
		return nil, newValidationError(validationErrors)
	}

	lead := entity.NewLead(input.Name, input.Email, phone, uc.Now().UTC())
	lead.Role = strings.TrimSpace(input.Role)
	lead.Level = strings.TrimSpace(input.Level)
	lead.Software = strings.TrimSpace(input.Software)
	lead.Clients = strings.TrimSpace(input.Clients)
	lead.Investment = strings.TrimSpace(input.Investment)
	lead.Why = strings.TrimSpace(input.Why)

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, databaseError("no se pudo guardar el lead", err)
	}

	// The lead is already stored; a notification failure must not fail the intake.
	if uc.Publisher != nil {
		event := LeadCreatedEvent{LeadID: lead.ID, OccurredAt: lead.CreatedAt, Origin: "intake_quiz"}
		if err := uc.Publisher.PublishLeadCreated(ctx, event); err != nil {
			uc.Logger.Error("lead created but notification was not queued",
				zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}

	return &CaptureLeadOutput{
		ID:          lead.ID,
		Status:      string(lead.Status),
		WhatsAppURL: BuildWhatsAppURL(uc.WhatsAppNumber, lead.Name),
		Msg:         "¡Gracias! Recibimos tus respuestas.",
	}, nil
}

// BuildWhatsAppURL returns the wa.me deep link with a prefilled greeting.
func BuildWhatsAppURL(number, name string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	text := url.QueryEscape(fmt.Sprintf(whatsAppGreeting, strings.TrimSpace(name)))
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, strings.ReplaceAll(text, "+", "%20"))
}
