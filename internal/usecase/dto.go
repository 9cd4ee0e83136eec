package usecase

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type CaptureLeadInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	Role        string `json:"role"`
	Level       string `json:"level"`
	Software    string `json:"software"`
	Clients     string `json:"clients"`
	Investment  string `json:"investment"`
	Why         string `json:"why"`
}

type CaptureLeadOutput struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	WhatsAppURL string `json:"whatsappUrl"`
	Msg         string `json:"msg"`
}

// LeadCreatedEvent is published once a lead has been stored.
type LeadCreatedEvent struct {
	LeadID     string    `json:"lead_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Origin     string    `json:"origin"`
}

type UpdateLeadInput struct {
	LeadID      string
	Status      *string
	Notes       *string
	AssignedTo  *string
	Details     string
	PerformedBy string
}

type UpdateLeadFromAgentInput struct {
	LeadID    string
	AgentData json.RawMessage
}

type CreateSaleInput struct {
	LeadID      string
	Product     string
	PaymentPlan string
	// TotalAmount overrides the plan total when set.
	TotalAmount *decimal.Decimal
	SaleUserID  string
	// PerformedBy is recorded in both history trails. Defaults to SaleUserID.
	PerformedBy string
}

type AddPaymentProofInput struct {
	SaleID      string
	Amount      decimal.Decimal
	ImageURL    string
	Description string
	PerformedBy string
}

type GrantExemptionInput struct {
	SaleID      string
	Reason      string
	PerformedBy string
}

type CourseAccessInput struct {
	SaleID      string
	StartDate   time.Time
	Reason      string
	PerformedBy string
}

type LeadSummaryEmail struct {
	LeadID       string
	Name         string
	Email        string
	Phone        string
	Role         string
	Level        string
	Software     string
	Clients      string
	Investment   string
	Why          string
	Temperature  string
	DashboardURL string
	CreatedAt    time.Time
}

type LeadConfirmationEmail struct {
	Name        string
	WhatsAppURL string
}

type CreateUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
	Permissions []string
	CreatedBy   string
}

type UpdateUserInput struct {
	UID         string
	Role        *string
	IsActive    *bool
	Permissions *[]string
	DisplayName *string
	Actor       string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *entity.UserProfile `json:"user"`
}

type CreateAdLinkInput struct {
	Slug        string
	Destination string
	Source      string
	Medium      string
	Campaign    string
	CreatedBy   string
}
