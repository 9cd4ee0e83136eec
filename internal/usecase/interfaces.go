package usecase

import (
	"context"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type LeadRepositoryInterface = entity.LeadRepositoryInterface
type SaleRepositoryInterface = entity.SaleRepositoryInterface
type UserRepositoryInterface = entity.UserRepositoryInterface
type CredentialRepositoryInterface = entity.CredentialRepositoryInterface
type AdLinkRepositoryInterface = entity.AdLinkRepositoryInterface

// LeadEventPublisher hands lead.created events to whatever delivers the
// notification emails (queue producer or inline dispatcher).
type LeadEventPublisher interface {
	PublishLeadCreated(ctx context.Context, event LeadCreatedEvent) error
}

type EmailService interface {
	SendLeadSummary(ctx context.Context, to string, data LeadSummaryEmail) error
	SendLeadConfirmation(ctx context.Context, to string, data LeadConfirmationEmail) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(user *entity.UserProfile) (token string, expiresAt time.Time, err error)
}
