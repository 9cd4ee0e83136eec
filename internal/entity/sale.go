package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound      = errors.New("venta no encontrada")
	ErrSaleAlreadyExists = errors.New("el lead ya tiene una venta registrada")
	ErrInvalidProduct    = errors.New("producto inválido")
)

// ActiveMemberRatio is the share of the total that must be paid before a
// sale qualifies for course access without an exemption.
var ActiveMemberRatio = decimal.NewFromFloat(0.5)

type Product string

const (
	ProductAccesoCurso Product = "acceso_curso"
	ProductOthers      Product = "others"
)

func ParseProduct(s string) (Product, error) {
	switch p := Product(s); p {
	case ProductAccesoCurso, ProductOthers:
		return p, nil
	}
	return "", ErrInvalidProduct
}

type SaleAction string

const (
	ActionSaleCreated      SaleAction = "sale_created"
	ActionPaymentAdded     SaleAction = "payment_added"
	ActionAccessGranted    SaleAction = "access_granted"
	ActionAccessUpdated    SaleAction = "access_updated"
	ActionAccessRevoked    SaleAction = "access_revoked"
	ActionExemptionGranted SaleAction = "exemption_granted"
)

type SaleHistoryEntry struct {
	ID          string     `json:"id"`
	Action      SaleAction `json:"action"`
	Details     string     `json:"details,omitempty"`
	PerformedBy string     `json:"performedBy"`
	PerformedAt time.Time  `json:"performedAt"`
}

func NewSaleHistoryEntry(action SaleAction, details, performedBy string, at time.Time) SaleHistoryEntry {
	if performedBy == "" {
		performedBy = SystemActor
	}
	return SaleHistoryEntry{
		ID:          uuid.New().String(),
		Action:      action,
		Details:     details,
		PerformedBy: performedBy,
		PerformedAt: at,
	}
}

// PaymentProof is immutable once appended to a sale.
type PaymentProof struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description,omitempty"`
	UploadedBy  string          `json:"uploadedBy"`
	UploadedAt  time.Time       `json:"uploadedAt"`
}

type Sale struct {
	ID          string          `json:"id"`
	LeadID      string          `json:"leadId"`
	SaleUserID  string          `json:"saleUserId"`
	Product     Product         `json:"product"`
	PaymentPlan PaymentPlanID   `json:"paymentPlan"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`

	PaymentProofs []PaymentProof `json:"paymentProofs"`

	AccessGranted   bool       `json:"accessGranted"`
	AccessStartDate *time.Time `json:"accessStartDate"`
	AccessEndDate   *time.Time `json:"accessEndDate"`

	ExemptionGranted bool   `json:"exemptionGranted"`
	ExemptionReason  string `json:"exemptionReason,omitempty"`

	StatusHistory []SaleHistoryEntry `json:"statusHistory"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// IsActiveMember reports whether the sale qualifies for access provisioning.
func (s *Sale) IsActiveMember() bool {
	if s.ExemptionGranted {
		return true
	}
	return s.PaidAmount.GreaterThanOrEqual(s.TotalAmount.Mul(ActiveMemberRatio))
}

// AccessStatus derives the course access state at now. It is never stored.
func (s *Sale) AccessStatus(now time.Time) AccessStatus {
	if !s.AccessGranted {
		return AccessPending
	}
	if s.AccessEndDate == nil {
		return AccessGrantedNoDate
	}
	if now.After(*s.AccessEndDate) {
		return AccessExpired
	}
	return AccessActive
}

// PaymentProgress is the paid share of the total as a percentage, capped at 100.
func (s *Sale) PaymentProgress() decimal.Decimal {
	if !s.TotalAmount.IsPositive() {
		return decimal.NewFromInt(100)
	}
	pct := s.PaidAmount.Div(s.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return pct
}

// ProofsTotal sums the recorded payment proofs.
func (s *Sale) ProofsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.PaymentProofs {
		total = total.Add(p.Amount)
	}
	return total
}

// AccessWindow describes the access fields written by grant, update and revoke.
type AccessWindow struct {
	Granted bool
	Start   *time.Time
	End     *time.Time
}

type SaleFilter struct {
	ActiveOnly    bool
	AccessGranted *bool
	Limit         int
}

type SaleRepositoryInterface interface {
	// CreateForLead stores the sale and links it to its lead, setting the lead
	// status to sale and appending leadEntry, all in one atomic write.
	CreateForLead(ctx context.Context, sale *Sale, leadEntry LeadHistoryEntry) error
	FindByID(ctx context.Context, id string) (*Sale, error)
	FindByLeadID(ctx context.Context, leadID string) (*Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*Sale, error)
	// AppendPayment adds the proof amount to paidAmount and appends the proof
	// and the history entry atomically.
	AppendPayment(ctx context.Context, saleID string, proof PaymentProof, entry SaleHistoryEntry, at time.Time) (*Sale, error)
	SetAccess(ctx context.Context, saleID string, window AccessWindow, entry SaleHistoryEntry, at time.Time) (*Sale, error)
	SetExemption(ctx context.Context, saleID, reason string, entry SaleHistoryEntry, at time.Time) (*Sale, error)
}
