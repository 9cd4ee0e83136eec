package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

const saleColumns = `id, lead_id, sale_user_id, product, payment_plan, total_amount, paid_amount,
	payment_proofs, access_granted, access_start_date, access_end_date,
	exemption_granted, exemption_reason, status_history, created_at, updated_at`

type SaleRepository struct {
	DB *sql.DB
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{DB: db}
}

// CreateForLead locks the lead row, inserts the sale and flips the lead to
// sale inside one transaction.
func (r *SaleRepository) CreateForLead(ctx context.Context, sale *entity.Sale, leadEntry entity.LeadHistoryEntry) error {
	proofs, err := json.Marshal(sale.PaymentProofs)
	if err != nil {
		return err
	}
	history, err := json.Marshal(sale.StatusHistory)
	if err != nil {
		return err
	}
	if !validID(sale.LeadID) {
		return entity.ErrLeadNotFound
	}
	leadHistory, err := json.Marshal([]entity.LeadHistoryEntry{leadEntry})
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status string
	var saleID sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT status, sale_id::text FROM leads WHERE id = $1 FOR UPDATE`, sale.LeadID).
		Scan(&status, &saleID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return err
	}
	if saleID.Valid || entity.LeadStatus(status) == entity.LeadStatusSale {
		return entity.ErrSaleAlreadyExists
	}
	if entity.LeadStatus(status) != leadEntry.PreviousStatus {
		return entity.ErrStatusConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, lead_id, sale_user_id, product, payment_plan, total_amount, paid_amount,
			payment_proofs, status_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sale.ID, sale.LeadID, sale.SaleUserID, sale.Product, sale.PaymentPlan,
		sale.TotalAmount, sale.PaidAmount, proofs, history, sale.CreatedAt, sale.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrSaleAlreadyExists
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE leads SET status = $2, sale_id = $3, status_history = status_history || $4::jsonb, updated_at = $5
		WHERE id = $1
	`, sale.LeadID, entity.LeadStatusSale, sale.ID, leadHistory, sale.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

func (r *SaleRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.Sale, error) {
	return r.findOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE lead_id = $1`, leadID)
}

func (r *SaleRepository) findOne(ctx context.Context, query string, arg string) (*entity.Sale, error) {
	if !validID(arg) {
		return nil, entity.ErrSaleNotFound
	}
	sale, err := scanSale(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSaleNotFound
	}
	return sale, err
}

func (r *SaleRepository) List(ctx context.Context, filter entity.SaleFilter) ([]*entity.Sale, error) {
	var granted sql.NullBool
	if filter.AccessGranted != nil {
		granted = sql.NullBool{Bool: *filter.AccessGranted, Valid: true}
	}
	query := `SELECT ` + saleColumns + ` FROM sales
		WHERE ($1 = FALSE OR exemption_granted OR paid_amount >= total_amount * $2)
		  AND ($3::boolean IS NULL OR access_granted = $3)
		ORDER BY created_at DESC LIMIT $4`
	rows, err := r.DB.QueryContext(ctx, query, filter.ActiveOnly, entity.ActiveMemberRatio, granted, listLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// AppendPayment increments paid_amount in SQL so concurrent payments never
// overwrite each other.
func (r *SaleRepository) AppendPayment(ctx context.Context, saleID string, proof entity.PaymentProof, entry entity.SaleHistoryEntry, at time.Time) (*entity.Sale, error) {
	proofJSON, err := json.Marshal([]entity.PaymentProof{proof})
	if err != nil {
		return nil, err
	}
	entryJSON, err := json.Marshal([]entity.SaleHistoryEntry{entry})
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE sales SET
			paid_amount = paid_amount + $2,
			payment_proofs = payment_proofs || $3::jsonb,
			status_history = status_history || $4::jsonb,
			updated_at = $5
		WHERE id = $1
		RETURNING ` + saleColumns
	return r.updateOne(ctx, query, saleID, proof.Amount, proofJSON, entryJSON, at)
}

func (r *SaleRepository) SetAccess(ctx context.Context, saleID string, window entity.AccessWindow, entry entity.SaleHistoryEntry, at time.Time) (*entity.Sale, error) {
	entryJSON, err := json.Marshal([]entity.SaleHistoryEntry{entry})
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE sales SET
			access_granted = $2,
			access_start_date = $3,
			access_end_date = $4,
			status_history = status_history || $5::jsonb,
			updated_at = $6
		WHERE id = $1
		RETURNING ` + saleColumns
	return r.updateOne(ctx, query, saleID, window.Granted, nullTime(window.Start), nullTime(window.End), entryJSON, at)
}

func (r *SaleRepository) SetExemption(ctx context.Context, saleID, reason string, entry entity.SaleHistoryEntry, at time.Time) (*entity.Sale, error) {
	entryJSON, err := json.Marshal([]entity.SaleHistoryEntry{entry})
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE sales SET
			exemption_granted = TRUE,
			exemption_reason = $2,
			status_history = status_history || $3::jsonb,
			updated_at = $4
		WHERE id = $1
		RETURNING ` + saleColumns
	return r.updateOne(ctx, query, saleID, reason, entryJSON, at)
}

// updateOne expects the sale id as the first argument.
func (r *SaleRepository) updateOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	if id, _ := args[0].(string); !validID(id) {
		return nil, entity.ErrSaleNotFound
	}
	sale, err := scanSale(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSaleNotFound
	}
	return sale, err
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var (
		sale       entity.Sale
		proofs     []byte
		history    []byte
		start, end sql.NullTime
	)
	err := row.Scan(
		&sale.ID, &sale.LeadID, &sale.SaleUserID, &sale.Product, &sale.PaymentPlan, &sale.TotalAmount, &sale.PaidAmount,
		&proofs, &sale.AccessGranted, &start, &end,
		&sale.ExemptionGranted, &sale.ExemptionReason, &history, &sale.CreatedAt, &sale.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sale.AccessStartDate = timePtr(start)
	sale.AccessEndDate = timePtr(end)
	if err := json.Unmarshal(proofs, &sale.PaymentProofs); err != nil {
		return nil, fmt.Errorf("decode sale %s proofs: %w", sale.ID, err)
	}
	if err := json.Unmarshal(history, &sale.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode sale %s history: %w", sale.ID, err)
	}
	return &sale, nil
}
