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

const leadColumns = `id, name, email, phone, role, level, software, clients, investment, why,
	status, COALESCE(sale_id::text, ''), notes, assigned_to, agent_data, status_history, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	history, err := json.Marshal(lead.StatusHistory)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO leads (id, name, email, phone, role, level, software, clients, investment, why,
			status, notes, assigned_to, agent_data, status_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone,
		lead.Role, lead.Level, lead.Software, lead.Clients, lead.Investment, lead.Why,
		lead.Status, lead.Notes, lead.AssignedTo, nullJSON(lead.AgentData), history,
		lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if !validID(id) {
		return nil, entity.ErrLeadNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, string(filter.Status), listLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Update applies the patch in a single statement. When entries carry a status
// change the row is only touched if the stored status still matches the
// entry's previous status.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch, entries []entity.LeadHistoryEntry, at time.Time) (*entity.Lead, error) {
	if !validID(id) {
		return nil, entity.ErrLeadNotFound
	}
	if entries == nil {
		entries = []entity.LeadHistoryEntry{}
	}
	history, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	var expected string
	if len(entries) > 0 {
		expected = string(entries[0].PreviousStatus)
	}
	var status, notes, assigned sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}
	if patch.Notes != nil {
		notes = sql.NullString{String: *patch.Notes, Valid: true}
	}
	if patch.AssignedTo != nil {
		assigned = sql.NullString{String: *patch.AssignedTo, Valid: true}
	}

	query := `
		UPDATE leads SET
			status = COALESCE($2, status),
			notes = COALESCE($3, notes),
			assigned_to = COALESCE($4, assigned_to),
			agent_data = COALESCE($5::jsonb, agent_data),
			status_history = status_history || $6::jsonb,
			updated_at = $7
		WHERE id = $1 AND ($8 = '' OR status = $8)
		RETURNING ` + leadColumns
	row := r.DB.QueryRowContext(ctx, query, id, status, notes, assigned, nullJSON(patch.AgentData), history, at, expected)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.missOrConflict(ctx, id)
	}
	return lead, err
}

func (r *LeadRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return entity.ErrLeadNotFound
	}
	return entity.ErrStatusConflict
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead      entity.Lead
		agentData []byte
		history   []byte
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.Role, &lead.Level, &lead.Software, &lead.Clients, &lead.Investment, &lead.Why,
		&lead.Status, &lead.SaleID, &lead.Notes, &lead.AssignedTo,
		&agentData, &history, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(agentData) > 0 {
		lead.AgentData = json.RawMessage(agentData)
	}
	if err := json.Unmarshal(history, &lead.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode lead %s history: %w", lead.ID, err)
	}
	return &lead, nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	return limit
}
