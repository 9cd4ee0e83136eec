package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

const userColumns = `uid, email, display_name, role, permissions, is_active, created_by, last_login_at, created_at, updated_at`

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.UserProfile) error {
	perms, err := marshalPermissions(u.Permissions)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO users (uid, email, display_name, role, permissions, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.UID, u.Email, u.DisplayName, u.Role, perms, u.IsActive, u.CreatedBy, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return entity.ErrEmailAlreadyExists
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, uid string) (*entity.UserProfile, error) {
	if !validID(uid) {
		return nil, entity.ErrUserNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query, arg string) (*entity.UserProfile, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.UserProfile, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, uid string, patch entity.UserPatch, at time.Time) (*entity.UserProfile, error) {
	if !validID(uid) {
		return nil, entity.ErrUserNotFound
	}
	var role, name sql.NullString
	var active sql.NullBool
	var perms any
	if patch.Role != nil {
		role = sql.NullString{String: string(*patch.Role), Valid: true}
	}
	if patch.DisplayName != nil {
		name = sql.NullString{String: *patch.DisplayName, Valid: true}
	}
	if patch.IsActive != nil {
		active = sql.NullBool{Bool: *patch.IsActive, Valid: true}
	}
	clearPerms := false
	if patch.Permissions != nil {
		if len(*patch.Permissions) == 0 {
			clearPerms = true
		} else {
			b, err := json.Marshal(*patch.Permissions)
			if err != nil {
				return nil, err
			}
			perms = b
		}
	}

	query := `
		UPDATE users SET
			role = COALESCE($2, role),
			display_name = COALESCE($3, display_name),
			is_active = COALESCE($4, is_active),
			permissions = CASE WHEN $5 THEN NULL ELSE COALESCE($6::jsonb, permissions) END,
			last_login_at = COALESCE($7, last_login_at),
			updated_at = $8
		WHERE uid = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, uid, role, name, active, clearPerms, perms, nullTime(patch.LastLoginAt), at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	if !validID(uid) {
		return entity.ErrUserNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row rowScanner) (*entity.UserProfile, error) {
	var (
		u         entity.UserProfile
		perms     []byte
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.UID, &u.Email, &u.DisplayName, &u.Role, &perms, &u.IsActive, &u.CreatedBy,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.LastLoginAt = timePtr(lastLogin)
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func marshalPermissions(perms []entity.Permission) (any, error) {
	if len(perms) == 0 {
		return nil, nil
	}
	return json.Marshal(perms)
}

type CredentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{DB: db}
}

func (r *CredentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO credentials (uid, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		c.UID, c.Email, c.PasswordHash, c.CreatedAt)
	if isUniqueViolation(err) {
		return entity.ErrEmailAlreadyExists
	}
	return err
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	var c entity.Credential
	err := r.DB.QueryRowContext(ctx,
		`SELECT uid, email, password_hash, created_at FROM credentials WHERE lower(email) = lower($1)`, email).
		Scan(&c.UID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM credentials WHERE uid = $1`, uid)
	return err
}
