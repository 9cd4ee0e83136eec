package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("ya existe un usuario con este email")
	ErrInvalidRole        = errors.New("rol inválido")
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleCRMUser    Role = "crm_user"
	RoleViewer     Role = "viewer"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := SystemRoles[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

// UserProfile is a staff member of the admin back office.
type UserProfile struct {
	UID         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions,omitempty"`
	IsActive    bool         `json:"isActive"`
	CreatedBy   string       `json:"createdBy,omitempty"`
	LastLoginAt *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Credential is the login secret of a user, stored apart from its profile.
type Credential struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserPatch struct {
	Role        *Role
	IsActive    *bool
	Permissions *[]Permission
	DisplayName *string
	LastLoginAt *time.Time
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *UserProfile) error
	FindByID(ctx context.Context, uid string) (*UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*UserProfile, error)
	List(ctx context.Context) ([]*UserProfile, error)
	Update(ctx context.Context, uid string, patch UserPatch, at time.Time) (*UserProfile, error)
	Delete(ctx context.Context, uid string) error
	Count(ctx context.Context) (int, error)
}

type CredentialRepositoryInterface interface {
	Create(ctx context.Context, c *Credential) error
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	Delete(ctx context.Context, uid string) error
}
