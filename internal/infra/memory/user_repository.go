package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u *entity.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return entity.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.UID] = cloneUser(u)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, uid string) (*entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uid]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.UserProfile, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, uid string, patch entity.UserPatch, at time.Time) (*entity.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uid]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.Permissions != nil {
		u.Permissions = append([]entity.Permission{}, (*patch.Permissions)...)
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.LastLoginAt != nil {
		t := *patch.LastLoginAt
		u.LastLoginAt = &t
	}
	u.UpdatedAt = at
	return cloneUser(u), nil
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[uid]; !ok {
		return entity.ErrUserNotFound
	}
	delete(r.s.users, uid)
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}

type CredentialRepository struct {
	s *Store
}

func (r *CredentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.credentials {
		if strings.EqualFold(existing.Email, c.Email) {
			return entity.ErrEmailAlreadyExists
		}
	}
	cp := *c
	r.s.credentials[c.UID] = &cp
	return nil
}

// FindByEmail returns entity.ErrUserNotFound when no credential matches.
func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.credentials {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *CredentialRepository) Delete(ctx context.Context, uid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.credentials, uid)
	return nil
}
