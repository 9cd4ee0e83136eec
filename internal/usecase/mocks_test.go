package usecase_test

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadCreated(ctx context.Context, event usecase.LeadCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendLeadSummary(ctx context.Context, to string, data usecase.LeadSummaryEmail) error {
	args := m.Called(ctx, to, data)
	return args.Error(0)
}

func (m *MockEmailService) SendLeadConfirmation(ctx context.Context, to string, data usecase.LeadConfirmationEmail) error {
	args := m.Called(ctx, to, data)
	return args.Error(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.UserProfile) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, uid string) (*entity.UserProfile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entity.UserProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.UserProfile), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, uid string, patch entity.UserPatch, at time.Time) (*entity.UserProfile, error) {
	args := m.Called(ctx, uid, patch, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCredentialRepository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Delete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// plainHasher stores passwords prefixed so tests can check them without bcrypt cost.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// staticTokens issues a fixed token.
type staticTokens struct{}

func (staticTokens) Issue(u *entity.UserProfile) (string, time.Time, error) {
	return "token-" + u.UID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func domainCode(err error) string {
	if de, ok := usecase.AsDomainError(err); ok {
		return de.Code
	}
	return ""
}
