package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/memory"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

func createUser(t *testing.T, store *memory.Store, email string, role entity.Role) *entity.UserProfile {
	t.Helper()
	uc := usecase.NewCreateUserUseCase(store.Users(), store.Credentials(), plainHasher{}, nil)
	u, err := uc.Execute(context.Background(), usecase.CreateUserInput{
		Email:       email,
		Password:    "secreto123",
		DisplayName: "Equipo",
		Role:        string(role),
		CreatedBy:   "admin-root",
	})
	require.NoError(t, err)
	return u
}

func TestCreateUserStoresProfileAndCredential(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	u := createUser(t, store, "Vendedor@Example.com", entity.RoleCRMUser)

	assert.Equal(t, "vendedor@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.Equal(t, "admin-root", u.CreatedBy)
	cred, err := store.Credentials().FindByEmail(ctx, "vendedor@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.UID, cred.UID)
	assert.Equal(t, "plain:secreto123", cred.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	uc := usecase.NewCreateUserUseCase(memory.NewStore().Users(), memory.NewStore().Credentials(), plainHasher{}, nil)

	_, err := uc.Execute(context.Background(), usecase.CreateUserInput{
		Email:       "bad",
		Password:    "short",
		Role:        "owner",
		Permissions: []string{"leads:delete"},
	})

	de, ok := usecase.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, de.Code)
	assert.Len(t, de.Fields, 4)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	createUser(t, store, "dup@example.com", entity.RoleViewer)

	_, err := usecase.NewCreateUserUseCase(store.Users(), store.Credentials(), plainHasher{}, nil).Execute(context.Background(), usecase.CreateUserInput{
		Email: "DUP@example.com", Password: "secreto123", Role: "viewer",
	})
	assert.Equal(t, usecase.CodeEmailAlreadyExists, domainCode(err))
}

func TestCreateUserCompensatesCredentialWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	creds := new(MockCredentialRepository)

	users.On("FindByEmail", ctx, "nuevo@example.com").Return(nil, entity.ErrUserNotFound)
	creds.On("Create", ctx, mock.AnythingOfType("*entity.Credential")).Return(nil)
	users.On("Create", ctx, mock.AnythingOfType("*entity.UserProfile")).Return(errors.New("connection reset"))
	creds.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	uc := usecase.NewCreateUserUseCase(users, creds, plainHasher{}, nil)
	_, err := uc.Execute(ctx, usecase.CreateUserInput{
		Email: "nuevo@example.com", Password: "secreto123", Role: "crm_user",
	})

	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	creds.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("string"))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := createUser(t, store, "login@example.com", entity.RoleAdmin)
	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

	uc := usecase.NewLoginUseCase(store.Users(), store.Credentials(), plainHasher{}, staticTokens{})
	uc.Now = fixedClock(now)

	out, err := uc.Execute(ctx, usecase.LoginInput{Email: "LOGIN@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+u.UID, out.Token)
	require.NotNil(t, out.User.LastLoginAt)
	assert.Equal(t, now, *out.User.LastLoginAt)

	_, err = uc.Execute(ctx, usecase.LoginInput{Email: "login@example.com", Password: "otra-clave"})
	assert.Equal(t, usecase.CodeInvalidCredentials, domainCode(err))

	_, err = uc.Execute(ctx, usecase.LoginInput{Email: "nadie@example.com", Password: "secreto123"})
	assert.Equal(t, usecase.CodeInvalidCredentials, domainCode(err))

	inactive := false
	_, err = store.Users().Update(ctx, u.UID, entity.UserPatch{IsActive: &inactive}, now)
	require.NoError(t, err)
	_, err = uc.Execute(ctx, usecase.LoginInput{Email: "login@example.com", Password: "secreto123"})
	assert.Equal(t, usecase.CodeUserInactive, domainCode(err))
}

func TestManageUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	admin := createUser(t, store, "root@example.com", entity.RoleSuperAdmin)
	seller := createUser(t, store, "seller@example.com", entity.RoleCRMUser)
	uc := usecase.NewManageUsersUseCase(store.Users(), store.Credentials())

	role := "admin"
	perms := []string{"leads:read", "sales:read"}
	updated, err := uc.Update(ctx, usecase.UpdateUserInput{UID: seller.UID, Role: &role, Permissions: &perms, Actor: admin.UID})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, updated.Role)
	assert.Equal(t, []entity.Permission{entity.PermLeadsRead, entity.PermSalesRead}, updated.Permissions)
	assert.False(t, entity.HasPermission(updated, entity.PermLeadsWrite))

	off := false
	_, err = uc.Update(ctx, usecase.UpdateUserInput{UID: admin.UID, IsActive: &off, Actor: admin.UID})
	assert.Equal(t, usecase.CodeValidation, domainCode(err))

	assert.Equal(t, usecase.CodeCannotDeleteSelf, domainCode(uc.Delete(ctx, admin.UID, admin.UID)))
	require.NoError(t, uc.Delete(ctx, seller.UID, admin.UID))
	_, err = store.Credentials().FindByEmail(ctx, "seller@example.com")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
	assert.Equal(t, usecase.CodeUserNotFound, domainCode(uc.Delete(ctx, seller.UID, admin.UID)))

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBootstrapSuperAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	create := usecase.NewCreateUserUseCase(store.Users(), store.Credentials(), plainHasher{}, nil)

	created, err := usecase.BootstrapSuperAdmin(ctx, create, "owner@example.com", "secreto123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = usecase.BootstrapSuperAdmin(ctx, create, "other@example.com", "secreto123")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := store.Users().FindByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, u.Role)
}
