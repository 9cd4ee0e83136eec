package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/contact"
	"github.com/edicionpersuasiva/crm/internal/entity"
)

// CreateUserUseCase creates back office users on the server. The calling
// admin keeps their own session.
type CreateUserUseCase struct {
	Users       UserRepositoryInterface
	Credentials CredentialRepositoryInterface
	Hasher      PasswordHasher
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewCreateUserUseCase(
	users UserRepositoryInterface,
	credentials CredentialRepositoryInterface,
	hasher PasswordHasher,
	logger *zap.Logger,
) *CreateUserUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateUserUseCase{
		Users:       users,
		Credentials: credentials,
		Hasher:      hasher,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, input CreateUserInput) (*entity.UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var fieldErrors []ValidationError
	if !contact.ValidateEmail(email) {
		fieldErrors = append(fieldErrors, ValidationError{"email", "no es un email válido"})
	}
	fieldErrors = append(fieldErrors, validatePassword(input.Password)...)
	role, err := entity.ParseRole(input.Role)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{"role", "usa super_admin, admin, crm_user o viewer"})
	}
	perms, permErrors := parsePermissions(input.Permissions)
	fieldErrors = append(fieldErrors, permErrors...)
	if len(fieldErrors) > 0 {
		return nil, newValidationError(fieldErrors)
	}

	if _, err := uc.Users.FindByEmail(ctx, email); err == nil {
		return nil, newDomainError(CodeEmailAlreadyExists, entity.ErrEmailAlreadyExists.Error())
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, databaseError("error al buscar el usuario", err)
	}

	hash, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		return nil, &TechnicalError{Code: CodeHashing, Message: "no se pudo procesar la contraseña", Err: err}
	}

	now := uc.Now().UTC()
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = email
	}
	profile := &entity.UserProfile{
		UID:         uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		Permissions: perms,
		IsActive:    true,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	credential := &entity.Credential{UID: profile.UID, Email: email, PasswordHash: hash, CreatedAt: now}

	tx := NewTransaction(uc.Logger)
	tx.AddStep("create_credential",
		func(ctx context.Context) error { return uc.Credentials.Create(ctx, credential) },
		func(ctx context.Context) error { return uc.Credentials.Delete(ctx, credential.UID) },
	)
	tx.AddStep("create_profile",
		func(ctx context.Context) error { return uc.Users.Create(ctx, profile) },
		nil,
	)
	if err := tx.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, newDomainError(CodeEmailAlreadyExists, entity.ErrEmailAlreadyExists.Error())
		}
		return nil, databaseError("no se pudo crear el usuario", err)
	}

	uc.Logger.Info("user created",
		zap.String("uid", profile.UID),
		zap.String("role", string(profile.Role)),
		zap.String("created_by", input.CreatedBy))
	return profile, nil
}

func parsePermissions(raw []string) ([]entity.Permission, []ValidationError) {
	if len(raw) == 0 {
		return nil, nil
	}
	perms := make([]entity.Permission, 0, len(raw))
	for _, s := range raw {
		p := entity.Permission(strings.TrimSpace(s))
		if !entity.IsKnownPermission(p) {
			return nil, []ValidationError{{"permissions", "permiso desconocido: " + s}}
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// LoginUseCase checks a password and issues a session token.
type LoginUseCase struct {
	Users       UserRepositoryInterface
	Credentials CredentialRepositoryInterface
	Hasher      PasswordHasher
	Tokens      TokenIssuer
	Now         func() time.Time
}

func NewLoginUseCase(
	users UserRepositoryInterface,
	credentials CredentialRepositoryInterface,
	hasher PasswordHasher,
	tokens TokenIssuer,
) *LoginUseCase {
	return &LoginUseCase{Users: users, Credentials: credentials, Hasher: hasher, Tokens: tokens, Now: time.Now}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	invalid := newDomainError(CodeInvalidCredentials, "email o contraseña incorrectos")

	cred, err := uc.Credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, invalid
		}
		return nil, databaseError("error al buscar credenciales", err)
	}
	if err := uc.Hasher.Compare(cred.PasswordHash, input.Password); err != nil {
		return nil, invalid
	}

	user, err := uc.Users.FindByID(ctx, cred.UID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, invalid
		}
		return nil, databaseError("error al cargar el perfil", err)
	}
	if !user.IsActive {
		return nil, newDomainError(CodeUserInactive, "la cuenta está desactivada")
	}

	now := uc.Now().UTC()
	user, err = uc.Users.Update(ctx, user.UID, entity.UserPatch{LastLoginAt: &now}, now)
	if err != nil {
		return nil, databaseError("error al registrar el acceso", err)
	}

	token, expiresAt, err := uc.Tokens.Issue(user)
	if err != nil {
		return nil, &TechnicalError{Code: CodeToken, Message: "no se pudo emitir el token", Err: err}
	}
	return &LoginOutput{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ManageUsersUseCase lists, edits and removes back office users.
type ManageUsersUseCase struct {
	Users       UserRepositoryInterface
	Credentials CredentialRepositoryInterface
	Now         func() time.Time
}

func NewManageUsersUseCase(users UserRepositoryInterface, credentials CredentialRepositoryInterface) *ManageUsersUseCase {
	return &ManageUsersUseCase{Users: users, Credentials: credentials, Now: time.Now}
}

func (uc *ManageUsersUseCase) List(ctx context.Context) ([]*entity.UserProfile, error) {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, databaseError("error al listar usuarios", err)
	}
	return users, nil
}

func (uc *ManageUsersUseCase) Get(ctx context.Context, uid string) (*entity.UserProfile, error) {
	user, err := uc.Users.FindByID(ctx, uid)
	if err != nil {
		return nil, mapUserError(err)
	}
	return user, nil
}

func (uc *ManageUsersUseCase) Update(ctx context.Context, input UpdateUserInput) (*entity.UserProfile, error) {
	var patch entity.UserPatch
	var fieldErrors []ValidationError

	if input.Role != nil {
		role, err := entity.ParseRole(*input.Role)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{"role", "usa super_admin, admin, crm_user o viewer"})
		} else {
			patch.Role = &role
		}
	}
	if input.Permissions != nil {
		perms, errs := parsePermissions(*input.Permissions)
		fieldErrors = append(fieldErrors, errs...)
		if perms == nil {
			perms = []entity.Permission{}
		}
		patch.Permissions = &perms
	}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		patch.DisplayName = &name
	}
	if input.IsActive != nil {
		if !*input.IsActive && input.UID == input.Actor {
			fieldErrors = append(fieldErrors, ValidationError{"isActive", "no puedes desactivar tu propia cuenta"})
		}
		patch.IsActive = input.IsActive
	}
	if len(fieldErrors) > 0 {
		return nil, newValidationError(fieldErrors)
	}

	user, err := uc.Users.Update(ctx, input.UID, patch, uc.Now().UTC())
	if err != nil {
		return nil, mapUserError(err)
	}
	return user, nil
}

func (uc *ManageUsersUseCase) Delete(ctx context.Context, uid, actor string) error {
	if uid == actor {
		return newDomainError(CodeCannotDeleteSelf, "no puedes eliminar tu propia cuenta")
	}
	if err := uc.Users.Delete(ctx, uid); err != nil {
		return mapUserError(err)
	}
	if err := uc.Credentials.Delete(ctx, uid); err != nil && !errors.Is(err, entity.ErrUserNotFound) {
		return databaseError("perfil eliminado pero no sus credenciales", err)
	}
	return nil
}

// BootstrapSuperAdmin creates the first super admin when no user exists yet.
// It reports whether a user was created.
func BootstrapSuperAdmin(ctx context.Context, create *CreateUserUseCase, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := create.Users.Count(ctx)
	if err != nil {
		return false, databaseError("error al contar usuarios", err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = create.Execute(ctx, CreateUserInput{
		Email:       email,
		Password:    password,
		DisplayName: "Super Admin",
		Role:        string(entity.RoleSuperAdmin),
		CreatedBy:   entity.SystemActor,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, entity.ErrUserNotFound):
		return newDomainError(CodeUserNotFound, entity.ErrUserNotFound.Error())
	case errors.Is(err, entity.ErrEmailAlreadyExists):
		return newDomainError(CodeEmailAlreadyExists, entity.ErrEmailAlreadyExists.Error())
	}
	return databaseError("error al acceder al usuario", err)
}
