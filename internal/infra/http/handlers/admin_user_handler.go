package handlers

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

type AdminUserHandler struct {
	create *usecase.CreateUserUseCase
	manage *usecase.ManageUsersUseCase
	login  *usecase.LoginUseCase
	logger *zap.Logger
}

func NewAdminUserHandler(
	create *usecase.CreateUserUseCase,
	manage *usecase.ManageUsersUseCase,
	login *usecase.LoginUseCase,
	logger *zap.Logger,
) *AdminUserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminUserHandler{create: create, manage: manage, login: login, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	DisplayName string   `json:"displayName" validate:"max=120"`
	Role        string   `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
}

type UpdateUserRequest struct {
	Role        *string   `json:"role"`
	IsActive    *bool     `json:"isActive"`
	Permissions *[]string `json:"permissions"`
	DisplayName *string   `json:"displayName" validate:"omitempty,max=120"`
}

type MeResponse struct {
	User        *entity.UserProfile `json:"user"`
	Permissions []entity.Permission `json:"permissions"`
}

type RoleResponse struct {
	ID string `json:"id"`
	entity.RoleDefinition
}

func (h *AdminUserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.login.Execute(r.Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminUserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	writeJSON(w, http.StatusOK, MeResponse{User: user, Permissions: entity.GetUserPermissions(user)})
}

func (h *AdminUserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles := make([]RoleResponse, 0, len(entity.SystemRoles))
	for id, def := range entity.SystemRoles {
		roles = append(roles, RoleResponse{ID: string(id), RoleDefinition: def})
	}
	sort.Slice(roles, func(i, j int) bool {
		return len(roles[i].Permissions) > len(roles[j].Permissions)
	})
	writeJSON(w, http.StatusOK, roles)
}

func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.manage.List(r.Context())
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.create.Execute(r.Context(), usecase.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Permissions: req.Permissions,
		CreatedBy:   actorUID(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AdminUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.manage.Update(r.Context(), usecase.UpdateUserInput{
		UID:         chi.URLParam(r, "uid"),
		Role:        req.Role,
		IsActive:    req.IsActive,
		Permissions: req.Permissions,
		DisplayName: req.DisplayName,
		Actor:       actorUID(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	actor := middleware.CurrentUser(r.Context())
	if err := h.manage.Delete(r.Context(), uid, actorUID(actor)); err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	h.logger.Info("user deleted", zap.String("uid", uid), zap.String("by", actorEmail(actor)))
	w.WriteHeader(http.StatusNoContent)
}
