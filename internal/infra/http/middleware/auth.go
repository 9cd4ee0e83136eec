package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/auth"
)

type contextKey string

const userKey contextKey = "crm_user"

// TokenValidator is implemented by *auth.TokenService.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// UserLoader fetches the current profile of a token's subject.
type UserLoader interface {
	FindByID(ctx context.Context, uid string) (*entity.UserProfile, error)
}

type Authenticator struct {
	Tokens TokenValidator
	Users  UserLoader
}

func NewAuthenticator(tokens TokenValidator, users UserLoader) *Authenticator {
	return &Authenticator{Tokens: tokens, Users: users}
}

// Authenticate requires a valid bearer token of an active user and stores
// the freshly loaded profile in the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			deny(w, http.StatusUnauthorized, "UNAUTHENTICATED", "falta el token de sesión")
			return
		}
		claims, err := a.Tokens.Validate(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, "UNAUTHENTICATED", "sesión inválida o expirada")
			return
		}
		user, err := a.Users.FindByID(r.Context(), claims.UID)
		if err != nil {
			deny(w, http.StatusUnauthorized, "UNAUTHENTICATED", "sesión inválida o expirada")
			return
		}
		if !user.IsActive {
			deny(w, http.StatusForbidden, "USER_INACTIVE", "la cuenta está desactivada")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequirePermission rejects users that lack perm.
func RequirePermission(perm entity.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !entity.HasPermission(CurrentUser(r.Context()), perm) {
				deny(w, http.StatusForbidden, "FORBIDDEN", "no tienes el permiso "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, u *entity.UserProfile) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func CurrentUser(ctx context.Context) *entity.UserProfile {
	u, _ := ctx.Value(userKey).(*entity.UserProfile)
	return u
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

func deny(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
