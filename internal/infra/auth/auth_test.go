package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	u := &entity.UserProfile{UID: "user-1", Email: "a@example.com"}

	token, expiresAt, err := svc.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestTokenRejectsOtherSecretAndExpired(t *testing.T) {
	u := &entity.UserProfile{UID: "user-1"}
	token, _, err := NewTokenService("one", time.Hour).Issue(u)
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc := NewTokenService("one", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := svc.Issue(u)
	require.NoError(t, err)
	_, err = NewTokenService("one", time.Minute).Validate(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", hash)
	assert.NoError(t, h.Compare(hash, "secreto123"))
	assert.Error(t, h.Compare(hash, "otra"))
}
