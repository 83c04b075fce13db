package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"mpsite/internal/domain/models"
	"mpsite/internal/lib/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, secret string) *Auth {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, models.Admin{Username: "manu", PasswordHash: hash}, secret, time.Hour)
}

func TestAuth_Login(t *testing.T) {
	a := newTestAuth(t, "secret")

	t.Run("success", func(t *testing.T) {
		pair, err := a.Login(context.Background(), "manu", "correct horse")
		require.NoError(t, err)

		meta, err := jwt.Parse(pair.AccessToken, a.Secret())
		require.NoError(t, err)
		assert.Equal(t, "manu", meta.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Login(context.Background(), "manu", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong username", func(t *testing.T) {
		_, err := a.Login(context.Background(), "admin", "correct horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuth_Disabled(t *testing.T) {
	a := newTestAuth(t, "")

	assert.False(t, a.Enabled())
	_, err := a.Login(context.Background(), "manu", "correct horse")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}
