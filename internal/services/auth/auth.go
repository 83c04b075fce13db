package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mpsite/internal/domain/models"
	"mpsite/internal/lib/jwt"
	"mpsite/internal/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin access disabled")
)

type Auth struct {
	log      *slog.Logger
	admin    models.Admin
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// New без хэша пароля или секрета вход администратора выключен
func New(log *slog.Logger, admin models.Admin, secret string, tokenTTL time.Duration) *Auth {
	return &Auth{
		log:      log,
		admin:    admin,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (a *Auth) Enabled() bool {
	return a.admin.Username != "" && len(a.admin.PasswordHash) > 0 && len(a.secret) > 0
}

func (a *Auth) Secret() []byte {
	return a.secret
}

func (a *Auth) Login(ctx context.Context, username, password string) (models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login admin")

	if !a.Enabled() {
		log.Warn("admin login is not configured")

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrAdminDisabled)
	}

	if err := ctx.Err(); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.admin.Username)) == 1

	if err := bcrypt.CompareHashAndPassword(a.admin.PasswordHash, []byte(password)); err != nil || !userOK {
		log.Info("invalid credentials", sl.Err(ErrInvalidCredentials))

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := jwt.NewToken(a.admin, a.secret, a.tokenTTL, a.now())
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in successfully")

	return token, nil
}
