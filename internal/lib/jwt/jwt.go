package jwt

import (
	"errors"
	"fmt"
	"time"

	"mpsite/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims полезная нагрузка токена администратора
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const RoleAdmin = "admin"

func NewToken(admin models.Admin, secret []byte, duration time.Duration, now time.Time) (models.TokenPair, error) {
	exp := now.Add(duration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{AccessToken: tokenString, ExpiresAt: exp.Unix()}, nil
}

// Parse проверяет подпись и срок, возвращает метаданные токена
func Parse(tokenString string, secret []byte) (models.TokenMeta, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return models.TokenMeta{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Meta(claims)
}

// Meta переводит claims в модель, роль должна быть admin
func Meta(claims *Claims) (models.TokenMeta, error) {
	if claims.Role != RoleAdmin || claims.Subject == "" {
		return models.TokenMeta{}, ErrInvalidToken
	}

	meta := models.TokenMeta{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		meta.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		meta.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return meta, nil
}
