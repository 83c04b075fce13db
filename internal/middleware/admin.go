package middleware

import (
	"net/http"

	jwtlib "mpsite/internal/lib/jwt"
	"mpsite/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const AdminContextKey = "admin"

// AdminJWT проверяет подпись токена и роль admin.
// Метаданные токена кладутся в контекст под AdminContextKey.
func AdminJWT(secret []byte) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			SigningKey:    secret,
			SigningMethod: echojwt.AlgorithmHS256,
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(jwtlib.Claims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("admin token required"))
			},
		}),
		requireAdmin,
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("admin token required"))
		}

		claims, ok := token.Claims.(*jwtlib.Claims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("invalid token"))
		}

		meta, err := jwtlib.Meta(claims)
		if err != nil {
			return c.JSON(http.StatusForbidden, response.ErrorResponseWithDetails("forbidden", "admin access required"))
		}

		c.Set(AdminContextKey, meta)

		return next(c)
	}
}
