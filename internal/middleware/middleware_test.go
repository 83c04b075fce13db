package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mpsite/internal/domain/models"
	jwtlib "mpsite/internal/lib/jwt"
	"mpsite/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminJWT(t *testing.T) {
	secret := []byte("secret")

	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		meta := c.Get(AdminContextKey).(models.TokenMeta)
		return c.String(http.StatusOK, meta.Subject)
	}, AdminJWT(secret)...)

	valid, err := jwtlib.NewToken(models.Admin{Username: "manu"}, secret, time.Hour, time.Now())
	require.NoError(t, err)

	expired, err := jwtlib.NewToken(models.Admin{Username: "manu"}, secret, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	visitor, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtlib.Claims{
		Role:             "visitor",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "someone"},
	}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid", valid.AccessToken, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"expired", expired.AccessToken, http.StatusUnauthorized},
		{"wrong role", visitor, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "manu", rec.Body.String())
			}
		})
	}
}

func TestPrometheusMetrics(t *testing.T) {
	e := echo.New()
	e.Use(PrometheusMetrics)
	e.GET("/items/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no")
	})

	ok := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")
	fail := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/fail", "418")
	okBefore, failBefore := testutil.ToFloat64(ok), testutil.ToFloat64(fail)

	for _, target := range []string{"/items/1", "/items/2", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(fail))
}
