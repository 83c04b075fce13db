package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mpsite/internal/metrics"

	"github.com/labstack/echo/v4"
)

const unmatchedPath = "unmatched"

// PrometheusMetrics пишет счетчик и длительность по шаблону маршрута,
// а не по сырому URL, чтобы не плодить метки.
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/metrics" {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		duration := time.Since(start).Seconds()

		path := c.Path()
		if path == "" {
			path = unmatchedPath
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request().Method,
			path,
			strconv.Itoa(statusOf(c, err)),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request().Method,
			path,
		).Observe(duration)

		return err
	}
}

// statusOf ошибку обработчика echo превращает в ответ позже, после middleware
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
