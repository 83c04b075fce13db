package http

import (
	"errors"
	"log/slog"
	"net/http"

	"mpsite/internal/backend"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/services/auth"
	content "mpsite/internal/services/content_service"
	"mpsite/internal/transport/http/dto/request"
	"mpsite/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// AdminLogin godoc
// @Summary Вход администратора
// @Description Проверяет логин и bcrypt-хэш пароля из конфигурации, возвращает JWT.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=models.TokenPair} "Токен"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Failure 403 {object} response.ErrorResponse "Вход администратора выключен"
// @Router /api/v1/admin/login [post]
func (r *Routers) AdminLogin(c echo.Context) error {
	const op = "http.routers.AdminLogin"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	token, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAdminDisabled):
			return c.JSON(http.StatusForbidden, response.ErrAdminDisabled)
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("invalid credentials"))
		}
		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(token))
}

// PurgeCache godoc
// @Summary Сброс кэша страниц и legacy-данных
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]int} "Число удаленных страниц и наборов"
// @Failure 401 {object} response.ErrorResponse "Нужен токен администратора"
// @Router /api/v1/admin/cache/purge [post]
func (r *Routers) PurgeCache(c echo.Context) error {
	const op = "http.routers.PurgeCache"

	log := r.log.With(slog.String("op", op))

	n, err := r.PageService.Purge(c.Request().Context())
	if err != nil {
		log.Error("cache purge failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	d, err := r.DataService.Purge(c.Request().Context())
	if err != nil {
		log.Error("legacy data purge failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]int{"purged": n, "data": d}))
}

// Probe godoc
// @Summary Диагностика источников
// @Description Для каждой категории перебирает кандидатов и возвращает журнал попыток.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param keys query string false "Ключи блоков через запятую"
// @Success 200 {object} response.Response{data=[]response.ProbeEntry} "Журнал"
// @Router /api/v1/admin/probe [get]
func (r *Routers) Probe(c echo.Context) error {
	keys := splitKeys(c.QueryParam("keys"))
	out := make([]response.ProbeEntry, 0)

	for _, t := range content.Targets() {
		q, err := r.ContentService.QueryFor(t.Category, t.Kind, keys)
		if err != nil {
			continue
		}

		entry := response.ProbeEntry{Category: string(t.Category), Kind: string(t.Kind)}

		res, err := r.ContentService.Probe(c.Request().Context(), q)
		if res != nil {
			entry.Source = res.Source
			entry.Attempts = res.Attempts
		}
		if err != nil {
			entry.Error = err.Error()
		}

		out = append(out, entry)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(out))
}

// Health godoc
// @Summary Живость сервиса
// @Tags health
// @Produce json
// @Success 200 {object} response.Health
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Health{Status: "ok"})
}

// Ready godoc
// @Summary Готовность
// @Description Ждет клиента бэкенда ограниченное время. Без настроенного бэкенда сайт работает на статике и считается готовым.
// @Tags health
// @Produce json
// @Success 200 {object} response.Health
// @Failure 503 {object} response.Health
// @Router /health/ready [get]
func (r *Routers) Ready(c echo.Context) error {
	if r.ready == nil {
		return c.JSON(http.StatusOK, response.Health{Status: "ready", Mode: "static"})
	}

	err := r.ready(c.Request().Context())
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, response.Health{Status: "ready", Mode: "backend"})
	case errors.Is(err, backend.ErrNotConfigured):
		return c.JSON(http.StatusOK, response.Health{Status: "ready", Mode: "static"})
	}

	r.log.Warn("backend not ready", sl.Err(err))

	return c.JSON(http.StatusServiceUnavailable, response.Health{Status: "unavailable", Mode: "backend"})
}
