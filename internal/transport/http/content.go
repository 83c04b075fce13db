package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	content "mpsite/internal/services/content_service"
	data "mpsite/internal/services/data_service"
	"mpsite/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// contentError статус и тело ответа по таксономии ошибок резолвера
func contentError(err error) (int, response.ErrorResponse) {
	var se *content.SourceError

	switch {
	case errors.Is(err, content.ErrNotConfigured):
		return http.StatusServiceUnavailable, response.ErrNotConfigured
	case errors.As(err, &se):
		return http.StatusBadGateway, response.ErrSourceFailed.WithDetails(se.Source)
	case errors.Is(err, content.ErrNoValidSource), errors.Is(err, content.ErrNoCandidates):
		return http.StatusNotFound, response.ErrNoValidSource
	case errors.Is(err, content.ErrUnknownCategory):
		return http.StatusNotFound, response.ErrUnknownCategory
	}

	return http.StatusInternalServerError, response.ErrInternal
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Content godoc
// @Summary Контент категории
// @Description Нормализованные записи категории: releases, labels, presskit, clinics, blocks, nav, links.
// @Tags content
// @Produce json
// @Param category path string true "Категория"
// @Param keys query string false "Ключи блоков через запятую"
// @Success 200 {object} response.Response "Записи"
// @Failure 404 {object} response.ErrorResponse "Нет категории или ни одного существующего источника"
// @Failure 502 {object} response.ErrorResponse "Ошибка источника"
// @Failure 503 {object} response.ErrorResponse "Бэкенд не настроен"
// @Router /api/v1/content/{category} [get]
func (r *Routers) Content(c echo.Context) error {
	raw := c.Param("category")

	category, err := models.ParseCategory(raw)
	if err != nil || category == models.CategoryLeads {
		return c.JSON(http.StatusNotFound, response.ErrUnknownCategory.WithDetails(raw))
	}

	kind := models.MediaKindVideo
	if k := c.QueryParam("kind"); k != "" {
		kind = models.ParseMediaKind(k)
	}

	return r.resolve(c, category, kind, splitKeys(c.QueryParam("keys")))
}

// Media godoc
// @Summary Медиа по виду
// @Tags content
// @Produce json
// @Param kind path string true "video или mix"
// @Success 200 {object} response.Response "Записи"
// @Failure 404 {object} response.ErrorResponse "Неизвестный вид или нет источника"
// @Failure 502 {object} response.ErrorResponse "Ошибка источника"
// @Failure 503 {object} response.ErrorResponse "Бэкенд не настроен"
// @Router /api/v1/content/media/{kind} [get]
func (r *Routers) Media(c echo.Context) error {
	kind := models.ParseMediaKind(c.Param("kind"))
	if kind != models.MediaKindVideo && kind != models.MediaKindMix {
		return c.JSON(http.StatusNotFound, response.ErrUnknownCategory.WithDetails(string(kind)))
	}

	return r.resolve(c, models.CategoryMedia, kind, nil)
}

func (r *Routers) resolve(c echo.Context, category models.Category, kind models.MediaKind, keys []string) error {
	const op = "http.routers.resolve"

	log := r.log.With(
		slog.String("op", op),
		slog.String("category", string(category)),
	)

	if !r.ContentService.Configured() {
		return c.JSON(http.StatusServiceUnavailable, response.ErrNotConfigured)
	}

	if category == models.CategoryBlocks && len(keys) == 0 {
		return c.JSON(http.StatusOK, response.SuccessResponse(models.TextBlocks{}))
	}

	q, err := r.ContentService.QueryFor(category, kind, keys)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrUnknownCategory.WithDetails(string(category)))
	}

	items, err := r.ContentService.Resolve(c.Request().Context(), q)
	if err != nil {
		status, body := contentError(err)
		if status >= http.StatusInternalServerError {
			log.Error("content resolve failed", sl.Err(err))
		}
		return c.JSON(status, body)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

// LegacyData godoc
// @Summary Старые JSON-данные
// @Description data/<name>.json с кэшем на 30 минут и устаревшей копией при сбое сети.
// @Tags legacy
// @Produce json
// @Param name path string true "Имя набора"
// @Success 200 {object} response.Response{data=data.Result} "Набор"
// @Failure 400 {object} response.ErrorResponse "Недопустимое имя"
// @Failure 503 {object} response.ErrorResponse "Данные недоступны"
// @Router /api/v1/legacy/{name} [get]
func (r *Routers) LegacyData(c echo.Context) error {
	const op = "http.routers.LegacyData"

	name := c.Param("name")

	log := r.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	res, err := r.DataService.Load(c.Request().Context(), name, nil)
	if err != nil {
		if errors.Is(err, data.ErrInvalidName) {
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("invalid data name"))
		}
		log.Warn("legacy data unavailable", sl.Err(err))
		return c.JSON(http.StatusServiceUnavailable, response.ErrDataUnavailable.WithDetails(name))
	}

	c.Response().Header().Set("X-Data-From", res.From)

	return c.JSON(http.StatusOK, response.SuccessResponse(res))
}
