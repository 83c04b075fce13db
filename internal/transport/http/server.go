package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/render"
	booking "mpsite/internal/services/booking_service"
	content "mpsite/internal/services/content_service"
	data "mpsite/internal/services/data_service"
	pages "mpsite/internal/services/page_service"
	"mpsite/internal/transport/http/dto/request"
	"mpsite/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "mpsite/docs"
)

type PageService interface {
	Render(ctx context.Context, name string, reducedMotion bool) ([]byte, *pages.Report, error)
	Purge(ctx context.Context) (int, error)
}

type ContentService interface {
	Configured() bool
	QueryFor(c models.Category, kind models.MediaKind, keys []string) (models.ContentQuery, error)
	Resolve(ctx context.Context, q models.ContentQuery) (any, error)
	Probe(ctx context.Context, q models.ContentQuery) (*content.Resolution, error)
}

type BookingService interface {
	Submit(ctx context.Context, lead models.Lead) (*booking.Outcome, error)
}

type DataService interface {
	Load(ctx context.Context, name string, validate data.Validator) (*data.Result, error)
	Purge(ctx context.Context) (int, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.TokenPair, error)
}

// ReadyFunc ограниченное ожидание клиента бэкенда
type ReadyFunc func(ctx context.Context) error

type Routers struct {
	log            *slog.Logger
	PageService    PageService
	ContentService ContentService
	BookingService BookingService
	DataService    DataService
	AuthService    AuthService
	ready          ReadyFunc
}

func NewRouter(
	log *slog.Logger,
	pageService PageService,
	contentService ContentService,
	bookingService BookingService,
	dataService DataService,
	authService AuthService,
	ready ReadyFunc,
) *Routers {
	return &Routers{
		log:            log,
		PageService:    pageService,
		ContentService: contentService,
		BookingService: bookingService,
		DataService:    dataService,
		AuthService:    authService,
		ready:          ready,
	}
}

const (
	ReducedMotionHint = "Sec-CH-Prefers-Reduced-Motion"

	sessionName   = "session"
	noteKey       = "form_note"
	contactAnchor = "/#contacto"
)

// PrefersReducedMotion query-параметр reduced_motion важнее клиентской подсказки
func PrefersReducedMotion(req *http.Request) bool {
	if v := req.URL.Query().Get("reduced_motion"); v != "" {
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return strings.EqualFold(strings.TrimSpace(req.Header.Get(ReducedMotionHint)), "reduce")
}

// Page godoc
// @Summary Страница сайта
// @Description Статическая страница, заполненная контентом бэкенда. Без бэкенда отдается статика с баннером.
// @Tags pages
// @Produce html
// @Param reduced_motion query bool false "Отключить автопрокрутку каруселей"
// @Success 200 {string} string "HTML"
// @Failure 404 {object} response.ErrorResponse "Страница не найдена"
// @Router / [get]
// @Router /bio [get]
// @Router /clinicas [get]
// @Router /presskit [get]
func (r *Routers) Page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		const op = "http.routers.Page"

		log := r.log.With(
			slog.String("op", op),
			slog.String("page", name),
		)

		h := c.Response().Header()
		h.Set("Accept-CH", ReducedMotionHint)
		h.Add("Vary", ReducedMotionHint)

		body, report, err := r.PageService.Render(c.Request().Context(), name, PrefersReducedMotion(c.Request()))
		if err != nil {
			if errors.Is(err, pages.ErrPageNotFound) {
				return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("page_not_found", name))
			}
			log.Error("page render failed", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}

		if report.Cached {
			h.Set("X-Page-Cache", "hit")
		} else {
			h.Set("X-Page-Cache", "miss")
			if n := report.Failed(); n > 0 {
				log.Warn("page served with static sections", slog.Int("failed", n))
			}
		}

		if note := r.popNote(c); note != "" {
			if b, err := withNote(body, note); err == nil {
				body = b
			} else {
				log.Warn("form note not applied", sl.Err(err))
			}
		}

		return c.HTMLBlob(http.StatusOK, body)
	}
}

func withNote(body []byte, note string) ([]byte, error) {
	doc, err := render.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	n := doc.Find("data-form-note", "")
	if n == nil {
		return body, nil
	}
	render.SetText(n, note)

	return doc.Bytes()
}

func (r *Routers) popNote(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}

	flashes := sess.Flashes(noteKey)
	if len(flashes) == 0 {
		return ""
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("session save failed", sl.Err(err))
	}

	note, _ := flashes[0].(string)
	return note
}

func (r *Routers) pushNote(c echo.Context, note string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		r.log.Warn("session unavailable", sl.Err(err))
		return
	}

	sess.AddFlash(note, noteKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("session save failed", sl.Err(err))
	}
}

// Contact godoc
// @Summary Форма букинга
// @Description HTML-форма. Успех или ошибка валидации возвращают на страницу с сообщением, сбой бэкенда перенаправляет на mailto.
// @Tags booking
// @Accept x-www-form-urlencoded
// @Param name formData string true "Имя"
// @Param email formData string true "Email"
// @Param type formData string true "Тип события"
// @Param message formData string true "Сообщение"
// @Success 303 {string} string "Перенаправление"
// @Router /contact [post]
func (r *Routers) Contact(c echo.Context) error {
	const op = "http.routers.Contact"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LeadRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind form", sl.Err(err))
		r.pushNote(c, booking.NoteIncomplete)
		return c.Redirect(http.StatusSeeOther, contactAnchor)
	}

	outcome, err := r.BookingService.Submit(c.Request().Context(), req.ToModel())
	if err != nil {
		log.Info("lead rejected", sl.Err(err))
		r.pushNote(c, booking.NoteFor(err))
		return c.Redirect(http.StatusSeeOther, contactAnchor)
	}

	if !outcome.Stored {
		return c.Redirect(http.StatusSeeOther, outcome.FallbackURL)
	}

	r.pushNote(c, outcome.Note)

	return c.Redirect(http.StatusSeeOther, contactAnchor)
}

// CreateLead godoc
// @Summary Заявка на букинг
// @Description Сохраняет заявку в первую доступную таблицу. При недоступном бэкенде возвращает mailto-ссылку.
// @Tags booking
// @Accept json
// @Produce json
// @Param request body request.LeadRequest true "Заявка"
// @Success 201 {object} response.Response{data=booking.Outcome} "Заявка сохранена"
// @Failure 400 {object} response.ErrorResponse "Невалидная заявка"
// @Failure 503 {object} response.Response{data=booking.Outcome} "Бэкенд недоступен, fallback_url для письма"
// @Router /api/v1/leads [post]
func (r *Routers) CreateLead(c echo.Context) error {
	const op = "http.routers.CreateLead"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LeadRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	outcome, err := r.BookingService.Submit(c.Request().Context(), req.ToModel())
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(booking.NoteFor(err)))
	}

	if !outcome.Stored {
		return c.JSON(http.StatusServiceUnavailable, response.Response{
			Status:  "fallback",
			Data:    outcome,
			Message: outcome.Note,
		})
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(outcome))
}

// PagePath адрес страницы: home отдается с корня
func PagePath(name string) string {
	if name == "home" {
		return "/"
	}
	return "/" + name
}

// Register вешает маршруты сайта и API. admin защищает группу /api/v1/admin
// кроме входа.
func (r *Routers) Register(e *echo.Echo, pageNames []string, admin ...echo.MiddlewareFunc) {
	for _, name := range pageNames {
		e.GET(PagePath(name), r.Page(name))
	}
	e.POST("/contact", r.Contact)

	e.GET("/health", r.Health)
	e.GET("/health/ready", r.Ready)

	api := e.Group("/api/v1")
	{
		api.POST("/leads", r.CreateLead)

		api.GET("/content/media/:kind", r.Media)
		api.GET("/content/:category", r.Content)

		api.GET("/legacy/:name", r.LegacyData)

		api.POST("/admin/login", r.AdminLogin)

		adminGroup := api.Group("/admin", admin...)
		{
			adminGroup.POST("/cache/purge", r.PurgeCache)
			adminGroup.GET("/probe", r.Probe)
		}
	}
}
