package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/metrics"

	"github.com/go-playground/validator/v10"
)

const (
	NoteSent       = "Enviado. Te respondo a la brevedad."
	NoteFallback   = "No pude enviar automático. Abro tu mail como plan B."
	NoteIncomplete = "Te falta completar algún campo marcado con *."
	NoteBadEmail   = "Revisá el email, no parece válido."
)

var (
	ErrIncomplete   = errors.New("missing required fields")
	ErrInvalidEmail = errors.New("invalid email")
	ErrTooLong      = errors.New("field too long")
)

type LeadInserter interface {
	Configured() bool
	InsertLead(ctx context.Context, lead models.Lead) (models.LeadReceipt, error)
}

// Outcome результат отправки формы: либо заявка сохранена,
// либо клиенту отдается mailto-ссылка с заполненным письмом
type Outcome struct {
	Stored      bool   `json:"stored"`
	Table       string `json:"table,omitempty"`
	FallbackURL string `json:"fallback_url,omitempty"`
	Note        string `json:"note"`
}

type BookingService struct {
	log      *slog.Logger
	leads    LeadInserter
	email    string
	artist   string
	validate *validator.Validate
}

func NewBookingService(log *slog.Logger, leads LeadInserter, email, artist string) *BookingService {
	return &BookingService{
		log:      log,
		leads:    leads,
		email:    email,
		artist:   artist,
		validate: validator.New(),
	}
}

func Normalize(lead models.Lead) models.Lead {
	return models.Lead{
		Name:    strings.TrimSpace(lead.Name),
		Email:   strings.TrimSpace(lead.Email),
		Type:    strings.TrimSpace(lead.Type),
		Message: strings.TrimSpace(lead.Message),
	}
}

// Validate переводит ошибки validator в ErrIncomplete / ErrInvalidEmail / ErrTooLong
func (s *BookingService) Validate(lead models.Lead) error {
	err := s.validate.Struct(lead)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := ErrTooLong
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return ErrIncomplete
		case "email":
			out = ErrInvalidEmail
		}
	}
	return out
}

// NoteFor текст для пользователя по ошибке валидации
func NoteFor(err error) string {
	if errors.Is(err, ErrInvalidEmail) {
		return NoteBadEmail
	}
	return NoteIncomplete
}

// Submit ошибку возвращает только на невалидной заявке.
// Любой сбой бэкенда превращается в mailto-фолбэк.
func (s *BookingService) Submit(ctx context.Context, lead models.Lead) (*Outcome, error) {
	const op = "booking_service.Submit"

	lead = Normalize(lead)

	log := s.log.With(
		slog.String("op", op),
		slog.String("type", lead.Type),
	)

	if err := s.Validate(lead); err != nil {
		metrics.LeadsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.leads.Configured() {
		receipt, err := s.leads.InsertLead(ctx, lead)
		if err == nil {
			log.Info("lead stored", slog.String("table", receipt.Table))
			return &Outcome{Stored: true, Table: receipt.Table, Note: NoteSent}, nil
		}
		log.Warn("lead insert failed, falling back to mailto", sl.Err(err))
	} else {
		log.Info("backend not configured, falling back to mailto")
	}

	metrics.LeadsTotal.WithLabelValues("fallback").Inc()

	return &Outcome{FallbackURL: s.MailtoURL(lead), Note: NoteFallback}, nil
}

func (s *BookingService) Subject() string {
	return "Booking / Contacto - " + s.artist
}

// MailtoURL письмо с темой и телом, пробелы кодируются как %20
func (s *BookingService) MailtoURL(lead models.Lead) string {
	body := strings.Join([]string{
		"Nombre: " + lead.Name,
		"Email: " + lead.Email,
		"Tipo de evento: " + lead.Type,
		"",
		"Mensaje:",
		lead.Message,
	}, "\n")

	return "mailto:" + s.email + "?subject=" + encodeComponent(s.Subject()) + "&body=" + encodeComponent(body)
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
