// Package backend описывает контракт клиента табличного бэкенда
// (Supabase REST или прямой Postgres) и его мемоизированную фабрику.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfigured = errors.New("backend not configured")
	ErrUnavailable   = errors.New("backend unavailable")
	ErrUnknownDriver = errors.New("unknown backend driver")
)

// Row одна строка ответа: имя колонки -> значение
type Row map[string]any

type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Values []any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Values: []any{value}}
}

func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: OpIn, Values: values}
}

type Order struct {
	Column     string
	Descending bool
}

// Query чтение из одного источника
type Query struct {
	Source  string
	Columns []string
	Filters []Filter
	Order   *Order
}

func (q Query) Selection() string {
	if len(q.Columns) == 0 {
		return "*"
	}
	return strings.Join(q.Columns, ",")
}

type Client interface {
	Query(ctx context.Context, q Query) ([]Row, error)
	Insert(ctx context.Context, source string, rows []Row) error
}

// Error ошибка, пришедшая от бэкенда. Message сохраняется дословно:
// по нему классифицируются отсутствующие таблицы и колонки.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}
