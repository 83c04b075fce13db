// Package postgresql реализует backend.Client напрямую поверх Postgres.
// Используется, когда сайт работает со своей базой без PostgREST.
package postgresql

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"

	"mpsite/internal/backend"
)

type Storage struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithPool(db), nil
}

func NewWithPool(db *pgxpool.Pool) *Storage {
	return &Storage{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Constructor адаптер для backend.Factory. DSN берется из Settings.URL.
func Constructor(ctx context.Context) backend.Constructor {
	return func(s backend.Settings) (backend.Client, error) {
		return New(ctx, s.URL)
	}
}

func (s *Storage) Close() {
	s.db.Close()
}

// Query читает строки источника в виде map колонка -> значение
func (s *Storage) Query(ctx context.Context, q backend.Query) ([]backend.Row, error) {
	const op = "storage.postgresql.Query"

	columns := []string{"*"}
	if len(q.Columns) > 0 {
		columns = make([]string, 0, len(q.Columns))
		for _, c := range q.Columns {
			columns = append(columns, pq.QuoteIdentifier(c))
		}
	}

	builder := s.sb.Select(columns...).From(pq.QuoteIdentifier(q.Source))

	for _, f := range q.Filters {
		col := pq.QuoteIdentifier(f.Column)
		if f.Op == backend.OpIn {
			builder = builder.Where(sq.Eq{col: f.Values})
			continue
		}
		if len(f.Values) == 0 {
			builder = builder.Where(sq.Eq{col: nil})
			continue
		}
		builder = builder.Where(sq.Eq{col: f.Values[0]})
	}

	if q.Order != nil {
		dir := " ASC"
		if q.Order.Descending {
			dir = " DESC"
		}
		builder = builder.OrderBy(pq.QuoteIdentifier(q.Order.Column) + dir)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []backend.Row{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%s: can't read values: %w", op, err)
		}

		row := make(backend.Row, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = plainValue(values[i])
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}

	return out, nil
}

// Insert вставляет строки одним запросом. Набор колонок берется из первой строки.
func (s *Storage) Insert(ctx context.Context, source string, rows []backend.Row) error {
	const op = "storage.postgresql.Insert"

	if len(rows) == 0 {
		return nil
	}

	keys := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := make([]string, 0, len(keys))
	for _, k := range keys {
		columns = append(columns, pq.QuoteIdentifier(k))
	}

	builder := s.sb.Insert(pq.QuoteIdentifier(source)).Columns(columns...)
	for _, r := range rows {
		values := make([]interface{}, 0, len(keys))
		for _, k := range keys {
			values = append(values, r[k])
		}
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return translate(err)
	}

	return nil
}

// translate сохраняет текст ошибки Postgres, чтобы классификация
// "relation ... does not exist" работала так же, как для REST.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &backend.Error{
			Message: pgErr.Message,
			Code:    pgErr.Code,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
		}
	}
	return err
}

type assigner interface {
	AssignTo(dst interface{}) error
}

// plainValue разворачивает pgtype-значения (массивы, numeric) в обычные типы Go.
// Get() у pgtype возвращает значение, а AssignTo объявлен на указателе.
func plainValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	a, ok := v.(assigner)
	if !ok {
		rv := reflect.ValueOf(v)
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		if a, ok = ptr.Interface().(assigner); !ok {
			return v
		}
	}

	var ss []string
	if err := a.AssignTo(&ss); err == nil {
		return ss
	}

	var f float64
	if err := a.AssignTo(&f); err == nil {
		return f
	}

	return v
}
