package services

import (
	"errors"
	"fmt"
	"testing"

	"mpsite/internal/backend"

	"github.com/stretchr/testify/assert"
)

// Сообщения взяты из ответов PostgREST и Postgres
func TestIsMissingRelation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgrest schema cache",
			err:  &backend.Error{Message: "Could not find the table 'public.v_home_releases' in the schema cache", Code: "PGRST205"},
			want: true,
		},
		{
			name: "postgres relation",
			err:  &backend.Error{Message: `relation "public.clinicas" does not exist`, Code: "42P01"},
			want: true,
		},
		{
			name: "plain 404",
			err:  &backend.Error{Message: "404 Not Found: ", Status: 404},
			want: true,
		},
		{
			name: "insert with unknown column",
			err:  &backend.Error{Message: "Could not find the 'type' column of 'contact_messages' in the schema cache", Code: "PGRST204"},
			want: true,
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("query: %w", &backend.Error{Message: "Could not find the table"}),
			want: true,
		},
		{
			name: "permission denied",
			err:  &backend.Error{Message: "permission denied for table releases", Code: "42501"},
			want: false,
		},
		{
			name: "row level security",
			err:  &backend.Error{Message: `new row violates row-level security policy for table "booking_leads"`},
			want: false,
		},
		{
			name: "missing column is not a missing relation",
			err:  &backend.Error{Message: "column home_releases.order does not exist"},
			want: false,
		},
		{
			name: "network",
			err:  errors.New("dial tcp 10.0.0.1:443: connect: connection refused"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissingRelation(tt.err))
		})
	}
}

func TestIsMissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		column string
		want   bool
	}{
		{name: "postgrest", err: &backend.Error{Message: "column home_releases.order does not exist"}, column: "order", want: true},
		{name: "postgres", err: &backend.Error{Message: `column "order" does not exist`}, column: "order", want: true},
		{name: "schema cache column", err: &backend.Error{Message: "Could not find the 'order' column of 'labels' in the schema cache"}, column: "order", want: true},
		{name: "case insensitive", err: errors.New("COLUMN labels.ORDER DOES NOT EXIST"), column: "order", want: true},
		{name: "other column", err: &backend.Error{Message: "column labels.sort does not exist"}, column: "order", want: false},
		{name: "relation", err: &backend.Error{Message: `relation "labels" does not exist`}, column: "order", want: false},
		{name: "empty column", err: &backend.Error{Message: "column x does not exist"}, column: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissingColumn(tt.err, tt.column))
		})
	}
}
