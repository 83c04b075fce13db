package postgresql

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mpsite/internal/backend"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := pgxpool.Connect(ctx, connStr)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		CREATE TABLE home_releases (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			tags TEXT[],
			"order" INT
		);
		CREATE TABLE labels (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE contact_leads (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			type TEXT NOT NULL,
			message TEXT NOT NULL
		);
		INSERT INTO home_releases (title, tags, "order") VALUES
			('Second', ARRAY['techno'], 2),
			('First', ARRAY['house','live'], 1),
			('Unordered', NULL, NULL);
		INSERT INTO labels (name) VALUES ('Kompakt');
	`)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewWithPool(setupTestDB(t))

	t.Run("ordered select", func(t *testing.T) {
		rows, err := storage.Query(ctx, backend.Query{
			Source: "home_releases",
			Order:  &backend.Order{Column: "order"},
		})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "First", rows[0]["title"])
		assert.Equal(t, []string{"house", "live"}, rows[0]["tags"])
		assert.Equal(t, "Unordered", rows[2]["title"])
	})

	t.Run("filters", func(t *testing.T) {
		rows, err := storage.Query(ctx, backend.Query{
			Source:  "home_releases",
			Filters: []backend.Filter{backend.In("title", "First", "Second")},
		})
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		rows, err = storage.Query(ctx, backend.Query{
			Source:  "home_releases",
			Filters: []backend.Filter{backend.Eq("title", "Second")},
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("missing relation keeps postgres message", func(t *testing.T) {
		_, err := storage.Query(ctx, backend.Query{Source: "v_home_releases"})

		var be *backend.Error
		require.True(t, errors.As(err, &be))
		assert.Equal(t, "42P01", be.Code)
		assert.Contains(t, be.Message, `relation "v_home_releases" does not exist`)
	})

	t.Run("missing order column keeps postgres message", func(t *testing.T) {
		_, err := storage.Query(ctx, backend.Query{
			Source: "labels",
			Order:  &backend.Order{Column: "order"},
		})

		var be *backend.Error
		require.True(t, errors.As(err, &be))
		assert.Equal(t, "42703", be.Code)
		assert.Contains(t, be.Message, `column "order" does not exist`)
	})

	t.Run("insert", func(t *testing.T) {
		err := storage.Insert(ctx, "contact_leads", []backend.Row{{
			"name": "A", "email": "a@a.com", "type": "dj", "message": "hi",
		}})
		require.NoError(t, err)

		rows, err := storage.Query(ctx, backend.Query{Source: "contact_leads", Columns: []string{"email"}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "a@a.com", rows[0]["email"])
	})
}
