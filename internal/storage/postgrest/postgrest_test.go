package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mpsite/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Query(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"title":"Nocturno","order":2},{"id":2,"title":"Alba","order":null}]`)
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", "anon-key", srv.Client())
	require.NoError(t, err)

	rows, err := c.Query(context.Background(), backend.Query{
		Source:  "media_items",
		Filters: []backend.Filter{backend.Eq("kind", "video")},
		Order:   &backend.Order{Column: "order"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nocturno", rows[0]["title"])
	assert.Equal(t, json.Number("2"), rows[0]["order"])
	assert.Nil(t, rows[1]["order"])

	require.NotNil(t, got)
	assert.Equal(t, "/rest/v1/media_items", got.URL.Path)
	assert.Equal(t, "*", got.URL.Query().Get("select"))
	assert.Equal(t, "eq.video", got.URL.Query().Get("kind"))
	assert.Equal(t, "order.asc", got.URL.Query().Get("order"))
	assert.Equal(t, "anon-key", got.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", got.Header.Get("Authorization"))
}

func TestClient_QueryInFilter(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.Query().Get("key")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "k", srv.Client())
	require.NoError(t, err)

	rows, err := c.Query(context.Background(), backend.Query{
		Source:  "page_blocks",
		Filters: []backend.Filter{backend.In("key", "bio_intro", `say "hi", ok`)},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
	assert.Equal(t, `in.("bio_intro","say \"hi\", ok")`, rawQuery)
}

func TestClient_QueryErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "schema cache miss",
			status:      http.StatusNotFound,
			body:        `{"code":"PGRST205","details":null,"hint":null,"message":"Could not find the table 'public.v_home_releases' in the schema cache"}`,
			wantMessage: "Could not find the table 'public.v_home_releases' in the schema cache",
			wantCode:    "PGRST205",
		},
		{
			name:        "missing order column",
			status:      http.StatusBadRequest,
			body:        `{"code":"42703","message":"column home_releases.order does not exist"}`,
			wantMessage: "column home_releases.order does not exist",
			wantCode:    "42703",
		},
		{
			name:        "non json body",
			status:      http.StatusBadGateway,
			body:        `upstream down`,
			wantMessage: "502 Bad Gateway: upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := New(srv.URL, "k", srv.Client())
			require.NoError(t, err)

			_, err = c.Query(context.Background(), backend.Query{Source: "home_releases"})
			require.Error(t, err)

			var be *backend.Error
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.wantMessage, be.Message)
			assert.Equal(t, tt.wantCode, be.Code)
			assert.Equal(t, tt.status, be.Status)
		})
	}
}

func TestClient_Insert(t *testing.T) {
	var (
		body   []backend.Row
		prefer string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		prefer = r.Header.Get("Prefer")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "k", srv.Client())
	require.NoError(t, err)

	err = c.Insert(context.Background(), "contact_leads", []backend.Row{{
		"name": "A", "email": "a@a.com", "type": "dj", "message": "hi",
	}})
	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/contact_leads", path)
	assert.Equal(t, "return=minimal", prefer)
	require.Len(t, body, 1)
	assert.Equal(t, "a@a.com", body[0]["email"])
}

func TestClient_InsertRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"42501","message":"new row violates row-level security policy for table \"booking_leads\""}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "k", srv.Client())
	require.NoError(t, err)

	err = c.Insert(context.Background(), "booking_leads", []backend.Row{{"name": "A"}})

	var be *backend.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "42501", be.Code)
	assert.Equal(t, http.StatusUnauthorized, be.Status)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url", "k", nil)
	assert.Error(t, err)
}
