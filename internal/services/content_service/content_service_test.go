package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"mpsite/internal/backend"
	"mpsite/internal/domain/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Query(ctx context.Context, q backend.Query) ([]backend.Row, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]backend.Row)
	return rows, args.Error(1)
}

func (m *MockClient) Insert(ctx context.Context, source string, rows []backend.Row) error {
	args := m.Called(ctx, source, rows)
	return args.Error(0)
}

type stubProvider struct {
	client backend.Client
	err    error
}

func (p stubProvider) Client() (backend.Client, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

func (p stubProvider) Configured() bool {
	return p.err == nil
}

func newTestService(client backend.Client) *ContentService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewContentService(log, stubProvider{client: client}, DefaultSources(), "Manu Pavez")
}

func source(name string, ordered bool) interface{} {
	return mock.MatchedBy(func(q backend.Query) bool {
		return q.Source == name && (q.Order != nil) == ordered
	})
}

func anySource(name string) interface{} {
	return mock.MatchedBy(func(q backend.Query) bool {
		return q.Source == name
	})
}

var (
	errMissingView = &backend.Error{Message: "Could not find the table 'public.v_home_releases' in the schema cache", Code: "PGRST205"}
	errMissingRel  = &backend.Error{Message: `relation "public.x" does not exist`, Code: "42P01"}
	errDenied      = &backend.Error{Message: "permission denied for table home_releases", Code: "42501"}
	errNoOrder     = &backend.Error{Message: "column labels.order does not exist", Code: "42703"}
)

func TestContentService_Releases(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mockSetup func(m *MockClient)
		wantIDs   []string
		wantErr   error
		check     func(t *testing.T, m *MockClient, err error)
	}{
		{
			name: "first available source wins",
			mockSetup: func(m *MockClient) {
				m.On("Query", mock.Anything, source("v_home_releases", true)).Return(nil, errMissingView).Once()
				m.On("Query", mock.Anything, source("home_releases", true)).Return([]backend.Row{
					{"id": 1, "title": "Nocturno", "order": 1},
					{"id": 2, "title": "Alba", "order": 2},
				}, nil).Once()
			},
			wantIDs: []string{"1", "2"},
			check: func(t *testing.T, m *MockClient, err error) {
				m.AssertNotCalled(t, "Query", mock.Anything, anySource("releases"))
			},
		},
		{
			name: "empty result is a valid answer",
			mockSetup: func(m *MockClient) {
				m.On("Query", mock.Anything, source("v_home_releases", true)).Return([]backend.Row{}, nil).Once()
			},
			wantIDs: []string{},
			check: func(t *testing.T, m *MockClient, err error) {
				m.AssertNumberOfCalls(t, "Query", 1)
			},
		},
		{
			name: "every candidate missing",
			mockSetup: func(m *MockClient) {
				m.On("Query", mock.Anything, source("v_home_releases", true)).Return(nil, errMissingView).Once()
				m.On("Query", mock.Anything, source("home_releases", true)).Return(nil, errMissingRel).Once()
				m.On("Query", mock.Anything, source("releases", true)).Return(nil, errMissingRel).Once()
			},
			wantErr: ErrNoValidSource,
			check: func(t *testing.T, m *MockClient, err error) {
				m.AssertNumberOfCalls(t, "Query", 3)
				var be *backend.Error
				assert.True(t, errors.As(err, &be), "last backend error stays reachable")
			},
		},
		{
			name: "non missing error aborts",
			mockSetup: func(m *MockClient) {
				m.On("Query", mock.Anything, source("v_home_releases", true)).Return(nil, errDenied).Once()
			},
			check: func(t *testing.T, m *MockClient, err error) {
				var se *SourceError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, "v_home_releases", se.Source)
				assert.ErrorIs(t, err, errDenied)
				assert.NotErrorIs(t, err, ErrNoValidSource)
				m.AssertNumberOfCalls(t, "Query", 1)
			},
		},
		{
			name: "missing order column retries once without ordering",
			mockSetup: func(m *MockClient) {
				m.On("Query", mock.Anything, source("v_home_releases", true)).Return(nil, &backend.Error{Message: "column v_home_releases.order does not exist"}).Once()
				m.On("Query", mock.Anything, source("v_home_releases", false)).Return([]backend.Row{{"slug": "alba", "title": "Alba"}}, nil).Once()
			},
			wantIDs: []string{"alba"},
			check: func(t *testing.T, m *MockClient, err error) {
				m.AssertNumberOfCalls(t, "Query", 2)
			},
		},
		{
			name: "retry without ordering hits missing relation",
			mockSetup: func(m *MockClient) {
				m.On("Query", mock.Anything, source("v_home_releases", true)).Return(nil, &backend.Error{Message: "column v_home_releases.order does not exist"}).Once()
				m.On("Query", mock.Anything, source("v_home_releases", false)).Return(nil, errMissingView).Once()
				m.On("Query", mock.Anything, source("home_releases", true)).Return([]backend.Row{{"id": 9}}, nil).Once()
			},
			wantIDs: []string{"9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockClient)
			tt.mockSetup(m)

			got, err := newTestService(m).Releases(ctx)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantIDs != nil {
				require.NoError(t, err)
				ids := make([]string, 0, len(got))
				for _, r := range got {
					ids = append(ids, r.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
			}
			if tt.check != nil {
				tt.check(t, m, err)
			}

			m.AssertExpectations(t)
		})
	}
}

func TestContentService_NotConfigured(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewContentService(log, stubProvider{err: backend.ErrNotConfigured}, nil, "")

	assert.False(t, s.Configured())

	_, err := s.Releases(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = s.InsertLead(context.Background(), models.Lead{Name: "A"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilProvider *ContentService = NewContentService(log, nil, nil, "")
	_, err = nilProvider.Clinics(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestContentService_Idempotent(t *testing.T) {
	m := new(MockClient)
	rows := []backend.Row{
		{"id": 3, "title": "C"},
		{"id": 1, "title": "A", "order": 1, "platform_urls": `{"spotify":"https://open.spotify.com/x"}`},
		{"id": 2, "title": "B", "order": "1", "tags": "house, live"},
	}
	m.On("Query", mock.Anything, source("v_home_releases", true)).Return(rows, nil).Twice()

	s := newTestService(m)

	first, err := s.Releases(context.Background())
	require.NoError(t, err)
	second, err := s.Releases(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Releases() mismatch (-first +second):\n%s", diff)
	}
	m.AssertExpectations(t)
}

func TestContentService_OrderSemantics(t *testing.T) {
	m := new(MockClient)
	m.On("Query", mock.Anything, source("v_labels_support", true)).Return(nil, errNoOrder).Once()
	m.On("Query", mock.Anything, source("v_labels_support", false)).Return([]backend.Row{
		{"name": "no order first"},
		{"name": "second", "order": 2},
		{"name": "first", "order": 1},
		{"name": "no order second", "order": nil},
		{"name": "second tie", "order": 2},
	}, nil).Once()

	labels, err := newTestService(m).Labels(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"first", "second", "second tie", "no order first", "no order second"}, names)
}

func TestContentService_ReleaseTieBreak(t *testing.T) {
	m := new(MockClient)
	m.On("Query", mock.Anything, source("v_home_releases", true)).Return([]backend.Row{
		{"id": "old", "order": 1, "released_at": "2021-03-01"},
		{"id": "undated", "order": 1},
		{"id": "new", "order": 1, "released_at": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"id": "last"},
	}, nil).Once()

	got, err := newTestService(m).Releases(context.Background())
	require.NoError(t, err)

	ids := []string{}
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"new", "old", "undated", "last"}, ids)
}

func TestPlatformLinks_RoundTrip(t *testing.T) {
	want := []models.PlatformLink{
		{Label: "Spotify", URL: "https://open.spotify.com/album/1"},
		{Label: "Beatport", URL: "https://www.beatport.com/release/2"},
	}

	tests := []struct {
		name string
		row  backend.Row
	}{
		{
			name: "json string",
			row: backend.Row{"platform_urls": `[{"label":"Spotify","url":"https://open.spotify.com/album/1"},` +
				`{"platform":"Beatport","url":"https://www.beatport.com/release/2"}]`},
		},
		{
			name: "array",
			row: backend.Row{"platform_urls": []any{
				map[string]any{"label": "Spotify", "url": "https://open.spotify.com/album/1"},
				map[string]any{"platform": "Beatport", "url": "https://www.beatport.com/release/2"},
				map[string]any{"label": "Dup", "url": "https://open.spotify.com/album/1"},
			}},
		},
		{
			name: "object",
			row: backend.Row{"platform_urls": map[string]any{
				"beatport": "https://www.beatport.com/release/2",
				"spotify":  "https://open.spotify.com/album/1",
				"notes":    "not a url",
			}},
		},
		{
			name: "single columns",
			row: backend.Row{
				"spotify_url": "https://open.spotify.com/album/1",
				"beatport":    "https://www.beatport.com/release/2",
				"youtube_url": "ftp://nope",
			},
		},
		{
			name: "object string plus duplicate column",
			row: backend.Row{
				"platform_urls": `{"spotify":"https://open.spotify.com/album/1","beatport":"https://www.beatport.com/release/2"}`,
				"spotify_url":   "https://open.spotify.com/album/1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, platformLinks(tt.row))
		})
	}
}

func TestPlatformLinks_BareURLStringIsDropped(t *testing.T) {
	links := platformLinks(backend.Row{"platform_urls": "https://open.spotify.com/album/1"})
	assert.Equal(t, []models.PlatformLink{}, links)
}

func TestNormalize_MalformedValues(t *testing.T) {
	r := normalizeRelease(backend.Row{
		"title":         42,
		"tags":          map[string]any{"x": 1},
		"order":         "abc",
		"platform_urls": "{broken",
		"is_featured":   "nope",
		"released_at":   "yesterday",
	}, 4)

	assert.Equal(t, "4", r.ID)
	assert.Equal(t, "42", r.Title)
	assert.Equal(t, []string{}, r.Tags)
	assert.Nil(t, r.Order)
	assert.Equal(t, []models.PlatformLink{}, r.PlatformLinks)
	assert.True(t, r.IsFeatured)
	assert.Nil(t, r.ReleasedAt)

	c := normalizeClinic(backend.Row{"name": "Clinic", "bullets": "uno\n\ndos\n", "cta_url": "https://wa.me/1"}, 0)
	assert.Equal(t, "Clinic", c.Title)
	assert.Equal(t, []string{"uno", "dos"}, c.Bullets)
	assert.Equal(t, "Consultar", c.CTALabel)
}

func TestContentService_Presskit(t *testing.T) {
	m := new(MockClient)
	m.On("Query", mock.Anything, source("v_presskit_download", true)).Return(nil, errMissingRel).Once()
	m.On("Query", mock.Anything, source("presskit_packages", true)).Return([]backend.Row{
		{"name": "Press kit", "download_url": "https://cdn.example.com/presskit.zip", "sort": 1},
		{"title": "Live", "file_url": "https://cdn.example.com/live.JPG?w=1200", "order": 3},
		{"caption": "Studio", "url": "https://cdn.example.com/studio.webp", "order": 2},
		{"url": "https://cdn.example.com/raw.png"},
	}, nil).Once()

	assets, err := newTestService(m).PresskitAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 4)

	photos := Photos(assets)
	require.Len(t, photos, 3)
	assert.Equal(t, "Studio", photos[0].Alt)
	assert.Equal(t, "Live", photos[1].Alt)
	assert.Equal(t, "Manu Pavez", photos[2].Alt)

	downloads := Downloads(assets)
	require.Len(t, downloads, 1)
	assert.Equal(t, "https://cdn.example.com/presskit.zip", downloads[0].URL)
}

func TestContentService_Blocks(t *testing.T) {
	t.Run("no keys no call", func(t *testing.T) {
		m := new(MockClient)
		blocks, err := newTestService(m).Blocks(context.Background(), []string{"", " "})
		require.NoError(t, err)
		assert.Empty(t, blocks)
		m.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run("resolve with no keys no call", func(t *testing.T) {
		m := new(MockClient)
		s := newTestService(m)

		got, err := s.Resolve(context.Background(), s.BlocksQuery(nil))
		require.NoError(t, err)
		assert.Equal(t, models.TextBlocks{}, got)
		m.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run("maps keys and skips absent ones", func(t *testing.T) {
		m := new(MockClient)
		m.On("Query", mock.Anything, mock.MatchedBy(func(q backend.Query) bool {
			return q.Source == "page_blocks" && q.Order == nil &&
				len(q.Filters) == 1 && q.Filters[0].Op == backend.OpIn &&
				cmp.Equal(q.Filters[0].Values, []any{"bio_intro", "bio_long"})
		})).Return([]backend.Row{
			{"key": "bio_intro", "content": "Hola.\n\nSegundo párrafo."},
			{"slug": "bio_long", "bio": "Texto largo"},
			{"key": "empty"},
		}, nil).Once()

		blocks, err := newTestService(m).Blocks(context.Background(), []string{"bio_intro", "bio_long", "bio_intro"})
		require.NoError(t, err)
		assert.Equal(t, models.TextBlocks{
			"bio_intro": "Hola.\n\nSegundo párrafo.",
			"bio_long":  "Texto largo",
		}, blocks)
		m.AssertExpectations(t)
	})
}

func TestContentService_MediaFallsBackToItems(t *testing.T) {
	m := new(MockClient)
	m.On("Query", mock.Anything, source("v_media_mixes", true)).Return(nil, errMissingRel).Once()
	m.On("Query", mock.Anything, mock.MatchedBy(func(q backend.Query) bool {
		return q.Source == "media_items" && len(q.Filters) == 1 &&
			q.Filters[0].Column == "kind" && q.Filters[0].Values[0] == "mix"
	})).Return([]backend.Row{{"title": "Mix 1", "embed_url": "https://w.soundcloud.com/player/?url=1"}}, nil).Once()

	items, err := newTestService(m).Media(context.Background(), models.ParseMediaKind("mixes"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.MediaKindMix, items[0].Kind)
	m.AssertExpectations(t)
}

func TestContentService_InsertLead(t *testing.T) {
	ctx := context.Background()
	lead := models.Lead{Name: "A", Email: "a@a.com", Type: "dj", Message: "hi"}
	payload := []backend.Row{{"name": "A", "email": "a@a.com", "type": "dj", "message": "hi"}}

	tests := []struct {
		name      string
		mockSetup func(m *MockClient)
		want      models.LeadReceipt
		wantErr   error
		calls     int
	}{
		{
			name: "second table accepts",
			mockSetup: func(m *MockClient) {
				m.On("Insert", mock.Anything, "booking_leads", payload).Return(errMissingRel).Once()
				m.On("Insert", mock.Anything, "contact_leads", payload).Return(nil).Once()
			},
			want:  models.LeadReceipt{Table: "contact_leads"},
			calls: 2,
		},
		{
			name: "no destination",
			mockSetup: func(m *MockClient) {
				m.On("Insert", mock.Anything, mock.Anything, payload).Return(errMissingRel).Times(4)
			},
			wantErr: ErrNoDestination,
			calls:   4,
		},
		{
			name: "rejected write propagates",
			mockSetup: func(m *MockClient) {
				m.On("Insert", mock.Anything, "booking_leads", payload).Return(&backend.Error{Message: "new row violates row-level security policy"}).Once()
			},
			wantErr: &SourceError{},
			calls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockClient)
			tt.mockSetup(m)

			got, err := newTestService(m).InsertLead(ctx, lead)

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			case *SourceError:
				var se *SourceError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, "booking_leads", se.Source)
				assert.True(t, IsUserFacing(err))
			default:
				assert.ErrorIs(t, err, want)
			}

			m.AssertNumberOfCalls(t, "Insert", tt.calls)
			m.AssertExpectations(t)
		})
	}
}

func TestContentService_ResolveAndProbe(t *testing.T) {
	m := new(MockClient)
	m.On("Query", mock.Anything, source("clinics", true)).Return(nil, errMissingRel).Once()
	m.On("Query", mock.Anything, source("clinicas", true)).Return([]backend.Row{{"title": "Clínica de mezcla"}}, nil).Once()
	m.On("Query", mock.Anything, source("clinics", true)).Return(nil, errMissingRel).Once()
	m.On("Query", mock.Anything, source("clinicas", true)).Return([]backend.Row{{"title": "Clínica de mezcla"}}, nil).Once()

	s := newTestService(m)

	got, err := s.Resolve(context.Background(), s.ClinicsQuery())
	require.NoError(t, err)
	clinics, ok := got.([]models.Clinic)
	require.True(t, ok)
	require.Len(t, clinics, 1)

	res, err := s.Probe(context.Background(), s.ClinicsQuery())
	require.NoError(t, err)
	assert.Equal(t, "clinicas", res.Source)
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, OutcomeMissingRelation, res.Attempts[0].Outcome)
	assert.Equal(t, OutcomeOK, res.Attempts[1].Outcome)
	assert.Equal(t, 1, res.Attempts[1].Rows)

	_, err = s.Resolve(context.Background(), models.ContentQuery{Category: models.CategoryLeads, Candidates: []models.Candidate{{Name: "x"}}})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = s.Resolve(context.Background(), models.ContentQuery{Category: models.CategoryClinics})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestTargets(t *testing.T) {
	targets := Targets()

	var media []models.MediaKind
	for _, tg := range targets {
		assert.NotEqual(t, models.CategoryLeads, tg.Category)
		if tg.Category == models.CategoryMedia {
			media = append(media, tg.Kind)
		}
	}
	assert.Equal(t, []models.MediaKind{models.MediaKindVideo, models.MediaKindMix}, media)
	assert.Len(t, targets, len(models.Categories()))
}
