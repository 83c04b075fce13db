package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	id int
}

func (s *stubClient) Query(ctx context.Context, q Query) ([]Row, error) { return nil, nil }

func (s *stubClient) Insert(ctx context.Context, source string, rows []Row) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSettings_Valid(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     bool
	}{
		{name: "complete", settings: Settings{URL: "https://x.supabase.co", Key: "anon"}, want: true},
		{name: "empty url", settings: Settings{Key: "anon"}, want: false},
		{name: "empty key", settings: Settings{URL: "https://x.supabase.co"}, want: false},
		{name: "placeholder url", settings: Settings{URL: "https://YOUR_PROJECT.supabase.co", Key: "anon"}, want: false},
		{name: "placeholder key", settings: Settings{URL: "https://x.supabase.co", Key: "YOUR_ANON_KEY"}, want: false},
		{name: "postgres without key", settings: Settings{Driver: DriverPostgres, URL: "postgres://u:p@db/site"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.Valid())
		})
	}
}

func TestChain_PriorityOrder(t *testing.T) {
	primary := Settings{URL: "https://primary.supabase.co", Key: "a"}
	alternate := Settings{URL: "https://alt.supabase.co", Key: "b"}

	s, ok := Chain{Static(primary), Static(alternate)}.Settings()
	require.True(t, ok)
	assert.Equal(t, primary, s)

	s, ok = Chain{Static(Settings{URL: "YOUR_URL", Key: "YOUR_KEY"}), Static(alternate)}.Settings()
	require.True(t, ok)
	assert.Equal(t, alternate, s)

	_, ok = Chain{Static(Settings{}), nil}.Settings()
	assert.False(t, ok)
}

func TestMetaTags(t *testing.T) {
	withoutMeta := []byte(`<html><head><title>x</title></head><body></body></html>`)
	withMeta := []byte(`<html><head>
		<meta name="supabase-url" content=" https://meta.supabase.co ">
		<meta name="supabase-anon-key" content="meta-key">
	</head><body></body></html>`)

	s, ok := MetaTags(withoutMeta, withMeta).Settings()
	require.True(t, ok)
	assert.Equal(t, "https://meta.supabase.co", s.URL)
	assert.Equal(t, "meta-key", s.Key)
	assert.Equal(t, DriverPostgREST, s.Driver)

	placeholder := []byte(`<meta name="supabase-url" content="YOUR_SUPABASE_URL"><meta name="supabase-anon-key" content="k">`)
	_, ok = MetaTags(placeholder).Settings()
	assert.False(t, ok)
}

func TestFactory_MemoizesBySignature(t *testing.T) {
	var built int32
	current := Settings{URL: "https://one.supabase.co", Key: "k"}

	f := NewFactory(discardLogger(), SourceFunc(func() (Settings, bool) {
		return current, current.Valid()
	}), map[string]Constructor{
		DriverPostgREST: func(s Settings) (Client, error) {
			n := atomic.AddInt32(&built, 1)
			return &stubClient{id: int(n)}, nil
		},
	})

	c1, err := f.Client()
	require.NoError(t, err)
	c2, err := f.Client()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&built))

	current = Settings{URL: "https://two.supabase.co", Key: "k"}
	c3, err := f.Client()
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)
	assert.EqualValues(t, 2, atomic.LoadInt32(&built))
}

func TestFactory_NotConfigured(t *testing.T) {
	f := NewFactory(discardLogger(), Static(Settings{}), nil)

	assert.False(t, f.Configured())
	_, err := f.Client()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFactory_UnknownDriver(t *testing.T) {
	f := NewFactory(discardLogger(), Static(Settings{Driver: "mysql", URL: "u", Key: "k"}), map[string]Constructor{})

	_, err := f.Client()
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestFactory_ConstructorError(t *testing.T) {
	boom := errors.New("dial failed")
	f := NewFactory(discardLogger(), Static(Settings{URL: "https://x.supabase.co", Key: "k"}), map[string]Constructor{
		DriverPostgREST: func(s Settings) (Client, error) { return nil, boom },
	})

	_, err := f.Client()
	assert.ErrorIs(t, err, boom)
}

func TestWaitForClient(t *testing.T) {
	t.Run("times out", func(t *testing.T) {
		f := NewFactory(discardLogger(), Static(Settings{}), nil)

		start := time.Now()
		_, err := WaitForClient(context.Background(), f, 60*time.Millisecond, 10*time.Millisecond)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("config appears while waiting", func(t *testing.T) {
		var ready atomic.Bool
		f := NewFactory(discardLogger(), SourceFunc(func() (Settings, bool) {
			if !ready.Load() {
				return Settings{}, false
			}
			return Settings{URL: "https://late.supabase.co", Key: "k"}, true
		}), map[string]Constructor{
			DriverPostgREST: func(s Settings) (Client, error) { return &stubClient{}, nil },
		})

		time.AfterFunc(20*time.Millisecond, func() { ready.Store(true) })

		c, err := WaitForClient(context.Background(), f, time.Second, 5*time.Millisecond)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestError_Message(t *testing.T) {
	err := &Error{Message: `relation "public.v_home_releases" does not exist`, Code: "42P01"}
	assert.Equal(t, `relation "public.v_home_releases" does not exist (42P01)`, err.Error())
	assert.Equal(t, "plain", (&Error{Message: "plain"}).Error())
}
