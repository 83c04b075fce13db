package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
supabase:
  url: "https://abc.supabase.co"
  anon_key: "key"
sources:
  releases: [releases_v2, releases]
cache:
  driver: redis
`), 0o600))

	cfg := MustLoadPath(path)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "https://abc.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, []string{"releases_v2", "releases"}, cfg.Sources["releases"])
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.Content.WaitTimeout)
	assert.Equal(t, 9*time.Second, cfg.Content.ReleaseAutoplay)
	assert.Equal(t, "manupavez22@gmail.com", cfg.Content.BookingEmail)
	assert.Equal(t, 2, cfg.Legacy.Attempts)
	assert.Equal(t, "postgrest", cfg.Backend.Driver)
}

func TestMustLoadPath_Missing(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestMustLoadPath_SampleConfig(t *testing.T) {
	cfg := MustLoadPath("../../config/config.yaml")

	assert.Contains(t, cfg.Supabase.URL, "YOUR_")
	assert.Equal(t, 50*time.Millisecond, cfg.Content.WaitInterval)
	assert.Equal(t, 5500*time.Millisecond, cfg.Content.PresskitAutoplay)
	assert.Equal(t, 30*time.Minute, cfg.Legacy.MaxAge)
}
