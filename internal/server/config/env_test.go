package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("environment overrides defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-e", filepath.Join(t.TempDir(), "missing.env")}
		t.Setenv("MOVIEBOX_HTTP_ADDR", ":9999")
		t.Setenv("MOVIEBOX_TMDB_API_KEY", "env-key")
		t.Setenv("MOVIEBOX_EXPORT_WORKERS", "5")
		t.Setenv("MOVIEBOX_JOB_TTL", "30m")
		t.Setenv("MOVIEBOX_S3_ENABLED", "true")
		t.Setenv("MOVIEBOX_CATALOG_RATE_LIMIT", "2.5")

		var cfg Config
		cfg.LoadDefaults()
		parseEnv(&cfg)

		assert.Equal(t, ":9999", cfg.HTTPAddr)
		assert.Equal(t, "env-key", cfg.CatalogAPIKey)
		assert.Equal(t, 5, cfg.ExportWorkers)
		assert.Equal(t, 30*time.Minute, cfg.JobTTL)
		assert.True(t, cfg.S3Enabled)
		assert.Equal(t, 2.5, cfg.CatalogRateLimit)
		assert.Equal(t, "shared", cfg.SharedDir)
	})

	t.Run("dotenv file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("MOVIEBOX_SHARED_DIR=/srv/media\n"), 0o600))
		os.Args = []string{"testbin", "-env", path}
		t.Cleanup(func() { _ = os.Unsetenv("MOVIEBOX_SHARED_DIR") })

		var cfg Config
		cfg.LoadDefaults()
		parseEnv(&cfg)

		assert.Equal(t, "/srv/media", cfg.SharedDir)
	})

	t.Run("malformed number panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-e", filepath.Join(t.TempDir(), "missing.env")}
		t.Setenv("MOVIEBOX_EXPORT_QUEUE_SIZE", "many")

		var cfg Config
		require.Panics(t, func() { parseEnv(&cfg) })
	})
}
