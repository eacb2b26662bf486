package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/moviebox/internal/flagx"
)

// loadDotenv is a seam so tests can point at their own dotenv file.
var loadDotenv = func() error {
	return godotenv.Load(flagx.EnvFileFlags())
}

// parseEnv overlays MOVIEBOX_* environment variables onto config. A dotenv
// file (".env" or the -e/-env flag) is loaded first; variables already set
// in the process environment win over the file. Malformed numeric values
// panic, like malformed JSON or flags.
func parseEnv(config *Config) {
	if err := loadDotenv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = d
		}
	}

	str("MOVIEBOX_HTTP_ADDR", &config.HTTPAddr)
	str("MOVIEBOX_PUBLIC_URL", &config.PublicURL)
	str("MOVIEBOX_SHARED_DIR", &config.SharedDir)
	str("MOVIEBOX_TEMP_DIR", &config.TempDir)

	str("MOVIEBOX_CATALOG_BASE_URL", &config.CatalogBaseURL)
	str("MOVIEBOX_CATALOG_IMAGE_BASE_URL", &config.CatalogImageBaseURL)
	str("MOVIEBOX_CATALOG_IMAGE_SIZE", &config.CatalogImageSize)
	str("MOVIEBOX_TMDB_API_KEY", &config.CatalogAPIKey)
	duration("MOVIEBOX_CATALOG_TIMEOUT", &config.CatalogTimeout)
	float("MOVIEBOX_CATALOG_RATE_LIMIT", &config.CatalogRateLimit)
	integer("MOVIEBOX_POSTER_MAX_WIDTH", &config.PosterMaxWidth)
	str("MOVIEBOX_CACHE_DEGRADED", &config.CacheDegraded)

	integer("MOVIEBOX_EXPORT_WORKERS", &config.ExportWorkers)
	integer("MOVIEBOX_EXPORT_QUEUE_SIZE", &config.ExportQueueSize)
	integer("MOVIEBOX_ARCHIVE_CHUNK_SIZE", &config.ArchiveChunkSize)
	duration("MOVIEBOX_JOB_TTL", &config.JobTTL)
	str("MOVIEBOX_SWEEP_SCHEDULE", &config.SweepSchedule)
	str("MOVIEBOX_JOURNAL_DSN", &config.JournalDSN)

	boolean("MOVIEBOX_S3_ENABLED", &config.S3Enabled)
	str("MINIO_ROOT_USER", &config.S3RootUser)
	str("MINIO_ROOT_PASSWORD", &config.S3RootPassword)
	str("MOVIEBOX_S3_BUCKET", &config.S3Bucket)
	str("MOVIEBOX_S3_REGION", &config.S3Region)
	str("MOVIEBOX_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	str("MOVIEBOX_LOG_LEVEL", &config.LogLevel)
	str("MOVIEBOX_LOG_FILE", &config.LogFile)
	boolean("MOVIEBOX_SHOW_QR", &config.ShowQR)
}
