// Package config handles configuration for the moviebox server, including
// defaults, a dotenv/environment layer, a JSON overlay and command-line
// flags, applied in that order.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the moviebox server.
//
// Fields:
//   - HTTPAddr / PublicURL: bind address and the URL advertised in the QR code;
//     an empty PublicURL is derived from HTTPAddr and the LAN address.
//   - SharedDir / TempDir: media root and the scratch area for export archives.
//   - Catalog*: TMDB-compatible metadata catalog access and pacing.
//   - CacheDegraded: "keep" or "refetch" for records built without catalog data.
//   - Export*, ArchiveChunkSize: worker pool sizing and archive copy chunk.
//   - JobTTL / SweepSchedule: expiry of finished exports and the cron spec
//     that triggers the sweep.
//   - JournalDSN: postgres:// URL or SQLite file for the export journal;
//     empty disables it.
//   - S3*: optional S3-compatible artifact storage (MinIO in development).
type Config struct {
	HTTPAddr  string
	PublicURL string
	SharedDir string
	TempDir   string

	CatalogBaseURL      string
	CatalogImageBaseURL string
	CatalogImageSize    string
	CatalogAPIKey       string
	CatalogTimeout      time.Duration
	CatalogRateLimit    float64
	PosterMaxWidth      int
	CacheDegraded       string

	ExportWorkers    int
	ExportQueueSize  int
	ArchiveChunkSize int
	JobTTL           time.Duration
	SweepSchedule    string
	JournalDSN       string

	S3Enabled      bool
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	LogLevel string
	LogFile  string
	ShowQR   bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: the S3 credentials are MinIO defaults and must be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.PublicURL = ""
	c.SharedDir = "shared"
	c.TempDir = filepath.Join(os.TempDir(), "moviebox")

	c.CatalogBaseURL = "https://api.themoviedb.org/3"
	c.CatalogImageBaseURL = "https://image.tmdb.org/t/p"
	c.CatalogImageSize = "w500"
	c.CatalogAPIKey = ""
	c.CatalogTimeout = 3 * time.Second
	c.CatalogRateLimit = 20
	c.PosterMaxWidth = 500
	c.CacheDegraded = "keep"

	c.ExportWorkers = 2
	c.ExportQueueSize = 64
	c.ArchiveChunkSize = 10 << 20
	c.JobTTL = 1 * time.Hour
	c.SweepSchedule = "@every 10m"
	c.JournalDSN = ""

	c.S3Enabled = false
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "exports"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"

	c.LogLevel = "info"
	c.LogFile = ""
	c.ShowQR = true
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
