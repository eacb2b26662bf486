package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/moviebox/internal/flagx"
	"github.com/dmitrijs2005/moviebox/internal/timex"
)

// JsonConfig is the DTO read from the JSON config file. Durations use
// timex.Duration so both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr  string `json:"http_addr"`
	PublicURL string `json:"public_url"`
	SharedDir string `json:"shared_dir"`
	TempDir   string `json:"temp_dir"`

	CatalogBaseURL      string         `json:"catalog_base_url"`
	CatalogImageBaseURL string         `json:"catalog_image_base_url"`
	CatalogImageSize    string         `json:"catalog_image_size"`
	CatalogAPIKey       string         `json:"tmdb_api_key"`
	CatalogTimeout      timex.Duration `json:"catalog_timeout"`
	CatalogRateLimit    float64        `json:"catalog_rate_limit"`
	PosterMaxWidth      int            `json:"poster_max_width"`
	CacheDegraded       string         `json:"cache_degraded"`

	ExportWorkers    int            `json:"export_workers"`
	ExportQueueSize  int            `json:"export_queue_size"`
	ArchiveChunkSize int            `json:"archive_chunk_size"`
	JobTTL           timex.Duration `json:"job_ttl"`
	SweepSchedule    string         `json:"sweep_schedule"`
	JournalDSN       string         `json:"journal_dsn"`

	S3Enabled      bool   `json:"s3_enabled"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
	ShowQR   bool   `json:"show_qr"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:            c.HTTPAddr,
		PublicURL:           c.PublicURL,
		SharedDir:           c.SharedDir,
		TempDir:             c.TempDir,
		CatalogBaseURL:      c.CatalogBaseURL,
		CatalogImageBaseURL: c.CatalogImageBaseURL,
		CatalogImageSize:    c.CatalogImageSize,
		CatalogAPIKey:       c.CatalogAPIKey,
		CatalogTimeout:      timex.Duration{Duration: c.CatalogTimeout},
		CatalogRateLimit:    c.CatalogRateLimit,
		PosterMaxWidth:      c.PosterMaxWidth,
		CacheDegraded:       c.CacheDegraded,
		ExportWorkers:       c.ExportWorkers,
		ExportQueueSize:     c.ExportQueueSize,
		ArchiveChunkSize:    c.ArchiveChunkSize,
		JobTTL:              timex.Duration{Duration: c.JobTTL},
		SweepSchedule:       c.SweepSchedule,
		JournalDSN:          c.JournalDSN,
		S3Enabled:           c.S3Enabled,
		S3RootUser:          c.S3RootUser,
		S3RootPassword:      c.S3RootPassword,
		S3Bucket:            c.S3Bucket,
		S3Region:            c.S3Region,
		S3BaseEndpoint:      c.S3BaseEndpoint,
		LogLevel:            c.LogLevel,
		LogFile:             c.LogFile,
		ShowQR:              c.ShowQR,
	}
}

// parseJson overlays the JSON file named by -c/-config onto config. Keys
// missing from the file keep their current values. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.PublicURL = c.PublicURL
	config.SharedDir = c.SharedDir
	config.TempDir = c.TempDir
	config.CatalogBaseURL = c.CatalogBaseURL
	config.CatalogImageBaseURL = c.CatalogImageBaseURL
	config.CatalogImageSize = c.CatalogImageSize
	config.CatalogAPIKey = c.CatalogAPIKey
	config.CatalogTimeout = c.CatalogTimeout.Duration
	config.CatalogRateLimit = c.CatalogRateLimit
	config.PosterMaxWidth = c.PosterMaxWidth
	config.CacheDegraded = c.CacheDegraded
	config.ExportWorkers = c.ExportWorkers
	config.ExportQueueSize = c.ExportQueueSize
	config.ArchiveChunkSize = c.ArchiveChunkSize
	config.JobTTL = c.JobTTL.Duration
	config.SweepSchedule = c.SweepSchedule
	config.JournalDSN = c.JournalDSN
	config.S3Enabled = c.S3Enabled
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.LogLevel = c.LogLevel
	config.LogFile = c.LogFile
	config.ShowQR = c.ShowQR
}
