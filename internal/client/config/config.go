package config

import "time"

// Config holds runtime settings for the moviebox CLI.
//
// Fields:
//   - ServerURL: base URL of the moviebox server.
//   - DownloadDir: where retrieved archives are saved.
//   - PollInterval: how often export status is polled while waiting.
type Config struct {
	ServerURL    string
	DownloadDir  string
	PollInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DownloadDir = "downloads"
	c.PollInterval = 1 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
