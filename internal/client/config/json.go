package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/moviebox/internal/flagx"
	"github.com/dmitrijs2005/moviebox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	DownloadDir  string         `json:"download_dir"`
	PollInterval timex.Duration `json:"poll_interval"`
}

// parseJson overlays cfg with values loaded from the JSON file named by -c
// or -config. Keys absent from the file keep their current values. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		ServerURL:    cfg.ServerURL,
		DownloadDir:  cfg.DownloadDir,
		PollInterval: timex.Duration{Duration: cfg.PollInterval},
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.DownloadDir = jc.DownloadDir
	cfg.PollInterval = jc.PollInterval.Duration
}
