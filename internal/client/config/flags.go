package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/moviebox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the server (default from Config)
//	-o string   download directory (default from Config)
//	-i int      status poll interval in milliseconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the moviebox server")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Milliseconds()), "status poll interval (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Millisecond
}
