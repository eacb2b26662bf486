package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/moviebox/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-url string public URL shown in the QR code
//	-r string   shared media root
//	-t string   temp dir for export archives
//	-k string   TMDB API key
//	-w int      export workers
//	-q int      export queue size
//	-ttl int    finished export lifetime, minutes
//	-d string   journal DSN (postgres:// URL or SQLite file)
//	-s3 bool    store archives in S3
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-ep string  S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//	-qr bool    print the QR banner
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so -c/-e handled elsewhere do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-url", "-r", "-t", "-k", "-w", "-q", "-ttl", "-d",
		"-s3", "-u", "-p", "-b", "-g", "-ep", "-l", "-qr",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.PublicURL, "url", config.PublicURL, "public server URL")
	fs.StringVar(&config.SharedDir, "r", config.SharedDir, "shared media root")
	fs.StringVar(&config.TempDir, "t", config.TempDir, "temp dir for export archives")
	fs.StringVar(&config.CatalogAPIKey, "k", config.CatalogAPIKey, "TMDB API key")
	fs.IntVar(&config.ExportWorkers, "w", config.ExportWorkers, "export workers")
	fs.IntVar(&config.ExportQueueSize, "q", config.ExportQueueSize, "export queue size")

	jobTTL := fs.Int("ttl", int(config.JobTTL.Minutes()), "finished export lifetime (in minutes)")

	fs.StringVar(&config.JournalDSN, "d", config.JournalDSN, "journal DSN")
	fs.BoolVar(&config.S3Enabled, "s3", config.S3Enabled, "store archives in S3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "ep", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.ShowQR, "qr", config.ShowQR, "print QR banner")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.JobTTL = time.Duration(*jobTTL) * time.Minute
}
