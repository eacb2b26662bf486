// Package api is the HTTP surface of the server: media streaming, export
// jobs, cached metadata and artwork, and a QR code of the public URL.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/moviebox/internal/jobs"
	"github.com/dmitrijs2005/moviebox/internal/logging"
	"github.com/dmitrijs2005/moviebox/internal/metadata"
)

const shutdownTimeout = 5 * time.Second

// Exporter runs archive export jobs.
type Exporter interface {
	Start(ctx context.Context, sourcePath string) (string, error)
	Status(id string) (jobs.Job, error)
	Retrieve(ctx context.Context, id string) (*jobs.Artifact, error)
}

// MetadataProvider resolves display metadata for a file or folder.
type MetadataProvider interface {
	Get(ctx context.Context, name, folder string, isDir bool) metadata.Record
}

type HTTPServer struct {
	address   string
	publicURL string
	root      string
	fs        afero.Fs
	exports   Exporter
	meta      MetadataProvider
	logger    logging.Logger
	app       *fiber.App
}

// NewHTTPServer wires the routes. root is the shared media directory; every
// client-supplied path is resolved inside it.
func NewHTTPServer(a string, l logging.Logger, fs afero.Fs, root, publicURL string, ex Exporter, mp MetadataProvider) *HTTPServer {
	s := &HTTPServer{
		address:   a,
		publicURL: publicURL,
		root:      root,
		fs:        fs,
		exports:   ex,
		meta:      mp,
		logger:    l.With("module", "http_server"),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(s.requestLogger)

	app.Get("/health", s.Health)
	app.Get("/qr.png", s.QRCode)

	api := app.Group("/api")
	api.Get("/start_zip/*", s.StartExport)
	api.Get("/zip_status/:id", s.ExportStatus)
	api.Get("/download_zip_result/:id", s.DownloadExport)
	api.Get("/metadata", s.Metadata)

	app.Get("/metadata_img/*", s.MetadataImage)
	app.Get("/download/*", s.StreamFile)

	s.app = app
	return s
}

// App exposes the fiber app, mostly for app.Test.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.app.Listen(s.address); err != nil {
		return err
	}

	return nil
}
