// Package server wires the moviebox components together and runs them:
// the HTTP API, the export worker pool, the expiry sweep and the journal.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/moviebox/internal/archive"
	"github.com/dmitrijs2005/moviebox/internal/catalog"
	"github.com/dmitrijs2005/moviebox/internal/filex"
	"github.com/dmitrijs2005/moviebox/internal/jobs"
	"github.com/dmitrijs2005/moviebox/internal/logging"
	"github.com/dmitrijs2005/moviebox/internal/metadata"
	"github.com/dmitrijs2005/moviebox/internal/netx"
	"github.com/dmitrijs2005/moviebox/internal/server/api"
	"github.com/dmitrijs2005/moviebox/internal/server/config"
	"github.com/dmitrijs2005/moviebox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviebox/internal/storage"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	jobs         *jobs.Manager
	http         *api.HTTPServer
	closeJournal func() error
	out          io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.LogFile)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	root, err := filex.EnsureDir(c.SharedDir)
	if err != nil {
		return nil, fmt.Errorf("shared dir: %w", err)
	}
	tempDir, err := filex.EnsureDir(c.TempDir)
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}

	if c.PublicURL == "" {
		c.PublicURL = netx.PublicURL(c.HTTPAddr)
	}

	fs := afero.NewOsFs()

	store, err := newStore(ctx, c, fs)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	journal, closeJournal, err := repomanager.Open(ctx, c.JournalDSN)
	if err != nil {
		return nil, fmt.Errorf("journal init error: %w", err)
	}

	cat := catalog.New(catalog.Config{
		BaseURL:       c.CatalogBaseURL,
		ImageBaseURL:  c.CatalogImageBaseURL,
		ImageSize:     c.CatalogImageSize,
		APIKey:        c.CatalogAPIKey,
		Timeout:       c.CatalogTimeout,
		RateLimit:     c.CatalogRateLimit,
		MaxImageWidth: c.PosterMaxWidth,
	})
	if !cat.Configured() {
		logger.Warn(ctx, "TMDB API key is not set, metadata will contain parsed titles only")
	}

	meta := metadata.NewService(fs, root, cat, metadata.ParsePolicy(c.CacheDegraded), logger)

	manager := jobs.NewManager(fs, archive.NewBuilder(fs, c.ArchiveChunkSize), store, journal, logger, jobs.Options{
		TempDir:   tempDir,
		Workers:   c.ExportWorkers,
		QueueSize: c.ExportQueueSize,
		TTL:       c.JobTTL,
	})

	httpServer := api.NewHTTPServer(c.HTTPAddr, logger, fs, root, c.PublicURL, manager, meta)

	return &App{
		config:       c,
		logger:       logger,
		jobs:         manager,
		http:         httpServer,
		closeJournal: closeJournal,
		out:          os.Stdout,
	}, nil
}

// newStore picks where finished archives live: S3 when enabled, otherwise
// they stay in the temp dir.
func newStore(ctx context.Context, c *config.Config, fs afero.Fs) (storage.Store, error) {
	if !c.S3Enabled {
		return storage.NewLocalStore(fs), nil
	}
	return storage.NewS3Store(ctx, fs, storage.S3Config{
		Region:       c.S3Region,
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// startSweeper schedules the expiry sweep of finished exports.
func (app *App) startSweeper(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(app.config.SweepSchedule, func() {
		if n := app.jobs.Sweep(ctx, time.Now()); n > 0 {
			app.logger.Info(ctx, "expired exports removed", "count", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", app.config.SweepSchedule, err)
	}

	c.Start()
	return c, nil
}

func (app *App) printBanner() {
	fmt.Fprintf(app.out, "moviebox is serving %s\n", app.config.PublicURL)

	qr, err := renderQR(app.config.PublicURL)
	if err != nil {
		app.logger.Warn(context.Background(), "cannot render QR code", "error", err)
		return
	}
	fmt.Fprint(app.out, qr)
}

// Run blocks until ctx is cancelled or a signal arrives, then stops the HTTP
// server, the sweep and the workers, and closes the journal.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	n, err := app.jobs.Reconcile(ctx)
	if err != nil {
		app.logger.Warn(ctx, "journal reconcile failed", "error", err)
	} else if n > 0 {
		app.logger.Info(ctx, "stale exports from previous run removed", "count", n)
	}

	sweeper, err := app.startSweeper(ctx)
	if err != nil {
		app.jobs.Shutdown()
		_ = app.closeJournal()
		return err
	}

	if app.config.ShowQR {
		app.printBanner()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.http.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		<-sweeper.Stop().Done()
		app.jobs.Shutdown()
		return nil
	})

	err = g.Wait()

	if cerr := app.closeJournal(); cerr != nil {
		app.logger.Error(ctx, "journal close", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
