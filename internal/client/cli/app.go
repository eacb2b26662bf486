package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviebox/internal/client/client"
	"github.com/dmitrijs2005/moviebox/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	api    client.Client

	mu   sync.Mutex
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerURL == "" {
		return nil, fmt.Errorf("server URL is not configured")
	}
	return &App{config: c, api: client.NewHTTPClient(c.ServerURL)}, nil
}

func (app *App) setMode(mode Mode) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.mode != mode {
		app.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (app *App) getStatus() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.mode == "" {
		return app.config.ServerURL
	}
	return fmt.Sprintf("%s (%s)", app.config.ServerURL, app.mode)
}

// Run starts the connectivity watcher and the REPL on stdin.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to moviebox CLI (type 'help' for commands)")

	go app.StartOnlineStatusWatcher(ctx, 5*time.Second)

	runREPL(ctx, app, app.getStatus, bufio.NewScanner(os.Stdin))
}

func (app *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := app.api.Ping(pctx)
			cancel()

			if err != nil {
				app.setMode(ModeOffline)
			} else {
				app.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
