package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviebox/internal/common"
	"github.com/dmitrijs2005/moviebox/internal/filex"
)

// Export starts an export of a folder and waits until the archive is
// downloaded.
func (app *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: export <folder>")
		return nil
	}

	id, err := app.api.StartExport(ctx, args[0])
	if err != nil {
		return app.report(err)
	}
	printlnFn("Export started, job", id)

	return app.wait(ctx, id)
}

func (app *App) wait(ctx context.Context, id string) error {
	ticker := time.NewTicker(app.config.PollInterval)
	defer ticker.Stop()

	last := -1
	for {
		st, err := app.api.ExportStatus(ctx, id)
		if err != nil {
			return app.report(err)
		}

		if st.Progress != last {
			printlnFn(fmt.Sprintf("%s %d%%", st.Status, st.Progress))
			last = st.Progress
		}

		switch st.Status {
		case "ready":
			return app.download(ctx, id)
		case "error":
			printlnFn("Export failed")
			return errors.New("export failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (app *App) Status(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: status <job id>")
		return nil
	}

	st, err := app.api.ExportStatus(ctx, args[0])
	if err != nil {
		return app.report(err)
	}
	printlnFn(fmt.Sprintf("%s %d%%", st.Status, st.Progress))
	return nil
}

func (app *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: download <job id>")
		return nil
	}
	return app.download(ctx, args[0])
}

// download saves the archive under the download directory. The server names
// it; a numeric suffix is added when the file already exists.
func (app *App) download(ctx context.Context, id string) error {
	dir, err := filex.EnsureDir(app.config.DownloadDir)
	if err != nil {
		return app.report(err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return app.report(err)
	}
	defer os.Remove(tmp.Name())

	name, err := app.api.DownloadExport(ctx, id, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return app.report(err)
	}

	dst := filex.UniquePath(dir, path.Base("/"+name))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return app.report(err)
	}

	printlnFn("Saved", dst)
	return nil
}

// Meta prints metadata for a file or folder given by its path in the shared
// root. A trailing slash marks a folder.
func (app *App) Meta(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: meta <path>[/]")
		return nil
	}

	p := args[0]
	isDir := len(p) > 1 && p[len(p)-1] == '/'
	clean := path.Clean("/" + p)

	rec, err := app.api.Metadata(ctx, path.Base(clean), path.Dir(clean)[1:], isDir)
	if err != nil {
		return app.report(err)
	}

	line := rec.Title
	if rec.Year != "" {
		line += " (" + rec.Year + ")"
	}
	if rec.Rating != nil {
		line += fmt.Sprintf(" ★ %.1f", *rec.Rating)
	}
	if rec.IsTV {
		line += " [TV]"
	}
	printlnFn(line)
	if rec.Overview != "" {
		printlnFn(rec.Overview)
	}
	if rec.Poster != nil {
		printlnFn("Poster:", strings.TrimRight(app.config.ServerURL, "/")+*rec.Poster)
	}
	return nil
}

func (app *App) Ping(ctx context.Context) error {
	if err := app.api.Ping(ctx); err != nil {
		app.setMode(ModeOffline)
		return app.report(err)
	}
	app.setMode(ModeOnline)
	printlnFn("Server is up")
	return nil
}

// report prints a short message for err and returns it.
func (app *App) report(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		printlnFn("Not found:", err)
	case errors.Is(err, common.ErrNotReady):
		printlnFn("Not ready yet, try again later")
	case errors.Is(err, common.ErrBusy):
		printlnFn("Server is busy, try again later")
	default:
		printlnFn("Error:", err)
	}
	return err
}
