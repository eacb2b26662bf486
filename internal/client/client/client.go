package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/moviebox/internal/metadata"
)

// ExportStatus is the polled state of an export job.
type ExportStatus struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// Done reports whether the job reached a final state.
func (s ExportStatus) Done() bool {
	return s.Status == "ready" || s.Status == "error"
}

type Client interface {
	Ping(ctx context.Context) error
	StartExport(ctx context.Context, path string) (string, error)
	ExportStatus(ctx context.Context, id string) (ExportStatus, error)
	// DownloadExport writes the archive to w and returns the file name the
	// server suggested.
	DownloadExport(ctx context.Context, id string, w io.Writer) (string, error)
	Metadata(ctx context.Context, name, dir string, isDir bool) (*metadata.Record, error)
}
