// Package storage publishes finished export archives and serves them back.
//
// A Store turns a freshly built local file into a location string that can
// later be opened or removed. LocalStore keeps the file where it is; S3Store
// uploads it to an S3-compatible bucket (such as MinIO) and drops the local
// copy.
package storage

import (
	"context"
	"io"
)

type Store interface {
	// Publish takes ownership of the file at localPath and returns its location.
	Publish(ctx context.Context, localPath string) (string, error)
	// Open returns the artifact body and its size in bytes.
	Open(ctx context.Context, location string) (io.ReadCloser, int64, error)
	// Remove deletes the artifact. Removing a missing artifact is not an error.
	Remove(ctx context.Context, location string) error
}
