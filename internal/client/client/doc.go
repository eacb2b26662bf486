// Package client talks to a moviebox server over its HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI: Ping,
// StartExport, ExportStatus, DownloadExport and Metadata. HTTPClient
// implements it with resty and maps HTTP status codes onto the sentinel
// errors from internal/common, so callers match them with errors.Is:
//
//	404 -> common.ErrNotFound
//	409 -> common.ErrNotReady
//	503 -> common.ErrBusy
//	400 -> common.ErrInvalidPath
//
// Network failures are reported as ErrUnavailable.
package client
