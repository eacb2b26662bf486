// Package cli provides the interactive moviebox command-line client.
//
// It wires configuration and the HTTP API client into a REPL that exports
// folders from the server's shared root, waits for the archive and saves it
// locally, and looks up cached metadata. A background watcher pings the
// server and switches the prompt between online and offline.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
