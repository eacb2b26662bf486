package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Export(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Meta(ctx context.Context, args []string) error
	Ping(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the moviebox CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The rest of the line is passed
// as a single argument so folder names may contain spaces. The loop exits on
// scanner EOF or when the user types "exit" or "quit".
//
//	help               show available commands
//	export <folder>    export a folder and download the archive
//	status <job id>    show export progress
//	download <job id>  download a finished export
//	meta <path>[/]     show metadata; a trailing slash marks a folder
//	ping               check the server
//	exit | quit        leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mb %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		var args []string
		if rest = strings.TrimSpace(rest); rest != "" {
			args = []string{rest}
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: export, status, download, meta, ping, exit")

		case "export":
			_ = a.Export(ctx, args)

		case "status":
			_ = a.Status(ctx, args)

		case "download":
			_ = a.Download(ctx, args)

		case "meta":
			_ = a.Meta(ctx, args)

		case "ping":
			_ = a.Ping(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
