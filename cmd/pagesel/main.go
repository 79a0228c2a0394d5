package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/cli"
	"github.com/rshade/pagesel/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	if err := root.ExecuteContext(ctx); err != nil {
		return reportError(os.Stderr, err)
	}
	return 0
}

// reportError prints err and returns the process exit code.
// Fetch failures show the message the browser would show.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var fetchErr *artic.FetchError
	if errors.As(err, &fetchErr) {
		fmt.Fprintf(w, "error: %s\n", fetchErr.Message)
		return 1
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
