// Command preslug prints student answer slips onto pre-printed scantron
// forms, from the command line or through its web server.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/preslug/internal/cli"
	"github.com/matzehuels/preslug/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	cancel()

	switch {
	case err == nil:
		return
	case stderrors.Is(err, context.Canceled):
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "preslug:", err)
	os.Exit(errors.ExitCode(err))
}
