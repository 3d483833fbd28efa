// Command isoconv converts both ISO 639 datasets. With CONVERT_AT set it keeps
// running, re-converts at the given times and can serve /health and /metrics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/giygas/iso639-converter/logging"
	"github.com/giygas/iso639-converter/runner"
)

func main() {
	cfg := runner.Bootstrap()

	// Cancelled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := runner.Run(ctx, cfg,
		runner.NewTwoLetterConverter(cfg),
		runner.NewThreeLetterConverter(cfg),
	)
	stop()

	_ = logging.Close()

	os.Exit(code)
}
