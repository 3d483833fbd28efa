// Command iso639-2 converts the pipe-delimited ISO 639-2 list into public/iso-639-2.json.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := runner.Run(ctx, cfg, runner.NewTwoLetterConverter(cfg))
	stop()

	_ = logging.Close()
	os.Exit(code)
}
