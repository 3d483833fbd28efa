// Command iso639-3 converts the ISO 639-3 code and macrolanguage tables into public/iso-639-3.json.
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
	code := runner.Run(ctx, cfg, runner.NewThreeLetterConverter(cfg))
	stop()

	_ = logging.Close()
	os.Exit(code)
}
