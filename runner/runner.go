// Package runner wires configuration, logging, converters, scheduling and the
// status server together for the command entry points.
package runner

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/giygas/iso639-converter/config"
	"github.com/giygas/iso639-converter/data"
	"github.com/giygas/iso639-converter/health"
	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/isoparser"
	"github.com/giygas/iso639-converter/logging"
	"github.com/giygas/iso639-converter/scheduler"
	"github.com/giygas/iso639-converter/server"
	"github.com/giygas/iso639-converter/validation"
)

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
)

const shutdownTimeout = 30 * time.Second

// Setup loads the configuration and initializes logging
func Setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.InitLogger(cfg)
	return cfg, nil
}

// Bootstrap is Setup for main functions: invalid configuration ends the process
func Bootstrap() *config.Config {
	cfg, err := Setup()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(ExitFailure)
	}
	return cfg
}

// NewTwoLetterConverter builds the ISO 639-2 converter from cfg
func NewTwoLetterConverter(cfg *config.Config) *isoparser.TwoLetterConverter {
	return isoparser.NewTwoLetterConverter(cfg.TwoLetterSource, cfg.TwoLetterOutput, validation.NewDataValidator())
}

// NewThreeLetterConverter builds the ISO 639-3 converter from cfg
func NewThreeLetterConverter(cfg *config.Config) *isoparser.ThreeLetterConverter {
	return isoparser.NewThreeLetterConverter(isoparser.ThreeLetterSources{
		Codes:          cfg.ThreeLetterSource,
		Macrolanguages: cfg.MacrolanguageSource,
		NameIndex:      cfg.NameIndexSource,
		Retirements:    cfg.RetirementsSource,
	}, cfg.ThreeLetterOutput, validation.NewDataValidator())
}

// Run converts once, or keeps converting on schedule until ctx is done when
// CONVERT_AT is set. It returns the process exit code.
func Run(ctx context.Context, cfg *config.Config, converters ...interfaces.Converter) int {
	store := data.NewStatusContainer()

	if cfg.Scheduled() {
		return RunScheduled(ctx, cfg, store, converters)
	}
	return RunOnce(cfg, store, converters)
}

// RunOnce runs every converter once; any failure gives ExitFailure
func RunOnce(cfg *config.Config, store interfaces.StatusStore, converters []interfaces.Converter) int {
	// Each failed dataset is already logged by RunAll
	if err := scheduler.RunAll(converters, store, cfg.MetricsFile); err != nil {
		return ExitFailure
	}
	return ExitOK
}

// RunScheduled runs the initial conversion, then converts at the CONVERT_AT
// times and serves the status endpoints until ctx is done
func RunScheduled(ctx context.Context, cfg *config.Config, store interfaces.StatusStore, converters []interfaces.Converter) int {
	s := scheduler.NewScheduler(store, converters, cfg.ConvertAt, cfg.MetricsFile)
	if err := s.Start(); err != nil {
		s.Stop()
		return ExitFailure
	}
	defer s.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var statusServer *server.Server
	var serverFailed atomic.Bool
	if cfg.StatusServerEnabled() {
		datasets := make([]string, 0, len(converters))
		for _, converter := range converters {
			datasets = append(datasets, converter.Dataset())
		}

		statusServer = server.NewServer(cfg, health.NewHealthChecker(store, datasets, cfg.ConvertAt))
		go func() {
			if err := statusServer.Start(); err != nil {
				logging.Error("Status server failed", "error", err)
				serverFailed.Store(true)
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logging.Info("Stopping scheduled conversions...")

	if statusServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			return ExitFailure
		}
	}

	if serverFailed.Load() {
		return ExitFailure
	}
	return ExitOK
}
