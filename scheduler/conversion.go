package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/logging"
	"github.com/giygas/iso639-converter/metrics"
)

// ErrUpdateInProgress is returned by RunAll when another run holds the store
var ErrUpdateInProgress = errors.New("conversion already in progress")

// RunConversion runs one converter and records the outcome in store and the metrics
func RunConversion(converter interfaces.Converter, store interfaces.StatusStore) error {
	dataset := converter.Dataset()

	result, err := converter.Convert()
	if err != nil {
		metrics.RecordFailure(dataset)
		store.RecordFailure(dataset, err)
		return fmt.Errorf("%s conversion failed: %w", dataset, err)
	}

	metrics.RecordSuccess(result)
	store.RecordSuccess(result)
	return nil
}

// RunAll runs every converter in order, continuing past failures, and writes
// the metrics textfile when metricsFile is set. The returned error joins
// the errors of all failed conversions.
func RunAll(converters []interfaces.Converter, store interfaces.StatusStore, metricsFile string) error {
	// Prevent concurrent runs
	if !store.BeginUpdate() {
		logging.Info("Conversion already in progress, skipping...")
		return ErrUpdateInProgress
	}
	defer store.EndUpdate()

	start := time.Now()
	var errs []error

	for _, converter := range converters {
		if err := RunConversion(converter, store); err != nil {
			logging.Error("Conversion failed", "dataset", converter.Dataset(), "error", err)
			errs = append(errs, err)
		}
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			logging.Warn("Failed to export metrics", "error", err)
		}
	}

	logging.Debug("Conversion run finished",
		"datasets", len(converters),
		"failed", len(errs),
		"duration", time.Since(start))

	return errors.Join(errs...)
}
