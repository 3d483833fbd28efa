// Package scheduler re-runs the conversions on a daily schedule and warns when
// a dataset has not been converted successfully for too long.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/iso639-converter/health"
	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles scheduled conversions and staleness monitoring
type Scheduler struct {
	store           interfaces.StatusStore
	converters      []interfaces.Converter
	convertAt       string
	metricsFile     string
	scheduler       *gocron.Scheduler
	monitorInterval time.Duration
	stopMonitor     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewScheduler creates a scheduler running converters at the times of
// convertAt, a ";" separated list of HH:MM
func NewScheduler(store interfaces.StatusStore, converters []interfaces.Converter, convertAt, metricsFile string) *Scheduler {
	return &Scheduler{
		store:           store,
		converters:      converters,
		convertAt:       convertAt,
		metricsFile:     metricsFile,
		scheduler:       gocron.NewScheduler(time.Local),
		monitorInterval: time.Hour,
		stopMonitor:     make(chan struct{}),
		now:             time.Now,
	}
}

// Start performs the initial conversion, then schedules the next ones
func (s *Scheduler) Start() error {
	// Initial conversion, failed datasets are logged by RunAll
	if err := s.convert(); err != nil {
		return fmt.Errorf("initial conversion failed: %w", err)
	}

	// Failures are logged and recorded by RunAll
	_, err := s.scheduler.Every(1).Days().At(s.convertAt).Do(func() {
		_ = s.convert()
	})
	if err != nil {
		logging.Error("Failed to schedule conversions", "error", err, "convert_at", s.convertAt)
		return fmt.Errorf("failed to schedule conversions: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Conversions scheduled", "convert_at", s.convertAt)

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the staleness monitor
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.stopOnce.Do(func() { close(s.stopMonitor) })
}

// convert runs all converters; an overlapping run is not an error
func (s *Scheduler) convert() error {
	err := RunAll(s.converters, s.store, s.metricsFile)
	if errors.Is(err, ErrUpdateInProgress) {
		return nil
	}
	return err
}

// startHealthMonitoring warns about datasets without a recent successful conversion
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.monitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopMonitor:
				return
			case <-ticker.C:
				s.checkStaleness()
			}
		}
	}()
}

// checkStaleness returns the datasets whose last success is older than health.StaleAfter
func (s *Scheduler) checkStaleness() []string {
	var stale []string
	now := s.now()

	for _, converter := range s.converters {
		dataset := converter.Dataset()
		status, ok := s.store.GetStatus(dataset)
		if ok && now.Sub(status.LastSuccess) <= health.StaleAfter {
			continue
		}

		stale = append(stale, dataset)
		logging.Warn("Dataset hasn't been converted in over 25 hours", "dataset", dataset)
	}

	return stale
}
