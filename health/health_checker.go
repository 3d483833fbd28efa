// Package health reports whether the generated documents are present and fresh.
package health

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/iso639-converter/interfaces"
)

// StaleAfter is the age after which a dataset is considered degraded.
// Conversions run at least once a day, so one missed run plus slack.
const StaleAfter = 25 * time.Hour

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

var severity = map[string]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store     interfaces.StatusStore
	datasets  []string
	convertAt string
	now       func() time.Time
}

// NewHealthChecker creates a health checker for the given datasets.
// convertAt is the CONVERT_AT schedule and may be empty.
func NewHealthChecker(store interfaces.StatusStore, datasets []string, convertAt string) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		store:     store,
		datasets:  datasets,
		convertAt: convertAt,
		now:       time.Now,
	}
}

// HealthCheck returns the worst status across datasets with per-dataset details.
// Used by the /health HTTP endpoint.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	status = StatusHealthy
	datasets := make(map[string]any, len(h.datasets))

	for _, dataset := range h.datasets {
		datasetStatus, details := h.checkDataset(dataset, now)
		datasets[dataset] = details
		if severity[datasetStatus] > severity[status] {
			status = datasetStatus
		}
	}

	httpStatus = http.StatusOK
	if status != StatusHealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	data = map[string]any{
		"datasets":     datasets,
		"is_updating":  h.store.IsUpdating(),
		"uptime_hours": roundHours(now.Sub(h.store.GetStartTime())),
	}
	if next, ok := NextConversion(h.convertAt, now); ok {
		data["next_conversion"] = next.Format(time.RFC3339)
	}

	return status, data, httpStatus
}

func (h *HealthCheckerImpl) checkDataset(dataset string, now time.Time) (string, map[string]any) {
	status, ok := h.store.GetStatus(dataset)
	if !ok {
		return StatusUnhealthy, map[string]any{"status": StatusUnhealthy, "error": "never converted"}
	}

	details := map[string]any{}
	if status.LastResult != nil {
		details["records"] = status.LastResult.Records
		details["output"] = status.LastResult.OutputPath
	}
	if !status.LastSuccess.IsZero() {
		age := now.Sub(status.LastSuccess)
		details["last_success"] = status.LastSuccess.Format(time.RFC3339)
		details["data_age_hours"] = roundHours(age)
	}

	var result string
	switch {
	case status.Failed():
		result = StatusUnhealthy
		details["error"] = status.LastError
	case now.Sub(status.LastSuccess) > StaleAfter:
		result = StatusDegraded
	default:
		result = StatusHealthy
	}

	details["status"] = result
	return result, details
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*10) / 10
}

// NextConversion returns the next time of the day listed in convertAt
// ("HH:MM;HH:MM") after now, in now's location
func NextConversion(convertAt string, now time.Time) (time.Time, bool) {
	var next time.Time
	found := false

	for _, entry := range strings.Split(convertAt, ";") {
		clock, err := time.Parse("15:04", strings.TrimSpace(entry))
		if err != nil {
			continue
		}

		candidate := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}

		if !found || candidate.Before(next) {
			next = candidate
			found = true
		}
	}

	return next, found
}
