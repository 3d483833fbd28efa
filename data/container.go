// Package data keeps the outcome of conversion runs for the scheduler and the status server.
// StatusContainer swaps immutable snapshots through atomics so readers never block.
package data

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/giygas/iso639-converter/logging"
)

// Compile-time check to ensure StatusContainer implements StatusStore
var _ interfaces.StatusStore = (*StatusContainer)(nil)

// StatusContainer holds the latest status of every dataset
type StatusContainer struct {
	statuses  atomic.Value // map[string]entities.DatasetStatus, never mutated after Store
	writeMu   sync.Mutex   // serializes copy-on-write updates
	updating  atomic.Bool
	startTime atomic.Value // time.Time
	now       func() time.Time
}

// NewStatusContainer creates an empty container started now
func NewStatusContainer() *StatusContainer {
	sc := &StatusContainer{now: time.Now}
	sc.statuses.Store(make(map[string]entities.DatasetStatus))
	sc.startTime.Store(sc.now())
	return sc
}

func (sc *StatusContainer) snapshot() map[string]entities.DatasetStatus {
	if v := sc.statuses.Load(); v != nil {
		if statuses, ok := v.(map[string]entities.DatasetStatus); ok {
			return statuses
		}
	}

	logging.Warn("Status map is empty or invalid")
	return map[string]entities.DatasetStatus{}
}

// GetStatus returns the status of dataset and whether it was ever attempted
func (sc *StatusContainer) GetStatus(dataset string) (entities.DatasetStatus, bool) {
	status, ok := sc.snapshot()[dataset]
	return status, ok
}

// IsUpdating returns true if a conversion run is in progress
func (sc *StatusContainer) IsUpdating() bool {
	return sc.updating.Load()
}

// GetStartTime returns when the container was created
func (sc *StatusContainer) GetStartTime() time.Time {
	if v := sc.startTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the start time value")
	return time.Time{}
}

// update applies fn to a copy of the dataset's status and publishes the new map
func (sc *StatusContainer) update(dataset string, fn func(*entities.DatasetStatus)) {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	current := sc.snapshot()
	next := make(map[string]entities.DatasetStatus, len(current)+1)
	for k, v := range current {
		next[k] = v
	}

	status := next[dataset]
	status.Dataset = dataset
	fn(&status)
	next[dataset] = status

	sc.statuses.Store(next)
}

// RecordSuccess stores a finished run and clears any previous error
func (sc *StatusContainer) RecordSuccess(result entities.ConversionResult) {
	now := sc.now()
	sc.update(result.Dataset, func(status *entities.DatasetStatus) {
		status.LastResult = &result
		status.LastError = ""
		status.LastAttempt = now
		status.LastSuccess = now
	})
}

// RecordFailure stores the error of a failed run, keeping the last good result
func (sc *StatusContainer) RecordFailure(dataset string, err error) {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}

	now := sc.now()
	sc.update(dataset, func(status *entities.DatasetStatus) {
		status.LastError = message
		status.LastAttempt = now
	})
}

// BeginUpdate marks the start of a conversion run
// Returns true if the run can proceed, false if another run is in progress
func (sc *StatusContainer) BeginUpdate() bool {
	return sc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a conversion run
func (sc *StatusContainer) EndUpdate() {
	sc.updating.Store(false)
}
