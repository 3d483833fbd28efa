package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/iso639-converter/data"
	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConverter returns a fixed result or error and counts calls
type mockConverter struct {
	dataset string
	records int
	err     error
	calls   atomic.Int32
}

func (m *mockConverter) Dataset() string {
	return m.dataset
}

func (m *mockConverter) Convert() (entities.ConversionResult, error) {
	m.calls.Add(1)
	if m.err != nil {
		return entities.ConversionResult{}, m.err
	}
	return entities.ConversionResult{
		Dataset: m.dataset,
		Records: m.records,
		LastMod: time.Now(),
	}, nil
}

func TestRunConversionSuccess(t *testing.T) {
	store := data.NewStatusContainer()
	converter := &mockConverter{dataset: "sched-ok", records: 487}

	require.NoError(t, RunConversion(converter, store))

	status, ok := store.GetStatus("sched-ok")
	require.True(t, ok)
	assert.False(t, status.Failed())
	assert.Equal(t, 487, status.LastResult.Records)
}

func TestRunConversionFailure(t *testing.T) {
	store := data.NewStatusContainer()
	cause := errors.New("source file not found")
	converter := &mockConverter{dataset: "sched-fail", err: cause}

	err := RunConversion(converter, store)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "sched-fail conversion failed")

	status, ok := store.GetStatus("sched-fail")
	require.True(t, ok)
	assert.True(t, status.Failed())
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	store := data.NewStatusContainer()
	metricsFile := filepath.Join(t.TempDir(), "isoconv.prom")

	first := &mockConverter{dataset: "sched-a", err: errors.New("first broken")}
	second := &mockConverter{dataset: "sched-b", records: 10}
	third := &mockConverter{dataset: "sched-c", err: errors.New("third broken")}

	err := RunAll([]interfaces.Converter{first, second, third}, store, metricsFile)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "first broken")
	assert.Contains(t, err.Error(), "third broken")
	assert.EqualValues(t, 1, second.calls.Load(), "later converters still run")
	assert.False(t, store.IsUpdating(), "update flag is released")

	content, readErr := os.ReadFile(metricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), `isoconv_records_written{dataset="sched-b"} 10`)
}

func TestRunAllSkipsWhileUpdating(t *testing.T) {
	store := data.NewStatusContainer()
	require.True(t, store.BeginUpdate())

	converter := &mockConverter{dataset: "sched-busy"}
	err := RunAll([]interfaces.Converter{converter}, store, "")

	assert.ErrorIs(t, err, ErrUpdateInProgress)
	assert.Zero(t, converter.calls.Load())
	assert.True(t, store.IsUpdating(), "the running update keeps its flag")
}

func TestSchedulerStartAndStop(t *testing.T) {
	store := data.NewStatusContainer()
	converter := &mockConverter{dataset: "sched-start", records: 1}

	s := NewScheduler(store, []interfaces.Converter{converter}, "06:00;18:00", "")
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.EqualValues(t, 1, converter.calls.Load(), "initial conversion runs on start")
	assert.Len(t, s.scheduler.Jobs(), 1)

	status, ok := store.GetStatus("sched-start")
	require.True(t, ok)
	assert.False(t, status.Failed())
}

func TestSchedulerStartInitialFailure(t *testing.T) {
	store := data.NewStatusContainer()
	converter := &mockConverter{dataset: "sched-initial", err: errors.New("missing source")}

	s := NewScheduler(store, []interfaces.Converter{converter}, "06:00", "")
	err := s.Start()
	defer s.Stop()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial conversion failed")
	assert.Empty(t, s.scheduler.Jobs(), "nothing is scheduled after a failed initial run")
}

func TestSchedulerStartInvalidTime(t *testing.T) {
	store := data.NewStatusContainer()
	converter := &mockConverter{dataset: "sched-invalid"}

	s := NewScheduler(store, []interfaces.Converter{converter}, "25:99", "")
	err := s.Start()
	defer s.Stop()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule conversions")
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(data.NewStatusContainer(), nil, "06:00", "")

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestCheckStaleness(t *testing.T) {
	store := data.NewStatusContainer()
	fresh := &mockConverter{dataset: "stale-fresh"}
	old := &mockConverter{dataset: "stale-old"}
	never := &mockConverter{dataset: "stale-never"}

	require.NoError(t, RunConversion(fresh, store))
	require.NoError(t, RunConversion(old, store))

	s := NewScheduler(store, []interfaces.Converter{fresh, old, never}, "06:00", "")
	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, []string{"stale-never"}, s.checkStaleness())

	s.now = func() time.Time { return time.Now().Add(26 * time.Hour) }
	assert.Equal(t, []string{"stale-fresh", "stale-old", "stale-never"}, s.checkStaleness())
}
