// Package interfaces defines core abstractions for the ISO 639 converters
// to improve testability and separation of concerns.
package interfaces

import (
	"time"

	"github.com/giygas/iso639-converter/isoparser/entities"
)

// DataQualityReport provides a summary of data quality issues.
// Issues are reported only; no record is dropped because of them.
type DataQualityReport struct {
	Dataset                       string
	InvalidCodes                  []string // primary codes that are not three lowercase letters
	InvalidAlpha2                 []string // alpha_2 values that are set but not two lowercase letters
	DuplicateCodes                []string
	MacrolanguagesWithoutChildren []string
	ChildrenWithoutEntry          []string // listed as children but absent from the code table
	ChildrenOfNonMacrolanguage    []string
}

// HasIssues reports whether any check found something.
func (r *DataQualityReport) HasIssues() bool {
	return len(r.InvalidCodes) > 0 ||
		len(r.InvalidAlpha2) > 0 ||
		len(r.DuplicateCodes) > 0 ||
		len(r.MacrolanguagesWithoutChildren) > 0 ||
		len(r.ChildrenWithoutEntry) > 0 ||
		len(r.ChildrenOfNonMacrolanguage) > 0
}

// Converter turns one dataset's source files into its JSON document.
type Converter interface {
	// Dataset returns the dataset name, e.g. "iso-639-2"
	Dataset() string

	// Convert reads the sources and writes the output document
	Convert() (entities.ConversionResult, error)
}

// StatusStore keeps the outcome of conversion runs.
// It provides thread-safe access for the scheduler and the status server.
type StatusStore interface {
	// Data retrieval methods
	GetStatus(dataset string) (entities.DatasetStatus, bool)
	IsUpdating() bool
	GetStartTime() time.Time

	// Data update methods
	RecordSuccess(result entities.ConversionResult)
	RecordFailure(dataset string, err error)
	BeginUpdate() bool
	EndUpdate()
}

// Scheduler defines the contract for scheduled re-conversion.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current status, details and the matching HTTP status code
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator defines the contract for data quality checks.
type DataValidator interface {
	ReportTwoLetterQuality(records []entities.TwoLetterLanguage) *DataQualityReport
	ReportThreeLetterQuality(records []entities.ThreeLetterLanguage) *DataQualityReport
}
