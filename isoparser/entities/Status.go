package entities

import "time"

// DatasetStatus is the latest known state of one dataset.
type DatasetStatus struct {
	Dataset     string            `json:"dataset"`
	LastResult  *ConversionResult `json:"last_result,omitempty"`
	LastError   string            `json:"last_error,omitempty"`
	LastAttempt time.Time         `json:"last_attempt"`
	LastSuccess time.Time         `json:"last_success"`
}

// Failed reports whether the latest attempt ended with an error.
func (s DatasetStatus) Failed() bool {
	return s.LastError != ""
}
