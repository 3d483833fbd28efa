package entities

import "time"

// LastModLayout is the timestamp layout of Envelope.LastMod (UTC, milliseconds).
const LastModLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the top-level shape of every generated JSON document.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	LastMod string `json:"lastmod"`
	Data    []T    `json:"data"`
}

// NewEnvelope wraps records in a successful envelope stamped with t.
func NewEnvelope[T any](records []T, t time.Time) Envelope[T] {
	if records == nil {
		records = []T{}
	}
	return Envelope[T]{
		Success: true,
		LastMod: t.UTC().Format(LastModLayout),
		Data:    records,
	}
}

// SkipStats counts source lines that did not produce (or link) a record, by reason.
type SkipStats map[string]int

// Total returns the number of skipped lines across all reasons.
func (s SkipStats) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// ConversionResult describes one finished conversion run.
type ConversionResult struct {
	Dataset    string        `json:"dataset"`
	OutputPath string        `json:"output_path"`
	Records    int           `json:"records"`
	LastMod    time.Time     `json:"lastmod"`
	Duration   time.Duration `json:"duration"`
	Skipped    SkipStats     `json:"skipped"`
}
