// Package metrics provides Prometheus metrics for the converters and the status server.
//
// Conversion metrics, labelled by dataset:
//   - isoconv_records_written: Gauge with the record count of the last written document
//   - isoconv_lines_skipped_total: Counter with a reason label
//   - isoconv_conversions_total: Counter with a status label (success, failure)
//   - isoconv_conversion_duration_seconds: Histogram of conversion run time
//   - isoconv_last_success_timestamp_seconds: Gauge with the Unix time of the last success
//
// The HTTP metrics track requests to the status server. All metrics are
// registered with the Prometheus default registry during package initialization.
package metrics

import (
	"fmt"

	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	RecordsWritten = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "isoconv_records_written",
			Help: "Records written to the last generated document",
		},
		[]string{"dataset"},
	)

	LinesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isoconv_lines_skipped_total",
			Help: "Source lines that produced no record, by reason",
		},
		[]string{"dataset", "reason"},
	)

	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isoconv_conversions_total",
			Help: "Conversion runs by outcome",
		},
		[]string{"dataset", "status"},
	)

	ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isoconv_conversion_duration_seconds",
			Help:    "Conversion run time",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"dataset"},
	)

	LastSuccessTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "isoconv_last_success_timestamp_seconds",
			Help: "Unix time of the last successful conversion",
		},
		[]string{"dataset"},
	)

	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen in last ~5 minutes)",
		},
	)
)

func init() {
	prometheus.MustRegister(RecordsWritten)
	prometheus.MustRegister(LinesSkipped)
	prometheus.MustRegister(ConversionsTotal)
	prometheus.MustRegister(ConversionDuration)
	prometheus.MustRegister(LastSuccessTimestamp)
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}

// RecordSuccess updates the conversion metrics for a finished run
func RecordSuccess(result entities.ConversionResult) {
	RecordsWritten.WithLabelValues(result.Dataset).Set(float64(result.Records))
	ConversionsTotal.WithLabelValues(result.Dataset, StatusSuccess).Inc()
	ConversionDuration.WithLabelValues(result.Dataset).Observe(result.Duration.Seconds())
	LastSuccessTimestamp.WithLabelValues(result.Dataset).Set(float64(result.LastMod.Unix()))

	for reason, count := range result.Skipped {
		if count > 0 {
			LinesSkipped.WithLabelValues(result.Dataset, reason).Add(float64(count))
		}
	}
}

// RecordFailure counts a failed run for dataset
func RecordFailure(dataset string) {
	ConversionsTotal.WithLabelValues(dataset, StatusFailure).Inc()
}

// WriteTextfile writes the default registry to path in the text exposition
// format read by the node_exporter textfile collector
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
