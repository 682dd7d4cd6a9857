// Package metrics exports tool invocation metrics to Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Namespace prefixes every metric name.
const Namespace = "policy_reader"

// Ensure Recorder implements the interface.
var _ driven.Auditor = (*Recorder)(nil)

// Recorder is an Auditor that turns audit events into metrics.
type Recorder struct {
	gatherer prometheus.Gatherer

	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	documentBytes *prometheus.HistogramVec
	listedFiles   prometheus.Histogram
}

// NewRecorder registers the collectors with reg. A nil reg uses a fresh
// registry, so several recorders can coexist in tests.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool invocations",
			},
			[]string{"action", "status", "error_kind"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Tool invocation duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"action"},
		),
		documentBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "document_size_bytes",
				Help:      "Size of documents read, in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
			[]string{"format"},
		),
		listedFiles: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "listed_files",
				Help:      "Number of files returned by a listing",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

// Record updates the collectors for one invocation.
func (r *Recorder) Record(_ context.Context, e domain.AuditEvent) error {
	r.toolCalls.WithLabelValues(e.Action, e.Status, e.ErrorKind).Inc()
	r.toolDuration.WithLabelValues(e.Action).Observe(e.Duration.Seconds())

	if !e.Succeeded() {
		return nil
	}
	switch e.Action {
	case domain.ActionDocumentRead:
		r.documentBytes.WithLabelValues(e.Format).Observe(float64(e.Size))
	case domain.ActionDocumentsListed:
		r.listedFiles.Observe(float64(e.Count))
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
