// Package metrics provides Prometheus collectors for generation and HTTP traffic.
package metrics

import (
	"context"
	"time"

	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "promptarch"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generations_total",
			Help:      "Generation calls by provider, kind (document or section) and outcome",
		},
		[]string{"provider", "kind", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generation_duration_seconds",
			Help:      "Generation call latency in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "kind"},
	)
)

// Instrumented wraps a Generator and records call counts and latency.
type Instrumented struct {
	next     llm.Generator
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func Instrument(next llm.Generator) *Instrumented {
	return &Instrumented{next: next, total: GenerationsTotal, duration: GenerationDuration}
}

func (i *Instrumented) Name() string {
	return i.next.Name()
}

func (i *Instrumented) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	kind := "document"
	if req.IsSection() {
		kind = "section"
	}
	start := time.Now()
	resp, err := i.next.Generate(ctx, req)
	i.duration.WithLabelValues(i.next.Name(), kind).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	i.total.WithLabelValues(i.next.Name(), kind, status).Inc()
	return resp, err
}
