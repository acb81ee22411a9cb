// Package metrics records orchestration metrics: cloud API calls, retry
// attempts and per-phase durations. Exposition is optional; long-running
// invocations can serve /metrics on a local address.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the pipeline's metric instruments. A nil Recorder is valid
// and records nothing, so call sites never need to guard.
type Recorder struct {
	registry *prometheus.Registry

	phaseDuration *prometheus.HistogramVec
	apiCalls      *prometheus.CounterVec
	retryAttempts *prometheus.CounterVec
	checkResults  *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pgha",
		Name:      "phase_duration_seconds",
		Help:      "Wall-clock duration of pipeline phases.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"phase", "outcome"})

	r.apiCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pgha",
		Name:      "platform_calls_total",
		Help:      "Calls issued to external platforms.",
	}, []string{"platform", "operation"})

	r.retryAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pgha",
		Name:      "retry_attempts_total",
		Help:      "Re-attempts performed by declared retry policies.",
	}, []string{"operation"})

	r.checkResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pgha",
		Name:      "validation_checks_total",
		Help:      "Validator check results by status.",
	}, []string{"check", "status"})

	r.registry.MustRegister(r.phaseDuration, r.apiCalls, r.retryAttempts, r.checkResults)
	return r
}

// ObservePhase records one phase execution.
func (r *Recorder) ObservePhase(phase string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.phaseDuration.WithLabelValues(phase, outcome).Observe(d.Seconds())
}

// CountCall records one external platform call.
func (r *Recorder) CountCall(platform, operation string) {
	if r == nil {
		return
	}
	r.apiCalls.WithLabelValues(platform, operation).Inc()
}

// CountRetry records one re-attempt of the named operation.
func (r *Recorder) CountRetry(operation string) {
	if r == nil {
		return
	}
	r.retryAttempts.WithLabelValues(operation).Inc()
}

// CountCheck records one validator check result.
func (r *Recorder) CountCheck(check, status string) {
	if r == nil {
		return
	}
	r.checkResults.WithLabelValues(check, status).Inc()
}

// Serve exposes /metrics on addr until the context is cancelled. It is
// best-effort: errors other than server shutdown are returned.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	if r == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Registry exposes the underlying registry, for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
