// Package metrics collects Prometheus metrics for simulation runs and writes
// them to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carbonsim"

// Recorder holds the simulation collectors on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	Simulations        *prometheus.CounterVec
	RevenueFallbacks   *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	ProjectionDuration prometheus.Histogram
	CumulativeRevenue  *prometheus.GaugeVec
	AbolishmentRisk    *prometheus.GaugeVec
}

// New creates a Recorder with every collector registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Simulations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulations run by policy type and outcome",
		}, []string{"policy_type", "outcome"}), // outcome: "ok", "error", "cached"

		RevenueFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_fallbacks_total",
			Help:      "Projection years where the revenue estimate was replaced by the fallback formula",
		}, []string{"country"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome",
		}, []string{"result"}), // result: "hit", "miss", "expired"

		ProjectionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "projection_duration_seconds",
			Help:      "Duration of a full multi-year projection",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		CumulativeRevenue: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cumulative_revenue_million_usd",
			Help:      "Cumulative revenue at the final projection year of the last run",
		}, []string{"country", "policy_type"}),

		AbolishmentRisk: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_abolishment_risk_percent",
			Help:      "Base-year abolishment risk of the last run",
		}, []string{"country", "policy_type"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// IncSimulation counts a finished simulation.
func (r *Recorder) IncSimulation(policyType, outcome string) {
	if r != nil {
		r.Simulations.WithLabelValues(policyType, outcome).Inc()
	}
}

// RevenueFallback counts a fallback year. It satisfies projection.Observer.
func (r *Recorder) RevenueFallback(country string, _ int) {
	if r != nil {
		r.RevenueFallbacks.WithLabelValues(country).Inc()
	}
}

// IncCacheLookup counts a cache lookup result.
func (r *Recorder) IncCacheLookup(result string) {
	if r != nil {
		r.CacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveProjection records how long a projection took.
func (r *Recorder) ObserveProjection(d time.Duration) {
	if r != nil {
		r.ProjectionDuration.Observe(d.Seconds())
	}
}

// SetLastRun records the headline figures of a run.
func (r *Recorder) SetLastRun(country, policyType string, cumulativeRevenue, riskPercent float64) {
	if r != nil {
		r.CumulativeRevenue.WithLabelValues(country, policyType).Set(cumulativeRevenue)
		r.AbolishmentRisk.WithLabelValues(country, policyType).Set(riskPercent)
	}
}

// WriteTextfile writes every collected metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
