// Package metrics exposes the Prometheus collectors of the farm service.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds every collector on a dedicated registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	conditionsRefreshTotal *prometheus.CounterVec
	fetchErrorsTotal       *prometheus.CounterVec
	fetchDuration          prometheus.Histogram
	recommendationsTotal   *prometheus.CounterVec
	reportsTotal           *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		conditionsRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farm_conditions_refresh_total",
				Help: "Total number of parcel condition refreshes",
			},
			[]string{"trigger", "status"},
		),
		fetchErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farm_geodata_fetch_errors_total",
				Help: "Total number of external data categories that could not be fetched",
			},
			[]string{"category"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "farm_geodata_fetch_duration_seconds",
				Help:    "Time taken to fetch external conditions for a parcel",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		recommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farm_recommendations_served_total",
				Help: "Total number of crop recommendation lists served",
			},
			[]string{"cache"},
		),
		reportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "farm_balance_reports_total",
				Help: "Total number of weekly balance reports generated",
			},
			[]string{"status"},
		),
	}

	m.registry = prometheus.NewRegistry()

	collectors := []prometheus.Collector{
		m.conditionsRefreshTotal,
		m.fetchErrorsTotal,
		m.fetchDuration,
		m.recommendationsTotal,
		m.reportsTotal,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// RecordRefresh counts one refresh of a parcel. trigger is "manual",
// "revert" or "scheduled".
func (m *Metrics) RecordRefresh(trigger string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.conditionsRefreshTotal.WithLabelValues(trigger, status).Inc()
}

// RecordFetch observes one external fetch and its failed categories.
func (m *Metrics) RecordFetch(duration time.Duration, failed []string) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(duration.Seconds())
	for _, category := range failed {
		m.fetchErrorsTotal.WithLabelValues(category).Inc()
	}
}

// RecordRecommendations counts a served recommendation list.
func (m *Metrics) RecordRecommendations(cacheHit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	m.recommendationsTotal.WithLabelValues(label).Inc()
}

// RecordReport counts a weekly report run.
func (m *Metrics) RecordReport(err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.reportsTotal.WithLabelValues(status).Inc()
}
