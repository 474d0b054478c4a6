package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storeradar/radar-service/internal/markers"
)

var (
	// cycles tracks recompute cycles by outcome.
	cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_recompute_cycles_total",
		Help: "Total number of recompute cycles by outcome",
	}, []string{"outcome"}) // outcome: applied, degraded, stale, fetch_error

	// cycleDuration tracks the time taken for a recompute cycle.
	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "radar_recompute_duration_seconds",
		Help:    "Time taken for a recompute cycle by resulting marker mode",
		Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
	}, []string{"mode"})

	// fetchErrors tracks catalog fetch errors.
	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_fetch_errors_total",
		Help: "Total number of catalog fetch errors by source",
	}, []string{"source"})

	// preferenceFallbacks tracks cycles that ranked with default weights after a failed fetch.
	preferenceFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radar_preference_fallbacks_total",
		Help: "Total number of cycles that fell back to default preference weights",
	})

	// candidateCount tracks the number of ranked candidates.
	candidateCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_candidates_count",
		Help:    "Number of candidate stores ranked per cycle",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500},
	})

	// visibleMarkers tracks the number of store markers after a cycle.
	visibleMarkers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_visible_markers_count",
		Help:    "Number of store markers visible after a cycle",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	})

	// markerChanges tracks marker churn.
	markerChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_marker_changes_total",
		Help: "Total number of marker changes by kind",
	}, []string{"kind"}) // kind: added, removed, retagged

	// topStoreDistance tracks the distance to the best ranked store.
	topStoreDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "radar_top_store_distance_km",
		Help:    "Distance to the top ranked store in kilometers",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
	})

	// userLocationRefreshes tracks user marker refreshes.
	userLocationRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radar_user_location_refreshes_total",
		Help: "Total number of user location marker refreshes by outcome",
	}, []string{"outcome"})

	// activeSessions tracks the number of live sessions.
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "radar_active_sessions",
		Help: "Number of active map sessions",
	})
)

// MetricsRecorder provides methods to record engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordCycle records a finished cycle.
func (m *MetricsRecorder) RecordCycle(outcome string, mode markers.Mode, duration time.Duration) {
	cycles.WithLabelValues(outcome).Inc()
	if mode != "" {
		cycleDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
	}
}

// RecordFetchError records a failed catalog fetch.
func (m *MetricsRecorder) RecordFetchError(source string) {
	fetchErrors.WithLabelValues(source).Inc()
}

// RecordPreferenceFallback records a cycle ranked with default weights.
func (m *MetricsRecorder) RecordPreferenceFallback() {
	preferenceFallbacks.Inc()
}

// RecordCandidates records the number of ranked candidates.
func (m *MetricsRecorder) RecordCandidates(count int) {
	candidateCount.Observe(float64(count))
}

// RecordApply records the marker set produced by a cycle.
func (m *MetricsRecorder) RecordApply(visible int, diff markers.Diff) {
	visibleMarkers.Observe(float64(visible))
	markerChanges.WithLabelValues("added").Add(float64(len(diff.Added)))
	markerChanges.WithLabelValues("removed").Add(float64(len(diff.Removed)))
	markerChanges.WithLabelValues("retagged").Add(float64(len(diff.Retagged)))
}

// RecordTopStoreDistance records the distance to the top ranked store.
func (m *MetricsRecorder) RecordTopStoreDistance(distanceKm float64) {
	topStoreDistance.Observe(distanceKm)
}

// RecordUserLocationRefresh records a user marker refresh.
func (m *MetricsRecorder) RecordUserLocationRefresh(success bool) {
	if success {
		userLocationRefreshes.WithLabelValues("success").Inc()
		return
	}
	userLocationRefreshes.WithLabelValues("error").Inc()
}

// SetActiveSessions records the number of live sessions.
func (m *MetricsRecorder) SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
