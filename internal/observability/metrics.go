// Package observability exposes the engine's prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsSynced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "workouts_synced_total",
		Help:      "Workouts successfully applied, labelled by flow.",
	}, []string{"flow"})

	workoutFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "workout_failures_total",
		Help:      "Workouts skipped after an error, labelled by flow.",
	}, []string{"flow"})

	fallbackSets = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "transcribe",
		Name:      "fallback_sets_total",
		Help:      "Placeholder sets substituted when the oracle could not parse.",
	})

	watermarkGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "last_watermark_timestamp_seconds",
		Help:      "Unix timestamp of the last committed watermark, labelled by category.",
	}, []string{"category"})
)

func init() {
	prometheus.MustRegister(workoutsSynced, workoutFailures, fallbackSets, watermarkGauge)
}

// RecordWorkoutSynced counts one applied workout for a flow.
func RecordWorkoutSynced(flow string) {
	workoutsSynced.WithLabelValues(flow).Inc()
}

// RecordWorkoutFailure counts one skipped workout for a flow.
func RecordWorkoutFailure(flow string) {
	workoutFailures.WithLabelValues(flow).Inc()
}

// RecordFallbackSet counts one substituted placeholder set.
func RecordFallbackSet() {
	fallbackSets.Inc()
}

// RecordWatermark updates the committed-watermark gauge.
func RecordWatermark(category string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	watermarkGauge.WithLabelValues(category).Set(float64(ts.Unix()))
}
