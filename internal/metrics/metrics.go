package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundlectl_build_failed",
			Help: "Number of times a build has failed",
		},
		[]string{"entry", "error_type"},
	)

	BuildCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bundlectl_build_count",
			Help: "Total number of builds performed",
		},
	)

	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bundlectl_build_duration_seconds",
			Help:    "Build duration in seconds",
			Buckets: []float64{0.1, 0.2, 0.5, 1, 1.5, 2, 5, 10, 30, 60},
		},
		[]string{"entry"},
	)

	LastBuildStart = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bundlectl_last_build_start_timestamp",
			Help: "Unix timestamp of when the last build started",
		},
		[]string{"entry"},
	)

	LastBuildEnd = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bundlectl_last_build_end_timestamp",
			Help: "Unix timestamp of when the last build ended",
		},
		[]string{"entry"},
	)

	EmittedAssets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bundlectl_emitted_assets",
			Help: "Number of assets emitted by the last successful build",
		},
		[]string{"entry"},
	)

	EmittedBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bundlectl_emitted_bytes",
			Help: "Total bytes emitted by the last successful build",
		},
		[]string{"entry"},
	)
)

func BuildSucceeded(entry string, startTime time.Time) {
	now := time.Now()
	BuildCount.Inc()
	BuildDuration.WithLabelValues(entry).Observe(now.Sub(startTime).Seconds())
	LastBuildStart.WithLabelValues(entry).Set(float64(startTime.Unix()))
	LastBuildEnd.WithLabelValues(entry).Set(float64(now.Unix()))
}

func BuildFailure(entry, errorType string) {
	BuildCount.Inc()
	BuildFailed.WithLabelValues(entry, errorType).Inc()
}
