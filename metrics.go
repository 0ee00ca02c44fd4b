package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type buildMetrics struct {
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	stageDuration *prometheus.HistogramVec
}

// newBuildMetrics registers the build collectors with reg.
func newBuildMetrics(reg prometheus.Registerer) *buildMetrics {
	m := &buildMetrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitesmith",
			Name:      "builds_total",
			Help:      "Site builds by result.",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sitesmith",
			Name:      "build_duration_seconds",
			Help:      "Wall time of complete builds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitesmith",
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"stage"}),
	}
	reg.MustRegister(m.builds, m.buildDuration, m.stageDuration)
	return m
}

func (m *buildMetrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *buildMetrics) observeBuild(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(d.Seconds())
}
