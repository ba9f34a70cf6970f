package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "carbontrackr",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	summariesGeneratedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbontrackr",
		Subsystem: "engine",
		Name:      "summaries_generated_total",
		Help:      "Number of weekly summaries generated and stored.",
	})
	summaryConflictCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbontrackr",
		Subsystem: "engine",
		Name:      "summary_conflicts_total",
		Help:      "Number of generation attempts rejected by the (user, week) uniqueness guard.",
	})
	leaderboardDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "carbontrackr",
		Subsystem: "engine",
		Name:      "leaderboard_build_duration_seconds",
		Help:      "Time spent joining totals and ranking the leaderboard.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, summariesGeneratedCounter, summaryConflictCounter, leaderboardDuration)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordSummaryGenerated counts a successful generation.
func RecordSummaryGenerated() {
	summariesGeneratedCounter.Inc()
}

// RecordSummaryConflict counts a tripped idempotency guard.
func RecordSummaryConflict() {
	summaryConflictCounter.Inc()
}

// ObserveLeaderboardBuild records how long a leaderboard request took.
func ObserveLeaderboardBuild(d time.Duration) {
	leaderboardDuration.Observe(d.Seconds())
}
