package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbontrackr",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of outbox events successfully published to Kafka.",
	})

	retriedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbontrackr",
		Subsystem: "outbox",
		Name:      "events_retried_total",
		Help:      "Number of outbox events left unpublished after a delivery failure, retried on a later poll.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "carbontrackr",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent fetching, delivering, and marking outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, retriedCounter, batchDuration)
}
