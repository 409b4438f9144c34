package publisher

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "publisher",
		Name:      "events_published_total",
		Help:      "Number of activity events delivered to Kafka.",
	})

	publishFailedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "publisher",
		Name:      "publish_failures_total",
		Help:      "Number of activity events that could not be delivered.",
	})
)

func init() {
	prometheus.MustRegister(publishedCounter, publishFailedCounter)
}
