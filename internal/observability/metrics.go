package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityRecordedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "pipeline",
		Name:      "last_activity_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted.",
	})
	recommendationStoredGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "pipeline",
		Name:      "last_recommendation_stored_timestamp_seconds",
		Help:      "Unix timestamp of the most recent recommendation persisted.",
	})
)

func init() {
	prometheus.MustRegister(activityRecordedGauge, recommendationStoredGauge)
}

// RecordActivityPersisted updates the producer-side watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityRecordedGauge.Set(float64(ts.Unix()))
}

// RecordRecommendationStored updates the consumer-side watermark gauge.
func RecordRecommendationStored(ts time.Time) {
	if ts.IsZero() {
		return
	}
	recommendationStoredGauge.Set(float64(ts.Unix()))
}
