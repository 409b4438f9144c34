package recommend

import "github.com/prometheus/client_golang/prometheus"

var (
	generatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "recommend",
		Name:      "generated_total",
		Help:      "Number of recommendations built from extracted model output.",
	})

	fallbackCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "recommend",
		Name:      "fallback_total",
		Help:      "Number of default recommendations served, by failure reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(generatedCounter, fallbackCounter)
}

func recordGenerated() {
	generatedCounter.Inc()
}

func recordFallback(reason string) {
	fallbackCounter.WithLabelValues(reason).Inc()
}
