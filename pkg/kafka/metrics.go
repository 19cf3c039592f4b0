package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish outcomes used as the result label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// EventsPublished counts publish attempts by topic and result.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: TopicPrefix,
			Subsystem: "kafka",
			Name:      "events_published_total",
			Help:      "Domain events handed to Kafka, by topic and result",
		},
		[]string{"topic", "result"},
	)

	// PublishDuration observes how long a write to the brokers takes.
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: TopicPrefix,
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Latency of Kafka writes in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)
