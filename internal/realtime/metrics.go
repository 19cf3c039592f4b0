package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connected_clients",
		Help: "Number of connected WebSocket clients.",
	})

	FramesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_frames_published_total",
		Help: "Events fanned out to WebSocket clients, by event name.",
	}, []string{"event"})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_frames_dropped_total",
		Help: "Frames not delivered because a client's queue was full.",
	})
)
