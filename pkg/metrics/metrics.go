package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RoomsActive tracks the number of live interview rooms
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "truetalent_rooms_active",
		Help: "Number of interview rooms currently open.",
	})

	// ParticipantsActive tracks connected participants across all rooms
	ParticipantsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "truetalent_participants_active",
		Help: "Number of participants currently in a room.",
	})

	// WSEvents counts inbound websocket events by name
	WSEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truetalent_ws_events_total",
		Help: "Inbound websocket events processed, by event name.",
	}, []string{"event"})

	// Executions counts code execution requests by outcome
	Executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truetalent_executions_total",
		Help: "Code execution requests, by outcome.",
	}, []string{"status"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
