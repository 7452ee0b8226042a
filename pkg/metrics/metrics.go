package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "buzzer"

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms_active",
		Help:      "Rooms currently hosted.",
	})
	ReservationsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reservations_pending",
		Help:      "Reserved room names waiting for their host.",
	})
	ReservationsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_expired_total",
		Help:      "Reservations discarded because no host claimed them in time.",
	})
	ParticipantsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "participants_connected",
		Help:      "Participants joined across all rooms.",
	})
	Buzzes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "buzzes_total",
		Help:      "Buzzes received, by classification (first, later, already).",
	}, []string{"result"})
	FanoutDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_dropped_total",
		Help:      "Participants cut off because they could not keep up with their room.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
