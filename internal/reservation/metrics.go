package reservation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the reservation engine. A nil
// *Metrics is valid and records nothing, which keeps tests free of
// global registry collisions.
type Metrics struct {
	SlotsGeneratedTotal prometheus.Counter
	ReservationsTotal   *prometheus.CounterVec
	CancellationsTotal  *prometheus.CounterVec
	AttendedTotal       prometheus.Counter
}

// NewMetrics creates and registers reservation metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SlotsGeneratedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slots_generated_total",
				Help:      "Total number of open appointment slots generated",
			},
		),

		ReservationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservations_total",
				Help:      "Total number of reservation attempts by outcome",
			},
			[]string{"outcome"},
		),

		CancellationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cancellations_total",
				Help:      "Total number of cancellation attempts by outcome",
			},
			[]string{"outcome"},
		),

		AttendedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attended_total",
				Help:      "Total number of appointments marked attended",
			},
		),
	}
}

func (m *Metrics) AddSlotsGenerated(n int) {
	if m == nil {
		return
	}
	m.SlotsGeneratedTotal.Add(float64(n))
}

func (m *Metrics) IncReservations(outcome string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCancellations(outcome string) {
	if m == nil {
		return
	}
	m.CancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAttended() {
	if m == nil {
		return
	}
	m.AttendedTotal.Inc()
}
