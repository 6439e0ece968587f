// Package metrics exposes Prometheus instrumentation for the guest service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Confirmation outcome labels.
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeAlreadyConfirmed = "already_confirmed"
	OutcomeNotFound         = "not_found"
	OutcomeInvalid          = "invalid"
	OutcomeError            = "error"
)

// Metrics holds the Prometheus collectors for guest operations.
type Metrics struct {
	ConfirmationAttempts *prometheus.CounterVec
	GuestsCreated        prometheus.Counter
	GuestsDeleted        prometheus.Counter
}

// New creates and registers all guest metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ConfirmationAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "guestlist_confirmation_attempts_total",
			Help: "Confirmation attempts partitioned by outcome",
		}, []string{"outcome"}),
		GuestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestlist_guests_created_total",
			Help: "Total number of guests added to the list",
		}),
		GuestsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guestlist_guests_deleted_total",
			Help: "Total number of guests removed from the list",
		}),
	}
}

// RecordConfirmation counts one confirmation attempt with its outcome.
func (m *Metrics) RecordConfirmation(outcome string) {
	m.ConfirmationAttempts.WithLabelValues(outcome).Inc()
}

// IncrementGuestsCreated increments the created counter by 1.
func (m *Metrics) IncrementGuestsCreated() {
	m.GuestsCreated.Inc()
}

// IncrementGuestsDeleted increments the deleted counter by 1.
func (m *Metrics) IncrementGuestsDeleted() {
	m.GuestsDeleted.Inc()
}
