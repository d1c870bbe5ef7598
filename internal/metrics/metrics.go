package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	snapshotRecomputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salondesk",
			Name:      "snapshot_recomputed_total",
			Help:      "Count of day-view snapshot recomputations by trigger.",
		},
		[]string{"trigger"},
	)

	availabilityLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salondesk",
			Name:      "availability_lookups_total",
			Help:      "Count of availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	rescheduleApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salondesk",
			Name:      "reschedule_total",
			Help:      "Count of drag-reschedule drops by outcome.",
		},
		[]string{"outcome"},
	)

	rosterColumns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salondesk",
			Name:      "roster_columns",
			Help:      "Number of employee columns in the last snapshot.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(snapshotRecomputed, availabilityLookups, rescheduleApplied, rosterColumns)
	})
}

func IncSnapshotRecomputed(trigger string) {
	snapshotRecomputed.WithLabelValues(trigger).Inc()
}

func IncAvailabilityLookup(outcome string) {
	availabilityLookups.WithLabelValues(outcome).Inc()
}

func IncReschedule(outcome string) {
	rescheduleApplied.WithLabelValues(outcome).Inc()
}

func SetRosterColumns(n int) {
	rosterColumns.Set(float64(n))
}
