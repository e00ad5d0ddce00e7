package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inklift",
			Subsystem: "transport",
			Name:      "commands_total",
			Help:      "Command frames written to the device.",
		},
		[]string{"op"},
	)
	softTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inklift",
			Subsystem: "transport",
			Name:      "read_timeouts_total",
			Help:      "Reply reads that elapsed with no data.",
		},
	)
	packetsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inklift",
			Subsystem: "transfer",
			Name:      "packets_total",
			Help:      "Bulk transfer packets received.",
		},
	)
	notesExported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inklift",
			Subsystem: "export",
			Name:      "notes_total",
			Help:      "Notes handled by the exporter.",
		},
		[]string{"outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandsSent, softTimeouts, packetsReceived, notesExported)
	})
}

func RecordCommand(op string) {
	RegisterMetrics()
	commandsSent.WithLabelValues(op).Inc()
}

func RecordSoftTimeout() {
	RegisterMetrics()
	softTimeouts.Inc()
}

func RecordPacket() {
	RegisterMetrics()
	packetsReceived.Inc()
}

// RecordNote tracks exporter outcomes: "written" or "skipped".
func RecordNote(outcome string) {
	RegisterMetrics()
	notesExported.WithLabelValues(outcome).Inc()
}
