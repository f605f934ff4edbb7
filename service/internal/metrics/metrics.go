// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/showdown-ai/psbot/engine/fault"
)

var (
	// EventsHandled counts events accepted by a session, by event kind.
	EventsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psbot",
		Name:      "events_handled_total",
		Help:      "Battle events applied to the belief model.",
	}, []string{"kind"})

	// Faults counts battles aborted by a contract violation, by fault code.
	Faults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psbot",
		Name:      "faults_total",
		Help:      "Battles aborted by an inference or protocol fault.",
	}, []string{"code"})

	// Battles counts sessions by their final result.
	Battles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psbot",
		Name:      "battles_total",
		Help:      "Battle sessions by outcome.",
	}, []string{"result"})

	// Published counts snapshot publications, by outcome.
	Published = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psbot",
		Name:      "snapshots_published_total",
		Help:      "Snapshot envelopes handed to the publisher.",
	}, []string{"outcome"})

	// HandleSeconds observes time taken to apply one event.
	HandleSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "psbot",
		Name:      "event_handle_seconds",
		Help:      "Time spent applying a single event.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
)

// Battle results reported on Battles.
const (
	ResultWin     = "win"
	ResultTie     = "tie"
	ResultAborted = "aborted"
	ResultCut     = "cut" // stream ended before a result
)

// RecordFault increments Faults for err's code.
func RecordFault(err error) {
	code := fault.CodeOf(err)
	if code == "" {
		code = "OTHER"
	}
	Faults.WithLabelValues(string(code)).Inc()
}
