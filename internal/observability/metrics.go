// Package observability exposes Prometheus metrics for plan edits, reloads
// and saves.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/runplan/internal/persist"
)

// Save results used as label values.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var (
	savesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "saves_total",
		Help:      "Plan saves by sink and result.",
	}, []string{"sink", "result"})

	saveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "save_duration_seconds",
		Help:      "Time spent writing the plan to its sink.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"sink"})

	lastSaveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "last_save_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful save.",
	})

	editsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "edits_total",
		Help:      "Changes applied to the in-memory plan, by kind.",
	}, []string{"action"})

	reloadsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "reloads_total",
		Help:      "Reloads of the plan after it changed on disk.",
	})

	parseErrorsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "parse_errors_total",
		Help:      "Plan texts rejected as malformed CSV.",
	})

	weeksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "runplan",
		Subsystem: "plan",
		Name:      "weeks",
		Help:      "Training weeks in the current plan.",
	})
)

func init() {
	prometheus.MustRegister(
		savesCounter,
		saveDuration,
		lastSaveGauge,
		editsCounter,
		reloadsCounter,
		parseErrorsCounter,
		weeksGauge,
	)
}

// SaveResult classifies a save error as a label value.
func SaveResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, persist.ErrConflict):
		return ResultConflict
	default:
		return ResultError
	}
}

// RecordSave counts one save attempt and its duration.
func RecordSave(sink string, took time.Duration, err error) {
	savesCounter.WithLabelValues(sink, SaveResult(err)).Inc()
	saveDuration.WithLabelValues(sink).Observe(took.Seconds())
	if err == nil {
		lastSaveGauge.Set(float64(time.Now().Unix()))
	}
}

// RecordEdit counts a change applied to the plan.
func RecordEdit(action string) {
	editsCounter.WithLabelValues(action).Inc()
}

// RecordReload counts a reload from disk.
func RecordReload() {
	reloadsCounter.Inc()
}

// RecordParseError counts a rejected plan text.
func RecordParseError() {
	parseErrorsCounter.Inc()
}

// RecordWeeks updates the plan size gauge.
func RecordWeeks(n int) {
	weeksGauge.Set(float64(n))
}
