package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Reminder dispatcher metrics

	RemindersSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club",
		Name:      "reminders_sent_total",
		Help:      "Total event reminder notifications appended to the ledger.",
	})

	ReminderErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club",
		Name:      "reminder_errors_total",
		Help:      "Total per-item failures skipped by the reminder dispatcher.",
	})

	ReminderTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "club",
		Name:      "reminder_tick_duration_seconds",
		Help:      "Time taken for one reminder dispatcher tick.",
		Buckets:   prometheus.DefBuckets,
	})

	// Recovery flow metrics

	RecoveryCodesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club",
		Name:      "recovery_codes_issued_total",
		Help:      "Total recovery codes issued and emailed.",
	})

	TokensPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "club",
		Name:      "recovery_tokens_purged_total",
		Help:      "Total stale recovery tokens deleted by the janitor.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "club",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RemindersSentTotal,
		ReminderErrorsTotal,
		ReminderTickDuration,
		RecoveryCodesIssuedTotal,
		TokensPurgedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
