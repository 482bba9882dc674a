package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the bot.
type Metrics struct {
	APIRequests      *prometheus.CounterVec
	APIDuration      *prometheus.HistogramVec
	UpdatesHandled   *prometheus.CounterVec
	QuizzesStarted   *prometheus.CounterVec
	QuizzesSubmitted *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	RemindersSent    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examprep_api_requests_total",
				Help: "Total number of exam-prep API requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		APIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "examprep_api_request_duration_seconds",
				Help:    "Duration of exam-prep API requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		UpdatesHandled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examprep_bot_updates_total",
				Help: "Telegram updates handled, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		QuizzesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examprep_quizzes_started_total",
				Help: "Quiz sessions started, by source",
			},
			[]string{"source"},
		),
		QuizzesSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examprep_quizzes_submitted_total",
				Help: "Quiz submissions, by outcome",
			},
			[]string{"outcome"},
		),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "examprep_active_sessions",
			Help: "Quiz sessions currently held in memory",
		}),
		RemindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "examprep_reminders_sent_total",
			Help: "Daily drill reminders delivered",
		}),
	}

	reg.MustRegister(
		m.APIRequests,
		m.APIDuration,
		m.UpdatesHandled,
		m.QuizzesStarted,
		m.QuizzesSubmitted,
		m.ActiveSessions,
		m.RemindersSent,
	)

	return m
}

// ObserveAPI records one API call. A nil receiver is a no-op.
func (m *Metrics) ObserveAPI(method, endpoint string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.APIDuration.WithLabelValues(method, endpoint).Observe(time.Since(started).Seconds())
}

// ObserveUpdate records one handled Telegram update.
func (m *Metrics) ObserveUpdate(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpdatesHandled.WithLabelValues(kind, outcome).Inc()
}

// QuizStarted records a started session.
func (m *Metrics) QuizStarted(source string) {
	if m == nil {
		return
	}
	m.QuizzesStarted.WithLabelValues(source).Inc()
	m.ActiveSessions.Inc()
}

// QuizEnded records a session leaving memory.
func (m *Metrics) QuizEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// Submission records the outcome of a submission attempt.
func (m *Metrics) Submission(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.QuizzesSubmitted.WithLabelValues(outcome).Inc()
}

// ReminderSent records a delivered reminder.
func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.RemindersSent.Inc()
}
