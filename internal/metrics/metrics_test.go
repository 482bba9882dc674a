package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAPI("GET", "/tests/{id}", 200, time.Now())
	m.ObserveAPI("GET", "/tests/{id}", 200, time.Now())
	m.Submission(nil)
	m.Submission(errors.New("boom"))
	m.QuizStarted("daily")
	m.QuizStarted("test")
	m.QuizEnded()

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "/tests/{id}", "200")); got != 2 {
		t.Errorf("api requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.QuizzesSubmitted.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Now())
	m.ObserveUpdate("message", nil)
	m.QuizStarted("x")
	m.QuizEnded()
	m.Submission(nil)
	m.ReminderSent()
}
