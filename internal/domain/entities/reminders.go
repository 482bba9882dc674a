package entities

import "time"

// ReminderPayload is used to build a daily drill reminder message.
type ReminderPayload struct {
	ExamID       string
	QuizzesTaken int // from the analytics dashboard, 0 when unknown
}

// ReminderWithUser combines the reminder settings of a user with what is
// needed to deliver one.
type ReminderWithUser struct {
	UserID     int64
	ChatID     int64
	AccountID  string
	Token      string
	ExamID     string
	IsEnabled  bool
	HourUTC    int
	LastSentAt *time.Time
}

// CanSendNow reports whether the daily reminder is due: the configured hour
// has been reached and nothing was sent on the same UTC day.
func (r *ReminderWithUser) CanSendNow(now time.Time) bool {
	if !r.IsEnabled {
		return false
	}

	now = now.UTC()
	if now.Hour() < r.HourUTC {
		return false
	}

	if r.LastSentAt == nil {
		return true
	}

	last := r.LastSentAt.UTC()
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}
