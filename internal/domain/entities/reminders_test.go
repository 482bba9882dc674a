package entities

import (
	"testing"
	"time"
)

func TestReminderWithUser_CanSendNow(t *testing.T) {
	at := func(day, hour int) *time.Time {
		ts := time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
		return &ts
	}

	tests := []struct {
		name     string
		reminder ReminderWithUser
		now      time.Time
		want     bool
	}{
		{"disabled", ReminderWithUser{IsEnabled: false, HourUTC: 8}, *at(5, 9), false},
		{"before hour", ReminderWithUser{IsEnabled: true, HourUTC: 8}, *at(5, 7), false},
		{"never sent", ReminderWithUser{IsEnabled: true, HourUTC: 8}, *at(5, 8), true},
		{"sent today", ReminderWithUser{IsEnabled: true, HourUTC: 8, LastSentAt: at(5, 8)}, *at(5, 15), false},
		{"sent yesterday", ReminderWithUser{IsEnabled: true, HourUTC: 8, LastSentAt: at(4, 8)}, *at(5, 8), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.reminder.CanSendNow(tc.now); got != tc.want {
				t.Fatalf("CanSendNow = %v, want %v", got, tc.want)
			}
		})
	}
}
