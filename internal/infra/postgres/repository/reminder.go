package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres"
)

// ReminderRepository reads reminder settings joined with user data.
type ReminderRepository struct {
	db postgres.DBTX
}

func NewRemindersRepository(db postgres.DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// GetDueRemindersBatch returns up to limit active users with reminders
// enabled whose reminder hour has been reached at now, ordered by user ID
// and starting after afterID. Whether one was already sent today is decided
// by ReminderWithUser.CanSendNow. Paging by key keeps batches stable while
// earlier users are deactivated.
func (r *ReminderRepository) GetDueRemindersBatch(ctx context.Context, now time.Time, limit int, afterID int64) ([]*entities.ReminderWithUser, error) {
	query := `
		SELECT u.id, u.chat_id, u.account_id, u.token, s.primary_exam,
		       s.reminders_enabled, s.reminder_hour, u.last_reminded_at
		FROM user_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.reminders_enabled
		  AND u.is_active
		  AND s.reminder_hour <= $1
		  AND u.id > $3
		ORDER BY u.id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, now.UTC().Hour(), limit, afterID)
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*entities.ReminderWithUser
	for rows.Next() {
		var rwu entities.ReminderWithUser
		if err := rows.Scan(
			&rwu.UserID,
			&rwu.ChatID,
			&rwu.AccountID,
			&rwu.Token,
			&rwu.ExamID,
			&rwu.IsEnabled,
			&rwu.HourUTC,
			&rwu.LastSentAt,
		); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, &rwu)
	}

	return reminders, rows.Err()
}

// MarkAsSent records when the last reminder was delivered.
func (r *ReminderRepository) MarkAsSent(ctx context.Context, userID int64, sentAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_reminded_at = $2 WHERE id = $1`, userID, sentAt)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

// Deactivate stops reminders for a user who blocked the bot.
func (r *ReminderRepository) Deactivate(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}
