package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

const examsPerRow = 2

// buildMainKeyboard builds the keyboard shown with the welcome message.
func buildMainKeyboard(examID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Daily drill", buildDailyCallback(examID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎓 Exams", buildSettingsCallback(settingsExam)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", buildStatsCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", buildSettingsCallback(settingsMenu)),
		),
	)
}

// buildQuestionKeyboard builds the answer keyboard for the current question.
func buildQuestionKeyboard(snap entities.Snapshot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if q := snap.Question; q != nil {
		var row []tgbotapi.InlineKeyboardButton
		for i := range q.Options {
			label := optionLabel(i)
			if i == snap.Selected {
				label = "● " + label
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, buildQuizOptionCallback(snap.ID, i)))
			if len(row) == 4 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	next := "Next ▶️"
	if snap.Selected == entities.SkipSentinel {
		next = "Skip ⏭"
	}
	if snap.Index == snap.Total-1 {
		next = "Finish ✅"
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", buildQuizCancelCallback(snap.ID)),
		tgbotapi.NewInlineKeyboardButtonData(next, buildQuizNextCallback(snap.ID)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildCancelConfirmKeyboard asks the user to confirm cancelling a quiz.
func buildCancelConfirmKeyboard(sessionID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, cancel", buildQuizCancelConfirmCallback(sessionID)),
			tgbotapi.NewInlineKeyboardButtonData("No, continue", buildQuizCancelKeepCallback(sessionID)),
		),
	)
}

// buildRetryKeyboard is shown when a submission failed.
func buildRetryKeyboard(sessionID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Retry", buildQuizRetryCallback(sessionID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Discard", buildQuizCloseCallback(sessionID)),
		),
	)
}

// buildResultKeyboard builds keyboard for the review screen.
func buildResultKeyboard(examID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Daily drill", buildDailyCallback(examID)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", buildStatsCallback()),
		),
	)
}

// buildExamSavedKeyboard is the main keyboard with a link to the exam details.
func buildExamSavedKeyboard(examID string) tgbotapi.InlineKeyboardMarkup {
	kb := buildMainKeyboard(examID)
	kb.InlineKeyboard = append(kb.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("ℹ️ Details", buildExamInfoCallback(examID)),
	))
	return kb
}

// buildExamKeyboard lists exams to pick from, with category filters on top.
// pick builds the callback of each exam button.
func buildExamKeyboard(exams []entities.Exam, categories []entities.Category, pick func(examID string) string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if len(categories) > 0 {
		var row []tgbotapi.InlineKeyboardButton
		for _, c := range categories {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗂 "+c.Name, buildExamCategoryCallback(c.ID)))
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	var row []tgbotapi.InlineKeyboardButton
	for _, e := range exams {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(e.Name, pick(e.ID)))
		if len(row) == examsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(s *entities.UserSettings) tgbotapi.InlineKeyboardMarkup {
	reminderLabel := "🔔 Turn reminders on"
	if s.Reminders.Enabled {
		reminderLabel = "🔕 Turn reminders off"
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎓 Change exam", buildSettingsCallback(settingsExam)),
		),
		choiceRow(settingsFocus, entities.FocusDurations, s.Focus.DurationMinutes, "%d min"),
		choiceRow(settingsCount, entities.PracticeCounts, s.QuestionCount, "%d q"),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(reminderLabel, buildSettingsCallback(settingsReminders)),
		),
	}

	if s.Reminders.Enabled {
		rows = append(rows, choiceRow(settingsHour, []int{6, 8, 12, 18, 21}, s.Reminders.HourUTC, "%02d:00"))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func choiceRow(sub string, values []int, current int, format string) []tgbotapi.InlineKeyboardButton {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(values))
	for _, v := range values {
		label := fmt.Sprintf(format, v)
		if v == current {
			label = "✓ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, buildSettingsCallback(sub, strconv.Itoa(v))))
	}
	return row
}

// buildReminderKeyboard builds the keyboard attached to a reminder.
func buildReminderKeyboard(examID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start daily drill", buildDailyCallback(examID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔕 Turn off reminders", buildSettingsCallback(settingsReminders)),
		),
	)
}

// buildResetConfirmKeyboard asks the user to confirm a reset.
func buildResetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, reset", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("No", buildResetCancelCallback()),
		),
	)
}
