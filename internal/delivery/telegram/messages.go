// messages.go contains message templates and formatting helpers for Telegram.

package telegram

import (
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Error messages.
const (
	msgNoQuiz             = "You have no quiz in progress. Start one with /daily or /practice."
	msgQuizInProgress     = "You already have a quiz in progress. Finish it or /cancel it first."
	msgEmptyTest          = "This test has no questions yet. Try another one from /exams."
	msgMalformedTest      = "This test could not be read. Try another one from /exams."
	msgTestNotFound       = "Test not found. Pick an exam with /exams or try /daily."
	msgLoginRequired      = "Please log in first: /login email password or /otp phone."
	msgRejected           = "The server rejected the request. Check your input and try again."
	msgSubmissionInFlight = "Your answers are being submitted, please wait."
	msgStaleAction        = "This button is no longer active."
	msgNetworkError       = "Could not reach the exam server. Try again in a moment."
	msgInternalError      = "Something went wrong. Please try again later."
	msgUnknownCommand     = "Unknown command. See /help for the list of commands."
	msgUseCommands        = "I understand commands only. See /help."
)

// Usage hints.
const (
	msgLoginUsage    = "Usage: /login email password"
	msgOTPUsage      = "Usage: /otp +911234567890"
	msgVerifyUsage   = "Usage: /verify +911234567890 123456"
	msgQuizUsage     = "Usage: /quiz <test id>"
	msgPracticeUsage = "Usage: /practice <topic> [number of questions]"
	msgProfileUsage  = "Usage: /profile <your name>, then pick your target exam."
	msgFocusUsage    = "Usage: /focus [minutes], up to 180"
)

const (
	maxProfileName  = 64
	maxFocusMinutes = 180
)

// Informational messages.
const (
	msgWelcome = "Welcome to Exam Prep!\n\n" +
		"Take a daily drill, practice any topic and review every answer after you submit.\n\n" +
		"Log in with /login to save your results, then choose your exam with /exams."
	msgHelp = "Commands:\n\n" +
		"/daily - today's drill for your exam\n" +
		"/practice topic [count] - generate a practice test\n" +
		"/focus [minutes] - daily drill against your focus timer\n" +
		"/quiz id - open a specific test\n" +
		"/exams - choose your target exam\n" +
		"/stats - your performance dashboard\n" +
		"/settings - focus duration, question count, reminders\n" +
		"/login email password - log in with email\n" +
		"/otp phone, then /verify phone code - log in by phone\n" +
		"/profile name - complete your profile and target exam\n" +
		"/cancel - cancel the current quiz\n" +
		"/logout - log out\n" +
		"/reset - forget your login and settings"
	msgOTPSent        = "Code sent. Reply with /verify %s <code>."
	msgLoggedOut      = "You are logged out."
	msgQuizCancelled  = "Quiz cancelled. Nothing was submitted."
	msgQuizKept       = "Carry on!"
	msgNoExams        = "No exams are available right now."
	msgExamSaved      = "Target exam set to %s."
	msgLoading        = "Loading test..."
	msgSubmitting     = "Submitting your answers..."
	msgTimeUp         = "Time is up! Submitting your answers..."
	msgCancelConfirm  = "Cancel this quiz? Your answers will be discarded."
	msgSubmitFailed   = "Your answers could not be submitted: %s\n\nThey are kept. Press Retry to try again."
	msgSettingsSaved  = "Settings saved."
	msgReminderHeader = "Daily drill"
	msgResetConfirm   = "Forget your login and restore default settings? Your results on the server are kept."
	msgResetDone      = "Done. Your login and settings were reset."
	msgResetCancelled = "Reset cancelled."
)

// Onboarding.
const (
	msgProfilePickExam        = "Hi %s! Which exam are you preparing for?"
	msgProfileSaved           = "Profile saved: %s, preparing for %s."
	msgProfileStillIncomplete = "The server still reports your profile as incomplete. Finish it on the website."
)

const maxMessageLen = 4096

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// newEditWithKeyboard creates a MarkdownV2 edit that also replaces the keyboard.
func newEditWithKeyboard(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// splitMessage cuts text on line boundaries into chunks Telegram accepts.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current []byte
	)
	start := 0
	for start < len(text) {
		end := start
		for end < len(text) && text[end] != '\n' {
			end++
		}
		line := text[start:end]
		if end < len(text) {
			end++ // include the newline
		}

		for len(line) > limit {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = current[:0]
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}

		if len(current)+len(line)+1 > limit && len(current) > 0 {
			chunks = append(chunks, string(current))
			current = current[:0]
		}
		if len(current) > 0 {
			current = append(current, '\n')
		}
		current = append(current, line...)
		start = end
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}
