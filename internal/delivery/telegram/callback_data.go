package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz     = "quiz"
	actionExam     = "exam"
	actionDaily    = "daily"
	actionSettings = "settings"
	actionStats    = "stats"
	actionReset    = "reset"
)

// Quiz sub-actions. Every quiz callback carries a short session tag so
// buttons left over from an earlier attempt are ignored.
const (
	quizOption        = "opt"
	quizNext          = "next"
	quizRetry         = "retry"
	quizCancel        = "cancel"
	quizCancelConfirm = "confirm"
	quizCancelKeep    = "keep"
	quizClose         = "close"
)

// Exam sub-actions.
const (
	examPick     = "pick"
	examCategory = "cat"
	examProfile  = "prof"
	examInfo     = "info"
)

// Settings sub-actions.
const (
	settingsMenu      = "menu"
	settingsFocus     = "focus"
	settingsCount     = "count"
	settingsReminders = "reminders"
	settingsHour      = "hour"
	settingsExam      = "exam"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

const sessionTagLen = 8

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// param returns the i-th parameter or an empty string.
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as an integer.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	if data == "" {
		return callbackData{}
	}

	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// sessionTag shortens a session ID for use in callback data, which
// Telegram limits to 64 bytes.
func sessionTag(sessionID string) string {
	if len(sessionID) > sessionTagLen {
		return sessionID[:sessionTagLen]
	}
	return sessionID
}

func buildQuizCallback(sub, sessionID string, extra ...string) string {
	params := []string{sub, sessionTag(sessionID)}
	params = append(params, extra...)
	return callbackData{Action: actionQuiz, Params: params}.encode()
}

// buildQuizOptionCallback builds callback data for choosing an answer option.
func buildQuizOptionCallback(sessionID string, optionIndex int) string {
	return buildQuizCallback(quizOption, sessionID, strconv.Itoa(optionIndex))
}

func buildQuizNextCallback(sessionID string) string {
	return buildQuizCallback(quizNext, sessionID)
}

func buildQuizRetryCallback(sessionID string) string {
	return buildQuizCallback(quizRetry, sessionID)
}

func buildQuizCancelCallback(sessionID string) string {
	return buildQuizCallback(quizCancel, sessionID)
}

func buildQuizCancelConfirmCallback(sessionID string) string {
	return buildQuizCallback(quizCancelConfirm, sessionID)
}

func buildQuizCancelKeepCallback(sessionID string) string {
	return buildQuizCallback(quizCancelKeep, sessionID)
}

func buildQuizCloseCallback(sessionID string) string {
	return buildQuizCallback(quizClose, sessionID)
}

// buildExamPickCallback builds callback data for choosing the target exam.
func buildExamPickCallback(examID string) string {
	return callbackData{Action: actionExam, Params: []string{examPick, examID}}.encode()
}

// buildExamProfileCallback picks the target exam while completing the profile.
func buildExamProfileCallback(examID string) string {
	return callbackData{Action: actionExam, Params: []string{examProfile, examID}}.encode()
}

func buildExamInfoCallback(examID string) string {
	return callbackData{Action: actionExam, Params: []string{examInfo, examID}}.encode()
}

// buildExamCategoryCallback builds callback data for filtering exams by category.
func buildExamCategoryCallback(categoryID string) string {
	return callbackData{Action: actionExam, Params: []string{examCategory, categoryID}}.encode()
}

// buildDailyCallback builds callback data for starting the daily drill.
func buildDailyCallback(examID string) string {
	return callbackData{Action: actionDaily, Params: []string{examID}}.encode()
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}

func buildStatsCallback() string {
	return actionStats
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
