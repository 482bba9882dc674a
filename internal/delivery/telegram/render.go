package telegram

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/service"
)

func optionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%d", i+1)
}

// formatSeconds renders a duration in seconds as m:ss.
func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func formatDuration(d time.Duration) string {
	return formatSeconds(d.Seconds())
}

// renderQuestion renders the current question of an active session.
func renderQuestion(snap entities.Snapshot) string {
	q := snap.Question
	if q == nil {
		return md(msgSubmitting)
	}

	var sb strings.Builder

	if snap.Title != "" {
		sb.WriteString(bold(snap.Title))
		sb.WriteString("\n")
	}
	sb.WriteString(md(fmt.Sprintf("Question %d of %d", snap.Index+1, snap.Total)))
	if q.Topic != "" {
		sb.WriteString(md(" · " + q.Topic))
	}
	sb.WriteString("\n")

	sb.WriteString(md("⏱ " + formatDuration(snap.QuestionTime)))
	if snap.Timed {
		sb.WriteString(md("   ⌛ " + formatDuration(snap.Remaining) + " left"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(bold(q.Text))
	sb.WriteString("\n\n")

	for i, opt := range q.Options {
		line := fmt.Sprintf("%s. %s", optionLabel(i), opt)
		if i == snap.Selected {
			sb.WriteString(md("▶ "))
			sb.WriteString(bold(line))
		} else {
			sb.WriteString(md(line))
		}
		sb.WriteString("\n")
	}

	if snap.Selected == entities.SkipSentinel {
		sb.WriteString("\n")
		sb.WriteString(italic("Pick an answer or press Next to skip."))
	}

	return sb.String()
}

func outcomeIcon(o service.Outcome) string {
	switch o {
	case service.OutcomeCorrect:
		return "✅"
	case service.OutcomeIncorrect:
		return "❌"
	default:
		return "⏭"
	}
}

// renderReview renders the post-submission review of an attempt.
func renderReview(r service.Review) string {
	var sb strings.Builder

	title := r.Title
	if title == "" {
		title = "Results"
	}
	sb.WriteString(bold("📋 " + title))
	sb.WriteString("\n\n")

	sb.WriteString(md(fmt.Sprintf("🎯 Score: %s", formatNumber(r.Score))))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("📈 Accuracy: %.1f%%", r.Accuracy)))
	sb.WriteString("\n")
	sb.WriteString(md("⏱ Total time: " + formatSeconds(r.TotalTime)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("✅ %d   ❌ %d   ⏭ %d", r.CorrectCount, r.IncorrectCount, r.SkippedCount)))
	sb.WriteString("\n")
	if r.MistakeCount > 0 {
		sb.WriteString(md(fmt.Sprintf("Mistakes to review: %d", r.MistakeCount)))
		sb.WriteString("\n")
	}
	if r.Recommendation != "" {
		sb.WriteString("\n")
		sb.WriteString(italic("💡 " + oneLine(r.Recommendation)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for _, item := range r.Items {
		sb.WriteString(md(fmt.Sprintf("%s %d. %s", outcomeIcon(item.Outcome), item.Number, item.Question.Text)))
		sb.WriteString("\n")

		if item.Selected != entities.SkipSentinel && item.Question.HasOption(item.Selected) {
			sb.WriteString(md(fmt.Sprintf("   Your answer: %s. %s", optionLabel(item.Selected), item.Question.Options[item.Selected])))
			sb.WriteString("\n")
		}
		if item.Outcome != service.OutcomeCorrect && item.Correct != nil && item.Question.HasOption(*item.Correct) {
			sb.WriteString(md(fmt.Sprintf("   Correct: %s. %s", optionLabel(*item.Correct), item.Question.Options[*item.Correct])))
			sb.WriteString("\n")
		}
		if item.TimeTaken > 0 {
			sb.WriteString(md("   ⏱ " + formatSeconds(item.TimeTaken)))
			sb.WriteString("\n")
		}
		if item.Explanation != "" && item.Outcome != service.OutcomeCorrect {
			sb.WriteString(italic("   " + oneLine(item.Explanation)))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderSubmitFailed renders a failed submission with the reason.
func renderSubmitFailed(snap entities.Snapshot) string {
	reason := "unknown error"
	if snap.LastError != nil {
		reason, _ = userMessage(snap.LastError)
	}
	return md(fmt.Sprintf(msgSubmitFailed, reason)) + "\n\n" +
		md(fmt.Sprintf("Answered %d of %d, total time %s.", snap.AnsweredCount, snap.Total, formatSeconds(snap.TotalTime)))
}

// renderDashboard renders the analytics overview.
func renderDashboard(d *entities.Dashboard) string {
	var sb strings.Builder

	sb.WriteString(bold("📊 Your performance"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("📝 Quizzes taken: %d", d.TotalQuizzes)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("🎯 Average score: %s", formatNumber(d.AvgScore))))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("📈 Accuracy: %.1f%%", d.Accuracy)))
	sb.WriteString("\n")
	sb.WriteString(md("⏱ Time spent: " + formatSeconds(d.TimeSpent)))
	sb.WriteString("\n")

	if len(d.Subjects) > 0 {
		sb.WriteString("\n")
		sb.WriteString(bold("Subjects"))
		sb.WriteString("\n")
		for _, s := range d.Subjects {
			sb.WriteString(md(fmt.Sprintf("• %s: %s", s.Subject, formatNumber(s.Score))))
			sb.WriteString("\n")
		}
	}
	if len(d.Strengths) > 0 {
		sb.WriteString("\n")
		sb.WriteString(md("💪 Strengths: " + strings.Join(d.Strengths, ", ")))
		sb.WriteString("\n")
	}
	if len(d.Weaknesses) > 0 {
		sb.WriteString(md("🧩 Needs work: " + strings.Join(d.Weaknesses, ", ")))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderSettings renders the settings screen.
func renderSettings(s *entities.UserSettings) string {
	reminders := "off"
	if s.Reminders.Enabled {
		reminders = fmt.Sprintf("daily at %02d:00 UTC", s.Reminders.HourUTC)
	}

	return fmt.Sprintf(
		"%s\n\n%s\n%s\n%s\n%s\n",
		bold("⚙️ Settings"),
		md("🎓 Exam: "+s.PrimaryExam()),
		md(fmt.Sprintf("⏳ Focus session: %d min", s.Focus.DurationMinutes)),
		md(fmt.Sprintf("📝 Practice questions: %d", s.QuestionCount)),
		md("⏰ Reminders: "+reminders),
	)
}

// renderReminder renders the daily drill reminder.
func renderReminder(p entities.ReminderPayload) string {
	var sb strings.Builder
	sb.WriteString(bold("🔔 " + msgReminderHeader))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Today's %s drill is ready.", p.ExamID)))
	sb.WriteString("\n")
	if p.QuizzesTaken > 0 {
		sb.WriteString(md(fmt.Sprintf("You have completed %d quizzes so far. Keep going!", p.QuizzesTaken)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderExams renders the exam list, marking the current choice.
func renderExams(exams []entities.Exam, current string) string {
	var sb strings.Builder
	sb.WriteString(bold("🎓 Choose your exam"))
	sb.WriteString("\n\n")
	for _, e := range exams {
		mark := "•"
		if e.ID == current {
			mark = "✅"
		}
		line := fmt.Sprintf("%s %s", mark, e.Name)
		if e.Category != "" {
			line += " (" + e.Category + ")"
		}
		sb.WriteString(md(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderExamDetails renders the exam page: key facts, dates, eligibility,
// pattern, syllabus and salary. Empty sections are left out.
func renderExamDetails(e *entities.Exam) string {
	var sb strings.Builder
	sb.WriteString(bold("🎓 " + e.Name))
	sb.WriteString("\n")
	if e.Subtitle != "" {
		sb.WriteString(italic(oneLine(e.Subtitle)))
		sb.WriteString("\n")
	}

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		sb.WriteString("\n")
		sb.WriteString(bold(title))
		sb.WriteString("\n")
		for _, l := range lines {
			sb.WriteString(md(oneLine(l)))
			sb.WriteString("\n")
		}
	}

	q := e.QuickInfo
	section("Overview", labelled(
		fact{"Conducted by", q.ConductingBody},
		fact{"Level", q.Level},
		fact{"Mode", q.Mode},
		fact{"Frequency", q.Frequency},
		fact{"Vacancies", q.Vacancies},
	))

	d := e.Dates
	section("Important dates", labelled(
		fact{"Notification", d.Notification},
		fact{"Applications open", d.ApplicationStart},
		fact{"Admit card", d.AdmitCard},
		fact{"Exam", d.ExamDate},
		fact{"Result", d.Result},
	))

	if el := e.Eligibility; el != nil {
		lines := labelled(fact{"Nationality", el.Nationality}, fact{"Education", el.Education})
		if el.Age.Min > 0 || el.Age.Max > 0 {
			lines = append(lines, fmt.Sprintf("Age: %d to %d years", el.Age.Min, el.Age.Max))
		}
		for _, k := range sortedKeys(el.Attempts) {
			lines = append(lines, fmt.Sprintf("Attempts (%s): %s", k, el.Attempts[k]))
		}
		for _, k := range sortedKeys(el.AgeRelaxation) {
			lines = append(lines, fmt.Sprintf("Age relaxation (%s): %s", k, el.AgeRelaxation[k]))
		}
		section("Eligibility", lines)
	}

	var pattern []string
	for _, ph := range e.Pattern {
		head := ph.Phase
		if head == "" {
			head = "Exam"
		}
		if facts := patternFacts(ph.TotalQuestions, ph.TotalMarks, ph.TotalDuration); facts != "" {
			head += ": " + facts
		}
		pattern = append(pattern, head)
		for _, sec := range ph.Sections {
			line := "• " + sec.Name
			if facts := patternFacts(sec.Questions, sec.Marks, sec.Duration); facts != "" {
				line += ": " + facts
			}
			pattern = append(pattern, line)
		}
	}
	section("Exam pattern", pattern)

	var syllabus []string
	for _, subject := range sortedKeys(e.Syllabus) {
		syllabus = append(syllabus, subject+": "+strings.Join(e.Syllabus[subject], ", "))
	}
	section("Syllabus", syllabus)

	if sal := e.Salary; sal != nil {
		lines := labelled(fact{"In hand", sal.InHand}, fact{"Basic pay", sal.Basic}, fact{"Gross", sal.Gross})
		if len(sal.Allowances) > 0 {
			lines = append(lines, "Allowances: "+strings.Join(sal.Allowances, ", "))
		}
		if sal.CareerGrowth != "" {
			lines = append(lines, "Career growth: "+sal.CareerGrowth)
		}
		section("Salary", lines)
	}

	if !e.HasDetails() && q == (entities.ExamQuickInfo{}) {
		sb.WriteString("\n")
		sb.WriteString(md("No details published for this exam yet."))
		sb.WriteString("\n")
	}
	return sb.String()
}

type fact struct {
	label string
	value entities.Text
}

// labelled renders facts as "label: value" lines, skipping empty values.
func labelled(facts ...fact) []string {
	var lines []string
	for _, f := range facts {
		if f.value != "" {
			lines = append(lines, f.label+": "+string(f.value))
		}
	}
	return lines
}

// patternFacts renders e.g. "100 questions, 200 marks, 60 min".
func patternFacts(questions, marks, duration entities.Text) string {
	var parts []string
	if questions != "" {
		parts = append(parts, string(questions)+" questions")
	}
	if marks != "" {
		parts = append(parts, string(marks)+" marks")
	}
	if duration != "" {
		parts = append(parts, string(duration))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}

// oneLine joins lines so inline formatting never spans a message split.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
