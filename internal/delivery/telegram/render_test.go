package telegram

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/service"
)

func intPtr(i int) *int { return &i }

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{4.6, "0:05"},
		{65, "1:05"},
		{-3, "0:00"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderQuestion(t *testing.T) {
	q := entities.Question{ID: "q1", Text: "2 + 2 = ?", Options: []string{"3", "4"}, Topic: "arithmetic"}
	snap := entities.Snapshot{
		ID:           "s1",
		Title:        "Daily drill",
		State:        entities.StateActive,
		Index:        0,
		Total:        3,
		Question:     &q,
		Selected:     1,
		QuestionTime: 12 * time.Second,
		Timed:        true,
		Remaining:    90 * time.Second,
	}

	text := renderQuestion(snap)

	for _, want := range []string{"Question 1 of 3", "0:12", "1:30 left", "▶ *B\\. 4*", "2 \\+ 2 \\= ?"} {
		if !strings.Contains(text, want) {
			t.Errorf("question text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "press Next to skip") {
		t.Error("skip hint shown although an option is selected")
	}
}

func TestRenderReview(t *testing.T) {
	q1 := entities.Question{ID: "q1", Text: "First", Options: []string{"a", "b"}, CorrectIndex: intPtr(0)}
	q2 := entities.Question{ID: "q2", Text: "Second", Options: []string{"a", "b"}, CorrectIndex: intPtr(1), Explanation: "Because\nb."}

	review := service.Review{
		Title: "Mock test",
		Items: []service.ReviewItem{
			{Number: 1, Question: q1, Selected: 0, Correct: intPtr(0), Outcome: service.OutcomeCorrect, TimeTaken: 5},
			{Number: 2, Question: q2, Selected: 0, Correct: intPtr(1), Outcome: service.OutcomeIncorrect, TimeTaken: 7, Explanation: q2.Explanation},
		},
		Score:          1,
		Accuracy:       50,
		TotalTime:      12,
		CorrectCount:   1,
		IncorrectCount: 1,
		MistakeCount:   1,
		Recommendation: "Revise algebra",
	}

	text := renderReview(review)

	for _, want := range []string{"Mock test", "Accuracy: 50\\.0%", "✅ 1\\. First", "❌ 2\\. Second", "Correct: B\\. b", "_   Because b\\._"} {
		if !strings.Contains(text, want) {
			t.Errorf("review missing %q:\n%s", want, text)
		}
	}
}

func TestRenderSubmitFailed(t *testing.T) {
	snap := entities.Snapshot{
		State:         entities.StateSubmissionFailed,
		Total:         4,
		AnsweredCount: 3,
		TotalTime:     61,
		LastError:     fmt.Errorf("submit: %w", entities.ErrUnauthorized),
	}

	text := renderSubmitFailed(snap)
	if !strings.Contains(text, md(msgLoginRequired)) {
		t.Errorf("reason missing:\n%s", text)
	}
	if !strings.Contains(text, "Answered 3 of 4") {
		t.Errorf("progress missing:\n%s", text)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err      error
		want     string
		expected bool
	}{
		{service.ErrNoSession, msgNoQuiz, true},
		{service.ErrSessionInProgress, msgQuizInProgress, true},
		{fmt.Errorf("load: %w", entities.ErrEmptyTest), msgEmptyTest, true},
		{entities.ErrMalformedQuestion, msgMalformedTest, true},
		{service.ErrInvalidTestID, msgTestNotFound, true},
		{entities.ErrUnauthorized, msgLoginRequired, true},
		{entities.ErrSubmissionInFlight, msgSubmissionInFlight, true},
		{fmt.Errorf("select: %w", entities.ErrTimeUp), msgTimeUp, true},
		{entities.ErrInvalidOption, msgStaleAction, true},
		{entities.ErrNetwork, msgNetworkError, false},
		{errors.New("boom"), msgInternalError, false},
	}

	for _, tt := range tests {
		got, expected := userMessage(tt.err)
		if got != tt.want || expected != tt.expected {
			t.Errorf("userMessage(%v) = %q, %v; want %q, %v", tt.err, got, expected, tt.want, tt.expected)
		}
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 100); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short text split: %q", got)
	}

	lines := make([]string, 50)
	for i := range lines {
		lines[i] = strings.Repeat("x", 30)
	}
	text := strings.Join(lines, "\n")

	chunks := splitMessage(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d is %d bytes", i, len(c))
		}
	}
	if strings.Join(chunks, "\n") != text {
		t.Fatal("chunks do not rebuild the text")
	}
}

func TestSplitMessage_LongLineKeepsRunes(t *testing.T) {
	text := strings.Repeat("é", 80) // 160 bytes

	for i, c := range splitMessage(text, 51) {
		if !strings.HasPrefix(c, "é") || len(c)%2 != 0 {
			t.Errorf("chunk %d cut inside a rune: %q", i, c)
		}
	}
}

func TestParsePracticeArgs(t *testing.T) {
	tests := []struct {
		args  string
		topic string
		count int
		ok    bool
	}{
		{"algebra", "algebra", 0, true},
		{"organic chemistry 20", "organic chemistry", 20, true},
		{"20", "", 0, false},
		{"", "", 0, false},
		{"algebra 0", "", 0, false},
		{"algebra 500", "", 0, false},
	}

	for _, tt := range tests {
		topic, count, ok := parsePracticeArgs(tt.args)
		if topic != tt.topic || count != tt.count || ok != tt.ok {
			t.Errorf("parsePracticeArgs(%q) = %q, %d, %v", tt.args, topic, count, ok)
		}
	}
}

func TestBuildQuestionKeyboard(t *testing.T) {
	q := entities.Question{ID: "q", Options: []string{"a", "b", "c", "d", "e"}}

	tests := []struct {
		name     string
		index    int
		selected int
		next     string
	}{
		{name: "skip", index: 0, selected: entities.SkipSentinel, next: "Skip ⏭"},
		{name: "next", index: 0, selected: 2, next: "Next ▶️"},
		{name: "finish", index: 2, selected: entities.SkipSentinel, next: "Finish ✅"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := entities.Snapshot{ID: "session-1", Index: tt.index, Total: 3, Question: &q, Selected: tt.selected}
			kb := buildQuestionKeyboard(snap)

			rows := kb.InlineKeyboard
			if len(rows) != 3 {
				t.Fatalf("rows = %d, want 3", len(rows))
			}
			if len(rows[0]) != 4 || len(rows[1]) != 1 {
				t.Fatalf("option rows = %d, %d", len(rows[0]), len(rows[1]))
			}
			last := rows[len(rows)-1]
			if last[1].Text != tt.next {
				t.Fatalf("next button = %q, want %q", last[1].Text, tt.next)
			}
			if tt.selected >= 0 && rows[0][tt.selected].Text != "● "+optionLabel(tt.selected) {
				t.Fatalf("selected label = %q", rows[0][tt.selected].Text)
			}
		})
	}
}

func TestRenderExamDetails(t *testing.T) {
	exam := &entities.Exam{
		ID:        "ssc-cgl",
		Name:      "SSC CGL",
		Subtitle:  "Combined Graduate Level",
		QuickInfo: entities.ExamQuickInfo{ConductingBody: "SSC", Vacancies: "17727"},
		Dates:     entities.ExamDates{ExamDate: "Sep 2026"},
		Eligibility: &entities.ExamEligibility{
			Age:      entities.AgeRange{Min: 18, Max: 32},
			Attempts: map[string]entities.Text{"obc": "9", "general": "6"},
		},
		Pattern: []entities.ExamPhase{{
			Phase:          "Tier 1",
			TotalQuestions: "100",
			TotalMarks:     "200",
			Sections:       []entities.ExamSection{{Name: "Reasoning", Questions: "25"}},
		}},
		Syllabus: map[string][]string{"Quant": {"Algebra", "Geometry"}, "English": {"Grammar"}},
		Salary:   &entities.ExamSalary{InHand: "45000", Allowances: []string{"DA", "HRA"}},
	}

	got := renderExamDetails(exam)
	for _, want := range []string{
		"*🎓 SSC CGL*",
		"Conducted by: SSC",
		"Exam: Sep 2026",
		"Age: 18 to 32 years",
		"Tier 1: 100 questions, 200 marks",
		"• Reasoning: 25 questions",
		"Quant: Algebra, Geometry",
		"Allowances: DA, HRA",
	} {
		if !strings.Contains(got, md(want)) && !strings.Contains(got, want) {
			t.Errorf("details missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, md("Attempts (general)")) > strings.Index(got, md("Attempts (obc)")) {
		t.Error("attempts not sorted by category")
	}
	if strings.Index(got, "English") > strings.Index(got, "Quant") {
		t.Error("syllabus not sorted by subject")
	}
	if !strings.Contains(got, "Salary") || strings.Contains(got, "No details") {
		t.Errorf("unexpected sections:\n%s", got)
	}
}

func TestRenderExamDetails_Empty(t *testing.T) {
	got := renderExamDetails(&entities.Exam{ID: "x", Name: "Mock"})
	if !strings.Contains(got, md("No details published for this exam yet.")) {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "Overview") {
		t.Fatalf("empty section rendered: %q", got)
	}
}

func TestLoggedInTextSuggestsProfile(t *testing.T) {
	got := loggedInText(&entities.User{Name: "Asha"})
	if !strings.Contains(got, "/profile") {
		t.Fatalf("got %q", got)
	}
	if got := loggedInText(&entities.User{Name: "Asha", IsProfileComplete: true}); strings.Contains(got, "/profile") {
		t.Fatalf("complete profile still nagged: %q", got)
	}
}
