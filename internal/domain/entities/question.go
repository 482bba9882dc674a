package entities

// SkipSentinel marks a question that was reached but never answered.
const SkipSentinel = -1

// Question is a single multiple-choice question of a test.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty"` // nil when the backend withholds the key
	Topic        string   `json:"topic,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// HasOption reports whether idx addresses one of the question options.
func (q *Question) HasOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// Test is a loaded test with normalized questions.
type Test struct {
	ID        string
	ExamID    string
	Title     string
	Topic     string
	Questions []Question
}

// Response is the recorded selection and time for one question.
type Response struct {
	QuestionID     string  `json:"questionId"`
	SelectedOption int     `json:"selectedOption"`
	TimeTaken      float64 `json:"timeTaken"` // cumulative, seconds
}

// Skipped reports whether no option was chosen.
func (r Response) Skipped() bool {
	return r.SelectedOption == SkipSentinel
}
