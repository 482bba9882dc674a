package entities

// Analysis is the server-computed result of a submitted test.
// The bot renders it as is and never modifies it.
type Analysis struct {
	Summary         AnalysisSummary `json:"summary"`
	Mistakes        []Mistake       `json:"mistakes"`
	Recommendations Recommendation  `json:"recommendations"`
}

// AnalysisSummary holds the aggregate score of an attempt.
type AnalysisSummary struct {
	Score     float64 `json:"score"`
	Accuracy  float64 `json:"accuracy"`  // percentage, 0-100
	TotalTime float64 `json:"totalTime"` // seconds
}

// Mistake describes one incorrectly answered question.
type Mistake struct {
	QuestionID     string `json:"questionId"`
	Topic          string `json:"topic,omitempty"`
	SelectedOption *int   `json:"selectedOption,omitempty"`
	CorrectOption  *int   `json:"correctOption,omitempty"`
	Explanation    string `json:"explanation,omitempty"`
}

// Recommendation is the follow-up advice attached to an analysis.
type Recommendation struct {
	Action string `json:"action"`
}

// SubmissionPayload is the body sent to the submission service.
type SubmissionPayload struct {
	UserID         string     `json:"userId"`
	TestID         string     `json:"testId"`
	ExamID         string     `json:"examId"`
	TotalTimeTaken float64    `json:"totalTimeTaken"`
	Responses      []Response `json:"responses"`
}

// Dashboard is the per-user analytics overview.
type Dashboard struct {
	TotalQuizzes int                  `json:"totalQuizzes"`
	AvgScore     float64              `json:"avgScore"`
	Accuracy     float64              `json:"accuracy"`
	TimeSpent    float64              `json:"timeSpent"` // seconds
	Subjects     []SubjectPerformance `json:"subjects"`
	Strengths    []string             `json:"strengths"`
	Weaknesses   []string             `json:"weaknesses"`
}

// SubjectPerformance is the score share of a single subject.
type SubjectPerformance struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}
