package entities

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Exam is a listed exam the user can prepare for. The listing carries the
// first fields; the details page fills the rest.
type Exam struct {
	ID          string
	Name        string
	Category    string
	Subtitle    string
	QuickInfo   ExamQuickInfo
	Dates       ExamDates
	Eligibility *ExamEligibility
	Pattern     []ExamPhase
	Syllabus    map[string][]string
	Salary      *ExamSalary
}

type ExamQuickInfo struct {
	ConductingBody Text `json:"conductingBody"`
	Level          Text `json:"level"`
	Mode           Text `json:"mode"`
	Frequency      Text `json:"frequency"`
	Vacancies      Text `json:"vacancies"`
}

type ExamDates struct {
	Notification     Text `json:"notification"`
	ApplicationStart Text `json:"applicationStart"`
	AdmitCard        Text `json:"admitCard"`
	ExamDate         Text `json:"examDate"`
	Result           Text `json:"result"`
}

type ExamEligibility struct {
	Nationality   Text            `json:"nationality"`
	Education     Text            `json:"education"`
	Age           AgeRange        `json:"age"`
	Attempts      map[string]Text `json:"attempts"`
	AgeRelaxation map[string]Text `json:"ageRelaxation"`
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ExamPhase is one stage of the exam, e.g. prelims.
type ExamPhase struct {
	Phase          string        `json:"phase"`
	TotalQuestions Text          `json:"totalQuestions"`
	TotalMarks     Text          `json:"totalMarks"`
	TotalDuration  Text          `json:"totalDuration"`
	Sections       []ExamSection `json:"sections"`
}

type ExamSection struct {
	Name      string `json:"name"`
	Questions Text   `json:"questions"`
	Marks     Text   `json:"marks"`
	Duration  Text   `json:"duration"`
}

type ExamSalary struct {
	InHand       Text     `json:"inHand"`
	Basic        Text     `json:"basic"`
	Gross        Text     `json:"gross"`
	Allowances   []string `json:"allowances"`
	CareerGrowth string   `json:"careerGrowth"`
}

type examJSON struct {
	MongoID     string              `json:"_id"`
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Title       string              `json:"title"`
	Category    string              `json:"category"`
	Subtitle    string              `json:"subtitle"`
	QuickInfo   ExamQuickInfo       `json:"quickInfo"`
	Dates       ExamDates           `json:"dates"`
	Eligibility *ExamEligibility    `json:"eligibility"`
	Pattern     []ExamPhase         `json:"pattern"`
	Syllabus    map[string][]string `json:"syllabus"`
	Salary      *ExamSalary         `json:"salary"`
}

// UnmarshalJSON accepts "_id" or "id" and "name" or "title".
func (e *Exam) UnmarshalJSON(data []byte) error {
	var raw examJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Exam{
		ID:          firstOf(raw.ID, raw.MongoID),
		Name:        firstOf(raw.Title, raw.Name),
		Category:    raw.Category,
		Subtitle:    raw.Subtitle,
		QuickInfo:   raw.QuickInfo,
		Dates:       raw.Dates,
		Eligibility: raw.Eligibility,
		Pattern:     raw.Pattern,
		Syllabus:    raw.Syllabus,
		Salary:      raw.Salary,
	}
	return nil
}

// HasDetails reports whether the exam carries more than its listing fields.
func (e *Exam) HasDetails() bool {
	return e.Eligibility != nil || len(e.Pattern) > 0 || len(e.Syllabus) > 0 || e.Salary != nil || e.Dates != ExamDates{}
}

// Category groups exams on the listing page.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Text is a display value the API sends either as a string or as a number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
