package service

import "github.com/aliskhannn/examprep-bot/internal/domain/entities"

// Outcome is the result of a single question in a review.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeSkipped   Outcome = "skipped"
)

// ReviewItem is one reviewed question.
type ReviewItem struct {
	Number      int // 1-based
	Question    entities.Question
	Selected    int  // SkipSentinel when skipped or never reached
	Correct     *int // nil when neither the question nor the analysis reveals it
	Outcome     Outcome
	TimeTaken   float64
	Explanation string
}

// Review is the read-only projection of a completed session.
type Review struct {
	Title          string
	Items          []ReviewItem
	Score          float64
	Accuracy       float64
	TotalTime      float64
	CorrectCount   int
	IncorrectCount int
	SkippedCount   int
	MistakeCount   int
	Recommendation string
}

// BuildReview classifies every question of a session snapshot. Summary
// figures come from the server analysis when one is present.
func BuildReview(snap entities.Snapshot) Review {
	mistakes := make(map[string]entities.Mistake)
	if snap.Analysis != nil {
		for _, m := range snap.Analysis.Mistakes {
			mistakes[m.QuestionID] = m
		}
	}

	r := Review{
		Title:     snap.Title,
		Items:     make([]ReviewItem, 0, len(snap.Questions)),
		TotalTime: snap.TotalTime,
	}

	for i, q := range snap.Questions {
		item := ReviewItem{
			Number:      i + 1,
			Question:    q,
			Selected:    entities.SkipSentinel,
			Correct:     q.CorrectIndex,
			Explanation: q.Explanation,
		}

		m, hasMistake := mistakes[q.ID]
		if hasMistake {
			if item.Correct == nil {
				item.Correct = m.CorrectOption
			}
			if m.Explanation != "" {
				item.Explanation = m.Explanation
			}
		}

		resp, visited := snap.Responses[q.ID]
		if visited {
			item.Selected = resp.SelectedOption
			item.TimeTaken = resp.TimeTaken
		}

		switch {
		case !visited || resp.Skipped():
			item.Outcome = OutcomeSkipped
			r.SkippedCount++
		case q.CorrectIndex != nil && *q.CorrectIndex == resp.SelectedOption:
			item.Outcome = OutcomeCorrect
			r.CorrectCount++
		case q.CorrectIndex != nil:
			item.Outcome = OutcomeIncorrect
			r.IncorrectCount++
		case hasMistake:
			item.Outcome = OutcomeIncorrect
			r.IncorrectCount++
		default:
			item.Outcome = OutcomeCorrect
			r.CorrectCount++
		}

		r.Items = append(r.Items, item)
	}

	if a := snap.Analysis; a != nil {
		r.Score = a.Summary.Score
		r.Accuracy = a.Summary.Accuracy
		if a.Summary.TotalTime > 0 {
			r.TotalTime = a.Summary.TotalTime
		}
		r.MistakeCount = len(a.Mistakes)
		r.Recommendation = a.Recommendations.Action
		return r
	}

	r.Score = float64(r.CorrectCount)
	r.MistakeCount = r.IncorrectCount
	if n := len(snap.Questions); n > 0 {
		r.Accuracy = float64(r.CorrectCount) / float64(n) * 100
	}
	return r
}
