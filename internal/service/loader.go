package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// ErrInvalidTestID is returned for an empty test or exam identifier.
var ErrInvalidTestID = fmt.Errorf("%w: empty identifier", entities.ErrNotFound)

// TestLoader fetches tests and normalizes their questions.
type TestLoader struct {
	api    TestAPI
	logger *zap.Logger
}

func NewTestLoader(api TestAPI, logger *zap.Logger) *TestLoader {
	return &TestLoader{api: api, logger: logger}
}

// LoadTest fetches the test with the given id.
func (l *TestLoader) LoadTest(ctx context.Context, testID string) (entities.Test, error) {
	testID = strings.TrimSpace(testID)
	if testID == "" {
		return entities.Test{}, ErrInvalidTestID
	}

	rec, err := l.api.GetTest(ctx, testID)
	if err != nil {
		return entities.Test{}, fmt.Errorf("load test %s: %w", testID, err)
	}

	return l.normalize(rec, testID)
}

// LoadDaily fetches today's drill for an exam.
func (l *TestLoader) LoadDaily(ctx context.Context, examID string) (entities.Test, error) {
	examID = strings.TrimSpace(examID)
	if examID == "" {
		return entities.Test{}, ErrInvalidTestID
	}

	rec, err := l.api.GetDailyTest(ctx, examID)
	if err != nil {
		return entities.Test{}, fmt.Errorf("load daily test for %s: %w", examID, err)
	}

	test, err := l.normalize(rec, "daily:"+examID)
	if err != nil {
		return entities.Test{}, err
	}
	if test.ExamID == "" {
		test.ExamID = examID
	}
	return test, nil
}

func (l *TestLoader) normalize(rec *api.TestRecord, ref string) (entities.Test, error) {
	if rec == nil || rec.ID == "" {
		return entities.Test{}, fmt.Errorf("load test %s: %w", ref, entities.ErrNotFound)
	}
	if len(rec.Questions) == 0 {
		return entities.Test{}, fmt.Errorf("load test %s: %w", rec.ID, entities.ErrEmptyTest)
	}

	entries := make([]questionEntry, 0, len(rec.Questions))
	for i, raw := range rec.Questions {
		entry, err := parseQuestionEntry(raw)
		if err != nil {
			l.logger.Warn("dropping unresolvable question",
				zap.String("test_id", rec.ID),
				zap.Int("position", i),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return entities.Test{}, fmt.Errorf("load test %s: %w", rec.ID, entities.ErrMalformedQuestion)
	}

	sortEntries(entries)

	questions := make([]entities.Question, len(entries))
	for i, e := range entries {
		questions[i] = e.question
	}

	return entities.Test{
		ID:        rec.ID,
		ExamID:    rec.ExamID,
		Title:     rec.Title,
		Topic:     rec.Topic,
		Questions: questions,
	}, nil
}

// questionEntry is one normalized entry of a test's question list.
type questionEntry struct {
	question entities.Question
	order    *int
}

// rawQuestion accepts the field spellings seen in question documents.
type rawQuestion struct {
	ID            json.RawMessage `json:"id"`
	MongoID       json.RawMessage `json:"_id"`
	Text          string          `json:"text"`
	QuestionText  string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectIndex  *int            `json:"correctIndex"`
	CorrectAnswer *int            `json:"correctAnswer"`
	Correct       *int            `json:"correct"`
	Topic         string          `json:"topic"`
	Difficulty    string          `json:"difficulty"`
	Explanation   string          `json:"explanation"`
}

// questionRef is the wrapper shape {questionId: <object>, order}.
type questionRef struct {
	QuestionID json.RawMessage `json:"questionId"`
	Order      *int            `json:"order"`
}

// parseQuestionEntry turns either shape into a question. It fails when the
// entry does not carry a resolvable question object.
func parseQuestionEntry(raw json.RawMessage) (questionEntry, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return questionEntry{}, fmt.Errorf("%w: %v", entities.ErrMalformedQuestion, err)
	}

	body := raw
	var order *int

	if _, wrapped := keys["questionId"]; wrapped {
		var ref questionRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return questionEntry{}, fmt.Errorf("%w: %v", entities.ErrMalformedQuestion, err)
		}

		inner := bytes.TrimSpace(ref.QuestionID)
		if len(inner) == 0 || inner[0] != '{' {
			return questionEntry{}, fmt.Errorf("%w: reference %s is not populated", entities.ErrMalformedQuestion, string(inner))
		}
		body = inner
		order = ref.Order
	}

	var rq rawQuestion
	if err := json.Unmarshal(body, &rq); err != nil {
		return questionEntry{}, fmt.Errorf("%w: %v", entities.ErrMalformedQuestion, err)
	}

	q := entities.Question{
		ID:          firstNonEmpty(idString(rq.MongoID), idString(rq.ID)),
		Text:        firstNonEmpty(rq.Text, rq.QuestionText),
		Options:     rq.Options,
		Topic:       rq.Topic,
		Difficulty:  rq.Difficulty,
		Explanation: rq.Explanation,
	}
	if q.ID == "" {
		return questionEntry{}, fmt.Errorf("%w: question without id", entities.ErrMalformedQuestion)
	}

	for _, idx := range []*int{rq.CorrectIndex, rq.CorrectAnswer, rq.Correct} {
		if idx != nil && q.HasOption(*idx) {
			v := *idx
			q.CorrectIndex = &v
			break
		}
	}

	return questionEntry{question: q, order: order}, nil
}

// sortEntries orders entries by their wrapper order when every entry has one.
func sortEntries(entries []questionEntry) {
	for _, e := range entries {
		if e.order == nil {
			return
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return *entries[i].order < *entries[j].order
	})
}

// idString reads an identifier sent either as a JSON string or a number.
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
