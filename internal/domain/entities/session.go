package entities

import (
	"sync"
	"time"
)

// SessionState is a lifecycle state of a quiz session.
type SessionState string

const (
	StateActive           SessionState = "active"
	StateSubmitting       SessionState = "submitting"
	StateSubmissionFailed SessionState = "submission_failed"
	StateComplete         SessionState = "complete"
	StateAbandoned        SessionState = "abandoned"
	StateError            SessionState = "error"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Session is one in-progress quiz attempt scoped to a single test.
// It is safe for concurrent use.
type Session struct {
	ID     string
	TestID string
	ExamID string
	Title  string
	Topic  string

	mu         sync.Mutex
	questions  []Question // immutable once loaded
	current    int
	selections map[string]int      // draft selection of the question on screen
	responses  map[string]Response // committed by Advance
	totalTime  float64
	state      SessionState
	startedAt  time.Time
	timerStart time.Time
	deadline   time.Time // zero when no time limit applies
	inFlight   bool
	lastErr    error
	analysis   *Analysis
	now        Clock
}

// NewSession creates an active session positioned on the first question
// and starts the per-question timer.
func NewSession(id string, test Test, now Clock) *Session {
	if now == nil {
		now = time.Now
	}

	questions := make([]Question, len(test.Questions))
	copy(questions, test.Questions)

	state := StateActive
	if len(questions) == 0 {
		state = StateError
	}

	start := now()
	return &Session{
		ID:         id,
		TestID:     test.ID,
		ExamID:     test.ExamID,
		Title:      test.Title,
		Topic:      test.Topic,
		questions:  questions,
		selections: make(map[string]int),
		responses:  make(map[string]Response),
		state:      state,
		startedAt:  start,
		timerStart: start,
		now:        now,
	}
}

// WithTimeLimit sets a hard deadline relative to the session start.
// A non-positive limit leaves the session untimed.
func (s *Session) WithTimeLimit(limit time.Duration) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > 0 {
		s.deadline = s.startedAt.Add(limit)
	}
	return s
}

// Select records optionIndex as the choice for the current question,
// replacing any earlier choice. It charges no time. A selection arriving
// after the deadline is rejected with ErrTimeUp and ends the session.
func (s *Session) Select(optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrInvalidState
	}
	if s.expireLocked(s.now()) {
		return ErrTimeUp
	}

	q := &s.questions[s.current]
	if !q.HasOption(optionIndex) {
		return ErrInvalidOption
	}

	s.selections[q.ID] = optionIndex
	return nil
}

// Advance charges the time spent on the current question, commits its
// response and moves to the next question. On the last question the session
// switches to StateSubmitting and finished is true. Past the deadline the
// session ends as in Expire and finished is true as well.
func (s *Session) Advance() (finished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false, ErrInvalidState
	}

	now := s.now()
	if s.expireLocked(now) {
		return true, nil
	}
	s.commitCurrent(now)

	if s.current == len(s.questions)-1 {
		s.current = len(s.questions)
		s.state = StateSubmitting
		return true, nil
	}

	s.current++
	s.timerStart = now
	return false, nil
}

// Expire ends an active session whose deadline has passed. The current
// question is charged like in Advance; questions never reached are left
// without a response.
func (s *Session) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}
	return s.expireLocked(s.now())
}

// expireLocked ends the session when now is at or past the deadline.
// It must be called with s.mu held on an active session.
func (s *Session) expireLocked(now time.Time) bool {
	if s.deadline.IsZero() || now.Before(s.deadline) {
		return false
	}

	s.commitCurrent(now)
	s.current = len(s.questions)
	s.state = StateSubmitting
	return true
}

// commitCurrent must be called with s.mu held. Time past the deadline is
// not charged.
func (s *Session) commitCurrent(now time.Time) {
	q := s.questions[s.current]

	if !s.deadline.IsZero() && now.After(s.deadline) {
		now = s.deadline
	}

	elapsed := now.Sub(s.timerStart).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	resp, ok := s.responses[q.ID]
	if !ok {
		resp = Response{QuestionID: q.ID, SelectedOption: SkipSentinel}
	}
	if sel, picked := s.selections[q.ID]; picked {
		resp.SelectedOption = sel
	}
	resp.TimeTaken += elapsed

	s.responses[q.ID] = resp
	s.totalTime += elapsed
}

// BeginSubmission builds the submission payload and marks a submission as
// in flight. Only one submission may be in flight at a time.
func (s *Session) BeginSubmission(userID string) (SubmissionPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitting && s.state != StateSubmissionFailed {
		return SubmissionPayload{}, ErrInvalidState
	}
	if s.inFlight {
		return SubmissionPayload{}, ErrSubmissionInFlight
	}

	s.inFlight = true
	s.state = StateSubmitting

	responses := make([]Response, 0, len(s.responses))
	for _, q := range s.questions {
		if resp, ok := s.responses[q.ID]; ok {
			responses = append(responses, resp)
		}
	}

	return SubmissionPayload{
		UserID:         userID,
		TestID:         s.TestID,
		ExamID:         s.ExamID,
		TotalTimeTaken: s.totalTime,
		Responses:      responses,
	}, nil
}

// CompleteSubmission finishes an in-flight submission. A nil err moves the
// session to StateComplete; otherwise it moves to StateSubmissionFailed and
// keeps every captured response for a retry.
func (s *Session) CompleteSubmission(analysis *Analysis, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inFlight {
		return
	}
	s.inFlight = false

	if err != nil {
		s.state = StateSubmissionFailed
		s.lastErr = err
		return
	}

	s.state = StateComplete
	s.lastErr = nil
	s.analysis = analysis
}

// Abandon discards an attempt that has not reached submission.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrInvalidState
	}

	s.state = StateAbandoned
	return nil
}

// Snapshot is a consistent read-only copy of a session.
type Snapshot struct {
	ID            string
	TestID        string
	Title         string
	State         SessionState
	Index         int // pointer; equals Total once submission started
	Total         int
	Question      *Question // nil once past the last question
	Selected      int       // draft selection for Question, SkipSentinel if none
	QuestionTime  time.Duration
	TotalTime     float64
	Remaining     time.Duration // zero when untimed
	Timed         bool
	Responses     map[string]Response
	Questions     []Question
	Analysis      *Analysis
	LastError     error
	AnsweredCount int
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	snap := Snapshot{
		ID:        s.ID,
		TestID:    s.TestID,
		Title:     s.Title,
		State:     s.state,
		Index:     s.current,
		Total:     len(s.questions),
		Selected:  SkipSentinel,
		TotalTime: s.totalTime,
		Responses: make(map[string]Response, len(s.responses)),
		Questions: s.questions,
		Analysis:  s.analysis,
		LastError: s.lastErr,
	}

	for id, r := range s.responses {
		snap.Responses[id] = r
		if !r.Skipped() {
			snap.AnsweredCount++
		}
	}

	if s.current < len(s.questions) {
		q := s.questions[s.current]
		snap.Question = &q
		if sel, ok := s.selections[q.ID]; ok {
			snap.Selected = sel
		}
		if s.state == StateActive {
			snap.QuestionTime = now.Sub(s.timerStart)
		}
	}

	if !s.deadline.IsZero() {
		snap.Timed = true
		if left := s.deadline.Sub(now); left > 0 {
			snap.Remaining = left
		}
	}

	return snap
}

// State returns the lifecycle state of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
