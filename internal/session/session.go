package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
)

var (
	ErrAlreadySubmitted   = errors.New("attempt already in a terminal state")
	ErrInvalidAnswerShape = errors.New("answer shape does not match question type")
	ErrUnknownQuestion    = errors.New("question is not part of this quiz")
	ErrNotGradable        = errors.New("attempt must be submitted or expired before grading")
)

type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateSubmitted  State = "SUBMITTED"
	StateExpired    State = "EXPIRED"
)

// Question is the graded view of one stored question: type, weight and the
// expected answer, keyed by option labels.
type Question struct {
	ID            uint
	Type          models.QuestionType
	Points        int
	CorrectLabel  string   // single_choice
	CorrectLabels []string // multi_select
}

// Quiz is an immutable snapshot of a quiz definition taken when the
// session starts. Later edits to the stored quiz are never observed.
type Quiz struct {
	ID              uint
	DurationSeconds int
	Questions       []Question
}

// Session is one candidate's timed run at a quiz. It is owned and mutated
// by exactly one holder; there is no internal locking. The deadline is an
// absolute timestamp so repeated Tick calls are drift-free and idempotent.
type Session struct {
	quiz      *Quiz
	startedAt time.Time
	deadline  time.Time
	answers   map[uint]AnswerValue
	state     State
}

// Start opens a session against the quiz snapshot, in progress as of now.
// The already-active precondition for the (holder, quiz) pair is enforced
// by the attempt store, not here.
func Start(quiz *Quiz, now time.Time) *Session {
	return &Session{
		quiz:      quiz,
		startedAt: now,
		deadline:  now.Add(time.Duration(quiz.DurationSeconds) * time.Second),
		answers:   make(map[uint]AnswerValue),
		state:     StateInProgress,
	}
}

// Resume rebuilds an in-progress session from persisted state, e.g. after
// a reconnect. Stored answers are trusted; they were shape-checked on the
// way in.
func Resume(quiz *Quiz, startedAt time.Time, answers map[uint]AnswerValue) *Session {
	s := &Session{
		quiz:      quiz,
		startedAt: startedAt,
		deadline:  startedAt.Add(time.Duration(quiz.DurationSeconds) * time.Second),
		answers:   make(map[uint]AnswerValue, len(answers)),
		state:     StateInProgress,
	}
	for id, v := range answers {
		s.answers[id] = v
	}
	return s
}

func (s *Session) State() State         { return s.state }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Deadline() time.Time  { return s.deadline }

// Answers returns a copy of the stored answers.
func (s *Session) Answers() map[uint]AnswerValue {
	out := make(map[uint]AnswerValue, len(s.answers))
	for id, v := range s.answers {
		out[id] = v
	}
	return out
}

// SetAnswer records the candidate's value for one question, replacing any
// prior value. Last write wins; no history is retained.
func (s *Session) SetAnswer(questionID uint, value AnswerValue) error {
	if s.state != StateInProgress {
		return ErrAlreadySubmitted
	}
	q := s.question(questionID)
	if q == nil {
		return fmt.Errorf("%w: question %d", ErrUnknownQuestion, questionID)
	}
	if !value.matchesType(q.Type) {
		return fmt.Errorf("%w: question %d expects %s, got %s answer",
			ErrInvalidAnswerShape, questionID, q.Type, value.Kind)
	}
	s.answers[questionID] = value
	return nil
}

// Submit moves the session to SUBMITTED and freezes the answers.
func (s *Session) Submit() error {
	if s.state != StateInProgress {
		return ErrAlreadySubmitted
	}
	s.state = StateSubmitted
	return nil
}

// Tick checks the absolute deadline. It transitions to EXPIRED at most once
// per session, keeping whatever answers are stored, and is a no-op in any
// terminal state so schedulers may fire it as often as they like.
func (s *Session) Tick(now time.Time) bool {
	if s.state != StateInProgress {
		return false
	}
	if now.Before(s.deadline) {
		return false
	}
	s.state = StateExpired
	return true
}

// Progress reports how many questions hold a non-empty answer. UI feedback
// only; it carries no grading weight.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

func (s *Session) Progress() Progress {
	p := Progress{Total: len(s.quiz.Questions)}
	for _, q := range s.quiz.Questions {
		if v, ok := s.answers[q.ID]; ok && !v.IsEmpty() {
			p.Answered++
		}
	}
	return p
}

func (s *Session) question(id uint) *Question {
	for i := range s.quiz.Questions {
		if s.quiz.Questions[i].ID == id {
			return &s.quiz.Questions[i]
		}
	}
	return nil
}
