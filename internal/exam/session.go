package exam

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/acequiz-backend/internal/model"
)

// DefaultDuration is the exam-wide time limit.
const DefaultDuration = 3600 * time.Second

// LowTimeSeconds is when the clock is flagged as running low.
const LowTimeSeconds = 300

var (
	ErrNoQuestions      = errors.New("exam needs at least one question")
	ErrInvalidDuration  = errors.New("exam duration must be at least one second")
	ErrNotRunning       = errors.New("exam is not running")
	ErrUnknownQuestion  = errors.New("question is not part of this exam")
	ErrOptionOutOfRange = errors.New("option index out of range")
)

// Session is one timed attempt at a question set. Every mutation holds mu,
// so a final tick and an explicit finish cannot both win.
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	questions []model.Question
	position  map[int]int // question id -> index

	cursor    int
	answers   map[int]int
	remaining int
	status    model.SessionStatus
	reason    model.FinishReason

	startedAt  time.Time
	finishedAt time.Time
	done       chan struct{}
	now        func() time.Time
}

// Start creates a running session. Remaining time is whole seconds; any
// fraction of duration is dropped.
func Start(questions []model.Question, duration time.Duration) (*Session, error) {
	return start(questions, duration, time.Now)
}

func start(questions []model.Question, duration time.Duration, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	secs := int(duration / time.Second)
	if secs <= 0 {
		return nil, ErrInvalidDuration
	}

	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	pos := make(map[int]int, len(qs))
	for i, q := range qs {
		pos[q.ID] = i
	}

	return &Session{
		id:        uuid.New(),
		questions: qs,
		position:  pos,
		answers:   make(map[int]int),
		remaining: secs,
		status:    model.SessionStatusRunning,
		startedAt: now(),
		done:      make(chan struct{}),
		now:       now,
	}, nil
}

// ID identifies the attempt.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// SelectAnswer records or overwrites the answer for a question.
func (s *Session) SelectAnswer(questionID, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionStatusRunning {
		return ErrNotRunning
	}
	i, ok := s.position[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	if !s.questions[i].HasOption(option) {
		return ErrOptionOutOfRange
	}

	s.answers[questionID] = option
	return nil
}

// GoToNext advances the cursor, stopping at the last question.
func (s *Session) GoToNext() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(s.cursor + 1)
}

// GoToPrevious moves the cursor back, stopping at the first question.
func (s *Session) GoToPrevious() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(s.cursor - 1)
}

// GoTo jumps to index, clamped into range.
func (s *Session) GoTo(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(index)
}

func (s *Session) moveLocked(index int) int {
	if s.status != model.SessionStatusRunning {
		return s.cursor
	}
	s.cursor = max(0, min(index, len(s.questions)-1))
	return s.cursor
}

// Tick takes one second off the clock. It reports whether this tick ended the
// exam; ticks after the finish are ignored.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionStatusRunning {
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		return false
	}
	s.remaining = 0
	s.finishLocked(model.FinishReasonExpired)
	return true
}

// Finish ends the exam on the candidate's request. It reports whether this
// call made the transition; repeated calls are no-ops.
func (s *Session) Finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionStatusRunning {
		return false
	}
	s.finishLocked(model.FinishReasonCandidate)
	return true
}

func (s *Session) finishLocked(reason model.FinishReason) {
	s.status = model.SessionStatusFinished
	s.reason = reason
	s.finishedAt = s.now()
	close(s.done)
}

// Done is closed once the session finishes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Finished reports whether the session has ended.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == model.SessionStatusFinished
}

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Questions returns the question sequence. The slice is shared and must not
// be modified.
func (s *Session) Questions() []model.Question {
	return s.questions
}

// Answers returns a copy of the answer record.
func (s *Session) Answers() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.answers)
}

// State returns a snapshot of the session.
func (s *Session) State() model.ExamSessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered := make([]bool, len(s.questions))
	for i, q := range s.questions {
		_, answered[i] = s.answers[q.ID]
	}

	st := model.ExamSessionState{
		ID:            s.id,
		Status:        s.status,
		Cursor:        s.cursor,
		Total:         len(s.questions),
		Answers:       maps.Clone(s.answers),
		Answered:      answered,
		AnsweredCount: len(s.answers),
		RemainingTime: s.remaining,
		RemainingText: FormatRemaining(s.remaining),
		LowTime:       s.status == model.SessionStatusRunning && s.remaining < LowTimeSeconds,
		StartedAt:     s.startedAt,
		FinishReason:  s.reason,
	}
	if s.status == model.SessionStatusFinished {
		t := s.finishedAt
		st.FinishedAt = &t
	}
	return st
}

// FormatRemaining renders seconds as H:MM:SS when an hour or more is left and
// MM:SS otherwise.
func FormatRemaining(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, sec := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
