package exam

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stemsi/acequiz-backend/internal/model"
)

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            i + 1,
			Prompt:        "question",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
		}
	}
	return qs
}

func mustStart(t *testing.T, n int, d time.Duration) *Session {
	t.Helper()
	s, err := Start(makeQuestions(n), d)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestStartValidation(t *testing.T) {
	if _, err := Start(nil, time.Minute); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("empty questions: err = %v", err)
	}
	if _, err := Start(makeQuestions(1), 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: err = %v", err)
	}
	if _, err := Start(makeQuestions(1), 500*time.Millisecond); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("sub-second duration: err = %v", err)
	}

	s := mustStart(t, 3, DefaultDuration)
	st := s.State()
	if st.Status != model.SessionStatusRunning || st.Cursor != 0 || len(st.Answers) != 0 || st.RemainingTime != 3600 {
		t.Errorf("initial state = %+v", st)
	}
}

func TestSelectAnswer(t *testing.T) {
	s := mustStart(t, 4, time.Minute)

	if err := s.SelectAnswer(2, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectAnswer(2, 3); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectAnswer(2, 3); err != nil {
		t.Fatal(err)
	}

	answers := s.Answers()
	if len(answers) != 1 || answers[2] != 3 {
		t.Errorf("answers = %v, want map[2:3]", answers)
	}
	if s.State().Cursor != 0 {
		t.Error("answering must not move the cursor")
	}

	if err := s.SelectAnswer(99, 0); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown question: err = %v", err)
	}
	if err := s.SelectAnswer(1, 4); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("option 4: err = %v", err)
	}
	if err := s.SelectAnswer(1, -1); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("option -1: err = %v", err)
	}

	s.Finish()
	if err := s.SelectAnswer(1, 0); !errors.Is(err, ErrNotRunning) {
		t.Errorf("after finish: err = %v", err)
	}
	if _, ok := s.Answers()[1]; ok {
		t.Error("answer recorded after finish")
	}
}

func TestNavigationClamps(t *testing.T) {
	s := mustStart(t, 96, time.Minute)

	tests := []struct {
		name string
		move func() int
		want int
	}{
		{"previous at start", s.GoToPrevious, 0},
		{"goto -5", func() int { return s.GoTo(-5) }, 0},
		{"goto 10000", func() int { return s.GoTo(10_000) }, 95},
		{"next at end", s.GoToNext, 95},
		{"previous", s.GoToPrevious, 94},
		{"goto 10", func() int { return s.GoTo(10) }, 10},
		{"next", s.GoToNext, 11},
	}

	for _, tt := range tests {
		if got := tt.move(); got != tt.want {
			t.Errorf("%s: cursor = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestTickAtOneFinishes(t *testing.T) {
	s := mustStart(t, 2, 2*time.Second)

	if s.Tick() {
		t.Fatal("first tick should not finish")
	}
	if s.Remaining() != 1 {
		t.Fatalf("remaining = %d", s.Remaining())
	}

	if !s.Tick() {
		t.Fatal("tick at 1 should finish")
	}
	st := s.State()
	if st.Status != model.SessionStatusFinished || st.RemainingTime != 0 || st.FinishReason != model.FinishReasonExpired {
		t.Fatalf("state = %+v", st)
	}
	if st.FinishedAt == nil {
		t.Error("finished_at not set")
	}

	for i := 0; i < 3; i++ {
		if s.Tick() {
			t.Error("tick after finish reported a transition")
		}
	}
	if s.Remaining() != 0 {
		t.Errorf("remaining moved after finish: %d", s.Remaining())
	}

	select {
	case <-s.Done():
	default:
		t.Error("done channel not closed")
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	s := mustStart(t, 2, time.Minute)

	if !s.Finish() {
		t.Fatal("first finish should transition")
	}
	if s.Finish() {
		t.Error("second finish should be a no-op")
	}
	if s.Tick() {
		t.Error("tick after finish should be a no-op")
	}

	st := s.State()
	if st.FinishReason != model.FinishReasonCandidate || st.RemainingTime != 60 {
		t.Errorf("state = %+v", st)
	}
	if got := s.GoToNext(); got != 0 {
		t.Errorf("navigation after finish moved cursor to %d", got)
	}
}

func TestLastTickRacesFinish(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := mustStart(t, 1, time.Second)

		var wins atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if s.Tick() {
				wins.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if s.Finish() {
				wins.Add(1)
			}
		}()
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("round %d: %d transitions, want exactly 1", i, wins.Load())
		}
	}
}

func TestStateMatrix(t *testing.T) {
	s := mustStart(t, 3, 10*time.Minute)
	_ = s.SelectAnswer(3, 0)

	st := s.State()
	if st.AnsweredCount != 1 || len(st.Answered) != 3 || !st.Answered[2] || st.Answered[0] {
		t.Errorf("matrix = %v count %d", st.Answered, st.AnsweredCount)
	}
	if st.LowTime {
		t.Error("ten minutes left is not low")
	}
	if st.RemainingText != "10:00" {
		t.Errorf("remaining text = %q", st.RemainingText)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{3600, "1:00:00"},
		{3599, "59:59"},
		{299, "04:59"},
		{0, "00:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.secs); got != tt.want {
			t.Errorf("FormatRemaining(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestCountdownExpires(t *testing.T) {
	s := mustStart(t, 1, 3*time.Second)

	var ticks []int
	var mu sync.Mutex
	expired := make(chan struct{})

	c, err := StartCountdown(context.Background(), s, time.Millisecond, func(remaining int) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() { close(expired) })
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not expire")
	}
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) != 3 || ticks[2] != 0 {
		t.Errorf("ticks = %v, want [2 1 0]", ticks)
	}
	if s.State().FinishReason != model.FinishReasonExpired {
		t.Error("session not expired")
	}
}

func TestCountdownStopHaltsTicks(t *testing.T) {
	s := mustStart(t, 1, time.Hour)
	c, err := StartCountdown(context.Background(), s, time.Millisecond, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	c.Stop()
	c.Stop()

	before := s.Remaining()
	time.Sleep(20 * time.Millisecond)
	if after := s.Remaining(); after != before {
		t.Errorf("remaining moved after stop: %d -> %d", before, after)
	}
	if s.Finished() {
		t.Error("stopping the countdown must not finish the session")
	}
}

func TestCountdownExitsOnFinish(t *testing.T) {
	s := mustStart(t, 1, time.Hour)
	c, err := StartCountdown(context.Background(), s, time.Hour, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	s.Finish()
	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("countdown kept running after finish")
	}
}

func TestCountdownRejectsNonPositiveInterval(t *testing.T) {
	s := mustStart(t, 1, time.Hour)
	for _, d := range []time.Duration{0, -time.Second} {
		if c, err := StartCountdown(context.Background(), s, d, nil, nil); !errors.Is(err, ErrInvalidTickInterval) || c != nil {
			t.Errorf("interval %v: countdown %v err %v", d, c, err)
		}
	}
}
