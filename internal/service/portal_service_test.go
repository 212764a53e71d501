package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/certificate"
	"github.com/stemsi/acequiz-backend/internal/config"
	"github.com/stemsi/acequiz-backend/internal/exam"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/selection"
)

type fakeArchiver struct {
	mu   sync.Mutex
	recs []model.CertificateRecord
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, rec model.CertificateRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return f.err
}

func (f *fakeArchiver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

func portalQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Prompt: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1},
		{ID: 2, Prompt: "3+3?", Options: []string{"6", "7"}, CorrectAnswer: 0},
		{ID: 3, Prompt: "1+1?", Options: []string{"2", "3"}, CorrectAnswer: 0},
	}
}

func newTestPortal(t *testing.T, mutate func(*config.Config)) (*PortalService, *fakeArchiver) {
	t.Helper()

	sets := []model.QuestionSet{
		{ID: "1", Title: "Paper 1", IsAvailable: true, Tags: model.Tags{Category: "competitive"}, Questions: portalQuestions()},
		{ID: "vip", Title: "Special", IsAvailable: true, Secret: "open-sesame", Tags: model.Tags{Category: "competitive"}, Questions: portalQuestions()},
	}
	reg, err := catalog.NewRegistry(sets)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	cfg := &config.Config{
		AppName:        "AceQuiz Pro",
		ExamDuration:   time.Hour,
		TickInterval:   time.Hour,
		AllowReattempt: true,
	}
	if mutate != nil {
		mutate(cfg)
	}

	arch := &fakeArchiver{}
	p := NewPortalService(cfg, reg, certificate.NewSigner("secret", "acequiz"), arch, zerolog.New(io.Discard))
	t.Cleanup(p.Close)
	return p, arch
}

func mustStep(t *testing.T, name string, _ PortalView, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func enterCompetitive(t *testing.T, p *PortalService) {
	t.Helper()
	v, err := p.SubmitIdentity(model.SubmitIdentityRequest{Name: "Ayesha", CandidateID: "3520212345671"})
	mustStep(t, "identity", v, err)
	v, err = p.ChoosePath(model.ChoosePathRequest{Path: model.PathCompetitive})
	mustStep(t, "path", v, err)
}

func intPtr(i int) *int { return &i }

func TestPortalFullFlow(t *testing.T) {
	p, arch := newTestPortal(t, nil)
	enterCompetitive(t, p)

	v := p.View()
	if len(v.Options.QuestionSets) != 2 {
		t.Fatalf("listing = %+v", v.Options.QuestionSets)
	}

	v, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"})
	mustStep(t, "select", v, err)
	if v.Progress.Stage != model.StageResolved || v.Exam == nil {
		t.Fatalf("exam not started: %+v", v.Progress)
	}
	if v.Exam.State.Status != model.SessionStatusRunning || v.Exam.State.RemainingTime != 3600 {
		t.Errorf("exam state = %+v", v.Exam.State)
	}

	if _, err := p.Outcome(); !errors.Is(err, ErrExamNotFinished) {
		t.Errorf("outcome before finish: err = %v", err)
	}

	for qid, opt := range map[int]int{1: 1, 2: 1} {
		if _, err := p.SelectAnswer(model.SelectAnswerRequest{QuestionID: qid, Option: intPtr(opt)}); err != nil {
			t.Fatalf("answer %d: %v", qid, err)
		}
	}
	if _, err := p.SelectAnswer(model.SelectAnswerRequest{QuestionID: 42, Option: intPtr(0)}); !errors.Is(err, exam.ErrUnknownQuestion) {
		t.Errorf("unknown question: err = %v", err)
	}

	ev, err := p.Navigate(model.NavigateRequest{Action: model.NavigateGoTo, Index: 99})
	if err != nil || ev.State.Cursor != 2 || ev.Current.ID != 3 {
		t.Errorf("navigate: cursor %d current %d err %v", ev.State.Cursor, ev.Current.ID, err)
	}

	out, err := p.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out.Result.Correct != 1 || out.Result.Wrong != 1 || out.Result.Unattempted != 1 {
		t.Errorf("result = %+v", out.Result)
	}
	if out.Result.Score != 0.75 || out.Passed {
		t.Errorf("score %.2f passed %v", out.Result.Score, out.Passed)
	}
	if out.Certificate.CandidateID != "35202-1234567-1" || out.Certificate.VerificationToken == "" {
		t.Errorf("certificate = %+v", out.Certificate)
	}
	if len(out.Incorrect) != 1 || out.Incorrect[0].Question.ID != 2 {
		t.Errorf("incorrect = %+v", out.Incorrect)
	}
	if out.ShareText != "I just completed Paper 1 on AceQuiz Pro! Score: 0.75 / 3" {
		t.Errorf("share text = %q", out.ShareText)
	}

	again, err := p.Finish()
	if err != nil || again != out {
		t.Errorf("second finish should return the same outcome")
	}
	if arch.count() != 1 {
		t.Errorf("archived %d times, want 1", arch.count())
	}

	if _, err := p.SelectAnswer(model.SelectAnswerRequest{QuestionID: 3, Option: intPtr(0)}); !errors.Is(err, exam.ErrNotRunning) {
		t.Errorf("answer after finish: err = %v", err)
	}
}

func TestPortalTimerExpiry(t *testing.T) {
	p, arch := newTestPortal(t, func(c *config.Config) {
		c.ExamDuration = 2 * time.Second
		c.TickInterval = 5 * time.Millisecond
	})
	events, unsubscribe := p.Subscribe()
	defer unsubscribe()

	enterCompetitive(t, p)
	if _, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind != ExamEventFinished {
				continue
			}
			if ev.Outcome == nil || ev.Outcome.Result.Attempted != 0 {
				t.Fatalf("outcome = %+v", ev.Outcome)
			}
			out, err := p.Outcome()
			if err != nil || out != ev.Outcome {
				t.Fatalf("stored outcome mismatch: %v", err)
			}
			view, _ := p.Exam()
			if view.State.FinishReason != model.FinishReasonExpired || view.State.RemainingTime != 0 {
				t.Errorf("state = %+v", view.State)
			}
			if arch.count() != 1 {
				t.Errorf("archived %d times", arch.count())
			}
			return
		case <-deadline:
			t.Fatal("exam did not expire")
		}
	}
}

func TestPortalAccessGate(t *testing.T) {
	p, _ := newTestPortal(t, nil)
	enterCompetitive(t, p)

	v, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "vip"})
	mustStep(t, "select", v, err)
	if v.Progress.Stage != model.StageAccessControlPending || !v.Options.RequiresSecret || v.Exam != nil {
		t.Fatalf("view = %+v", v)
	}

	v, err = p.Authenticate(model.AuthenticateRequest{Secret: "nope"})
	if !errors.Is(err, selection.ErrAccessDenied) {
		t.Fatalf("err = %v", err)
	}
	if v.Progress.Stage != model.StageAccessControlPending {
		t.Errorf("stage after denial = %s", v.Progress.Stage)
	}

	v, err = p.Authenticate(model.AuthenticateRequest{Secret: "open-sesame"})
	mustStep(t, "authenticate", v, err)
	if v.Exam == nil || v.Exam.QuestionSetID != "vip" {
		t.Errorf("exam not started after grant")
	}
}

func TestPortalRestartDiscardsExam(t *testing.T) {
	p, arch := newTestPortal(t, nil)
	enterCompetitive(t, p)
	if _, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"}); err != nil {
		t.Fatal(err)
	}

	v, err := p.Restart(model.RestartRequest{Resume: model.ResumeAtQuestionSet})
	mustStep(t, "restart", v, err)
	if v.Progress.Stage != model.StageQuestionSetPending || v.Progress.Path != model.PathCompetitive || v.Exam != nil {
		t.Errorf("view = %+v", v.Progress)
	}
	if v.Progress.Candidate == nil || v.Progress.Candidate.Name != "Ayesha" {
		t.Error("identity lost on restart")
	}
	if _, err := p.Exam(); !errors.Is(err, ErrNoActiveExam) {
		t.Errorf("exam after restart: err = %v", err)
	}
	if arch.count() != 1 {
		t.Errorf("a restarted running exam is still scored and archived once, got %d", arch.count())
	}

	v, err = p.GoBack()
	mustStep(t, "back", v, err)
	if v.Progress.Stage != model.StageCompetitivePending {
		t.Errorf("view = %+v", v.Progress)
	}

	v, err = p.GoBack()
	mustStep(t, "back", v, err)
	if v.Progress.Stage != model.StagePathPending || v.Progress.Path != model.PathCompetitive {
		t.Errorf("view = %+v", v.Progress)
	}
}

func TestPortalReattemptDisabled(t *testing.T) {
	p, _ := newTestPortal(t, func(c *config.Config) { c.AllowReattempt = false })
	enterCompetitive(t, p)
	if _, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Finish(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Restart(model.RestartRequest{Resume: model.ResumeAtQuestionSet}); err != nil {
		t.Fatal(err)
	}

	if _, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"}); !errors.Is(err, selection.ErrReattemptNotAllowed) {
		t.Errorf("err = %v, want ErrReattemptNotAllowed", err)
	}
}

func TestPortalArchiveFailureKeepsOutcome(t *testing.T) {
	p, arch := newTestPortal(t, nil)
	arch.err = errors.New("redis down")
	enterCompetitive(t, p)
	if _, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"}); err != nil {
		t.Fatal(err)
	}

	out, err := p.Finish()
	if err != nil || out == nil {
		t.Fatalf("finish: %v", err)
	}
	if got, err := p.Outcome(); err != nil || got != out {
		t.Errorf("outcome lost after archive failure: %v", err)
	}
}

func TestPortalExamCommandsWithoutExam(t *testing.T) {
	p, _ := newTestPortal(t, nil)

	if _, err := p.Finish(); !errors.Is(err, ErrNoActiveExam) {
		t.Errorf("finish: err = %v", err)
	}
	if _, err := p.Navigate(model.NavigateRequest{Action: model.NavigateNext}); !errors.Is(err, ErrNoActiveExam) {
		t.Errorf("navigate: err = %v", err)
	}
	if _, err := p.Outcome(); !errors.Is(err, ErrNoActiveExam) {
		t.Errorf("outcome: err = %v", err)
	}
}

func TestPortalFailedStartReturnsToListing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"zero duration", func(c *config.Config) { c.ExamDuration = 0 }, exam.ErrInvalidDuration},
		{"zero tick", func(c *config.Config) { c.TickInterval = 0 }, exam.ErrInvalidTickInterval},
		{"negative tick", func(c *config.Config) { c.TickInterval = -time.Second }, exam.ErrInvalidTickInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, arch := newTestPortal(t, tt.mutate)
			enterCompetitive(t, p)

			v, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if v.Progress.Stage != model.StageQuestionSetPending || v.Progress.QuestionSetID != "1" || v.Exam != nil {
				t.Errorf("view = %+v", v.Progress)
			}
			if _, err := p.Exam(); !errors.Is(err, ErrNoActiveExam) {
				t.Errorf("exam: err = %v", err)
			}
			if arch.count() != 0 {
				t.Errorf("archived %d records", arch.count())
			}
		})
	}
}

func TestPortalSelectAnswerRequiresOption(t *testing.T) {
	p, _ := newTestPortal(t, nil)
	enterCompetitive(t, p)
	if _, err := p.SelectQuestionSet(model.SelectQuestionSetRequest{SetID: "1"}); err != nil {
		t.Fatal(err)
	}

	v, err := p.SelectAnswer(model.SelectAnswerRequest{QuestionID: 1})
	if !errors.Is(err, ErrOptionRequired) {
		t.Fatalf("err = %v", err)
	}
	if len(v.State.Answers) != 0 {
		t.Errorf("answers = %v", v.State.Answers)
	}
}
