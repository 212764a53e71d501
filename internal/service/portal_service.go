package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/access"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/certificate"
	"github.com/stemsi/acequiz-backend/internal/config"
	"github.com/stemsi/acequiz-backend/internal/exam"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/scoring"
	"github.com/stemsi/acequiz-backend/internal/selection"
)

// Portal errors.
var (
	ErrNoActiveExam    = errors.New("no exam has been started")
	ErrExamNotFinished = errors.New("exam is still running")
	ErrOptionRequired  = errors.New("an option must be chosen")
)

const archiveTimeout = 5 * time.Second

// ResultArchiver stores issued certificates outside the process.
type ResultArchiver interface {
	Archive(ctx context.Context, rec model.CertificateRecord) error
}

// StageOptions lists what the candidate may pick at the current stage.
type StageOptions struct {
	Paths          []model.LearningPath       `json:"paths,omitempty"`
	Subjects       []string                   `json:"subjects,omitempty"`
	MaterialTypes  []model.MaterialType       `json:"material_types,omitempty"`
	QuestionSets   []model.QuestionSetSummary `json:"question_sets,omitempty"`
	RequiresSecret bool                       `json:"requires_secret,omitempty"`
}

// PortalView is the full candidate-facing state.
type PortalView struct {
	Progress model.SelectionProgress `json:"progress"`
	Options  StageOptions            `json:"options"`
	Exam     *ExamView               `json:"exam,omitempty"`
}

// ExamView is the running (or finished) exam without answer keys.
type ExamView struct {
	QuestionSetID model.SetID                  `json:"question_set_id"`
	Title         string                       `json:"title"`
	State         model.ExamSessionState       `json:"state"`
	Current       model.QuestionForCandidate   `json:"current"`
	Questions     []model.QuestionForCandidate `json:"questions"`
}

// Outcome is everything produced when an exam finishes.
type Outcome struct {
	AttemptID   string                  `json:"attempt_id"`
	Result      model.ScoreResult       `json:"result"`
	Passed      bool                    `json:"passed"`
	Percentage  int                     `json:"percentage"`
	Certificate model.CertificateData   `json:"certificate"`
	Incorrect   []model.IncorrectAnswer `json:"incorrect"`
	ShareText   string                  `json:"share_text"`
}

// ExamEventKind tags a pushed exam event.
type ExamEventKind string

const (
	ExamEventState    ExamEventKind = "state"
	ExamEventTick     ExamEventKind = "tick"
	ExamEventFinished ExamEventKind = "finished"
)

// ExamEvent is pushed to subscribers as the exam changes.
type ExamEvent struct {
	Kind      ExamEventKind
	Remaining int
	Exam      *ExamView
	Outcome   *Outcome
}

// PortalService owns the single candidate session of this instance: the
// selection machine, the running exam and its countdown, and the outcome.
type PortalService struct {
	cfg      *config.Config
	registry *catalog.Registry
	machine  *selection.Machine
	signer   *certificate.Signer
	archiver ResultArchiver
	log      zerolog.Logger

	// opMu serializes candidate commands. mu guards the fields below and the
	// machine; the countdown callbacks take only mu.
	opMu sync.Mutex
	mu   sync.Mutex

	set       model.QuestionSet
	session   *exam.Session
	countdown *exam.Countdown
	outcome   *Outcome

	subMu  sync.Mutex
	subs   map[int]chan ExamEvent
	nextID int
}

// NewPortalService creates a PortalService. archiver may be nil.
func NewPortalService(
	cfg *config.Config,
	registry *catalog.Registry,
	signer *certificate.Signer,
	archiver ResultArchiver,
	log zerolog.Logger,
) *PortalService {
	gate := access.NewGate(registry.All())
	return &PortalService{
		cfg:      cfg,
		registry: registry,
		machine:  selection.NewMachine(registry, gate, cfg.AllowReattempt),
		signer:   signer,
		archiver: archiver,
		log:      log.With().Str("component", "portal_service").Logger(),
		subs:     make(map[int]chan ExamEvent),
	}
}

// ─── Views ───────────────────────────────────────────────────────────

// View returns the current portal state.
func (s *PortalService) View() PortalView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *PortalService) viewLocked() PortalView {
	v := PortalView{Progress: s.machine.Progress()}

	switch v.Progress.Stage {
	case model.StagePathPending:
		v.Options.Paths = []model.LearningPath{model.PathCompetitive, model.PathBoard}
	case model.StageSubjectPending:
		v.Options.Subjects = model.Subjects
	case model.StageMaterialTypePending:
		v.Options.MaterialTypes = model.MaterialTypes
	case model.StageAccessControlPending:
		v.Options.RequiresSecret = true
	}
	if f, ok := s.machine.Filter(); ok {
		v.Options.QuestionSets = summaries(s.registry.ListAvailable(f))
	}

	if s.session != nil {
		ev := s.examViewLocked()
		v.Exam = &ev
	}
	return v
}

func (s *PortalService) examViewLocked() ExamView {
	st := s.session.State()
	qs := s.session.Questions()

	public := make([]model.QuestionForCandidate, len(qs))
	for i, q := range qs {
		public[i] = q.ForCandidate()
	}

	return ExamView{
		QuestionSetID: s.set.ID,
		Title:         s.set.Title,
		State:         st,
		Current:       public[st.Cursor],
		Questions:     public,
	}
}

// ListQuestionSets returns the available sets matching the filter.
func (s *PortalService) ListQuestionSets(f catalog.Filter) []model.QuestionSetSummary {
	return summaries(s.registry.ListAvailable(f))
}

func summaries(sets []model.QuestionSet) []model.QuestionSetSummary {
	out := make([]model.QuestionSetSummary, len(sets))
	for i, set := range sets {
		out[i] = set.Summary()
	}
	return out
}

// ─── Selection ───────────────────────────────────────────────────────

// SubmitIdentity captures the candidate's name, id and optional photo.
func (s *PortalService) SubmitIdentity(req model.SubmitIdentityRequest) (PortalView, error) {
	return s.step("identity", func() error {
		return s.machine.SubmitIdentity(req.Name, req.CandidateID, req.Photo)
	})
}

// SetPhoto attaches an uploaded photo reference to the candidate.
func (s *PortalService) SetPhoto(uri string) (PortalView, error) {
	return s.step("photo", func() error {
		return s.machine.SetPhoto(uri)
	})
}

// ChoosePath picks the learning path.
func (s *PortalService) ChoosePath(req model.ChoosePathRequest) (PortalView, error) {
	return s.step("path", func() error {
		return s.machine.ChoosePath(req.Path)
	})
}

// ChooseClassAndBoard records class and board together.
func (s *PortalService) ChooseClassAndBoard(req model.ChooseClassBoardRequest) (PortalView, error) {
	return s.step("class_board", func() error {
		return s.machine.ChooseClassAndBoard(req.Class, req.Board)
	})
}

// ChooseSubject picks a subject.
func (s *PortalService) ChooseSubject(req model.ChooseSubjectRequest) (PortalView, error) {
	return s.step("subject", func() error {
		return s.machine.ChooseSubject(req.Subject)
	})
}

// ChooseMaterialType picks the material type.
func (s *PortalService) ChooseMaterialType(req model.ChooseMaterialTypeRequest) (PortalView, error) {
	return s.step("material_type", func() error {
		return s.machine.ChooseMaterialType(req.MaterialType)
	})
}

// SelectQuestionSet picks a set; unprotected sets start the exam at once.
func (s *PortalService) SelectQuestionSet(req model.SelectQuestionSetRequest) (PortalView, error) {
	return s.step("question_set", func() error {
		if err := s.machine.SelectQuestionSet(req.SetID); err != nil {
			return err
		}
		return s.startIfResolvedLocked()
	})
}

// Authenticate submits the secret for a protected set.
func (s *PortalService) Authenticate(req model.AuthenticateRequest) (PortalView, error) {
	return s.step("access", func() error {
		if err := s.machine.Authenticate(req.Secret); err != nil {
			if errors.Is(err, selection.ErrAccessDenied) {
				s.log.Warn().
					Str("set_id", string(s.machine.Progress().QuestionSetID)).
					Msg("Access denied")
			}
			return err
		}
		return s.startIfResolvedLocked()
	})
}

// GoBack steps back one stage. Stepping back from a resolved set discards
// the exam like a restart.
func (s *PortalService) GoBack() (PortalView, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	stage := s.machine.Stage()
	s.mu.Unlock()

	if stage == model.StageResolved {
		return s.restartLocked(model.ResumeAtPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.GoBack(); err != nil {
		return s.viewLocked(), err
	}
	s.log.Debug().Str("stage", string(s.machine.Stage())).Msg("Selection stepped back")
	return s.viewLocked(), nil
}

// Restart discards the exam (stopping its countdown first) and resumes the
// selection at the given point with the same identity.
func (s *PortalService) Restart(req model.RestartRequest) (PortalView, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.restartLocked(req.Resume)
}

func (s *PortalService) restartLocked(resume model.ResumePoint) (PortalView, error) {
	rec := s.stopExam()

	s.mu.Lock()
	if err := s.machine.Restart(resume); err != nil {
		v := s.viewLocked()
		s.mu.Unlock()
		s.archive(rec)
		return v, err
	}
	s.session = nil
	s.countdown = nil
	s.outcome = nil
	s.set = model.QuestionSet{}
	v := s.viewLocked()
	s.mu.Unlock()

	s.archive(rec)
	s.log.Info().Str("resume", string(resume)).Msg("Portal restarted")
	return v, nil
}

// step runs one selection command under both locks and returns the view.
func (s *PortalService) step(name string, fn func() error) (PortalView, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(); err != nil {
		s.log.Debug().Err(err).Str("step", name).Msg("Selection step rejected")
		return s.viewLocked(), err
	}
	s.log.Debug().
		Str("step", name).
		Str("stage", string(s.machine.Stage())).
		Msg("Selection advanced")
	return s.viewLocked(), nil
}

// ─── Exam lifecycle ──────────────────────────────────────────────────

func (s *PortalService) startIfResolvedLocked() error {
	set, ok := s.machine.Resolved()
	if !ok {
		return nil
	}

	sess, err := exam.Start(set.Questions, s.cfg.ExamDuration)
	if err != nil {
		return s.reopenLocked(set, err)
	}
	cd, err := exam.StartCountdown(context.Background(), sess, s.cfg.TickInterval,
		s.onTick, func() { s.onExpire(sess) })
	if err != nil {
		return s.reopenLocked(set, err)
	}

	s.set = set
	s.session = sess
	s.outcome = nil
	s.countdown = cd

	s.log.Info().
		Str("attempt_id", sess.ID().String()).
		Str("set_id", string(set.ID)).
		Int("questions", len(set.Questions)).
		Dur("duration", s.cfg.ExamDuration).
		Msg("Exam started")

	ev := s.examViewLocked()
	s.broadcast(ExamEvent{Kind: ExamEventState, Exam: &ev})
	return nil
}

// reopenLocked puts the selection back on the listing after a failed start.
func (s *PortalService) reopenLocked(set model.QuestionSet, cause error) error {
	if err := s.machine.Reopen(); err != nil {
		return errors.Join(cause, err)
	}
	s.log.Error().Err(cause).Str("set_id", string(set.ID)).Msg("Failed to start exam")
	return cause
}

func (s *PortalService) onTick(remaining int) {
	s.broadcast(ExamEvent{Kind: ExamEventTick, Remaining: remaining})
}

// onExpire runs on the countdown goroutine. A superseded session is ignored.
func (s *PortalService) onExpire(sess *exam.Session) {
	s.mu.Lock()
	if s.session != sess {
		s.mu.Unlock()
		return
	}
	out, rec := s.finalizeLocked()
	s.mu.Unlock()

	s.archive(rec)
	if out != nil {
		s.broadcast(ExamEvent{Kind: ExamEventFinished, Outcome: out})
	}
}

// stopExam stops the countdown without holding mu, then freezes the session.
// It returns the record to archive if this call produced the outcome.
func (s *PortalService) stopExam() *model.CertificateRecord {
	s.mu.Lock()
	cd, sess := s.countdown, s.session
	s.mu.Unlock()

	if sess == nil {
		return nil
	}
	if cd != nil {
		cd.Stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.Finish()
	out, rec := s.finalizeLocked()
	if out != nil {
		s.broadcast(ExamEvent{Kind: ExamEventFinished, Outcome: out})
	}
	return rec
}

// finalizeLocked scores a finished session once. It returns nil when the
// outcome already exists.
func (s *PortalService) finalizeLocked() (*Outcome, *model.CertificateRecord) {
	if s.session == nil || s.outcome != nil || !s.session.Finished() {
		return nil, nil
	}

	st := s.session.State()
	answers := s.session.Answers()
	questions := s.session.Questions()
	result := scoring.Score(questions, answers)

	cand, _ := s.machine.Candidate()
	issuedAt := time.Now()
	if st.FinishedAt != nil {
		issuedAt = *st.FinishedAt
	}
	cert := certificate.BuildCertificateData(s.set, result, cand, issuedAt)
	token, err := s.signer.Sign(cert)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to sign certificate")
	}
	cert.VerificationToken = token

	s.outcome = &Outcome{
		AttemptID:   st.ID.String(),
		Result:      result,
		Passed:      scoring.Passed(result),
		Percentage:  scoring.Percentage(result),
		Certificate: cert,
		Incorrect:   certificate.ListIncorrect(questions, answers),
		ShareText:   certificate.BuildShareText(result, s.set.Title, s.cfg.AppName),
	}
	s.machine.MarkCompleted(s.set.ID)

	s.log.Info().
		Str("attempt_id", st.ID.String()).
		Str("set_id", string(s.set.ID)).
		Str("reason", string(st.FinishReason)).
		Float64("score", result.Score).
		Str("result", string(cert.Result)).
		Msg("Exam finished")

	rec := cert.Record(st.ID)
	return s.outcome, &rec
}

// archive hands a record to the archiver. Failures are logged only; the
// outcome in memory stays valid.
func (s *PortalService) archive(rec *model.CertificateRecord) {
	if rec == nil || s.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if err := s.archiver.Archive(ctx, *rec); err != nil {
		s.log.Error().Err(err).Str("serial", rec.Serial.String()).Msg("Failed to archive certificate")
	}
}

// SelectAnswer records an answer in the running exam.
func (s *PortalService) SelectAnswer(req model.SelectAnswerRequest) (ExamView, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ExamView{}, ErrNoActiveExam
	}
	if req.Option == nil {
		return s.examViewLocked(), ErrOptionRequired
	}
	if err := s.session.SelectAnswer(req.QuestionID, *req.Option); err != nil {
		return s.examViewLocked(), err
	}
	return s.examViewLocked(), nil
}

// Navigate moves the question cursor. Out-of-range targets saturate.
func (s *PortalService) Navigate(req model.NavigateRequest) (ExamView, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ExamView{}, ErrNoActiveExam
	}
	switch req.Action {
	case model.NavigateNext:
		s.session.GoToNext()
	case model.NavigatePrevious:
		s.session.GoToPrevious()
	default:
		s.session.GoTo(req.Index)
	}
	return s.examViewLocked(), nil
}

// Finish ends the exam on request. Calling it again returns the same outcome.
func (s *PortalService) Finish() (*Outcome, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	active := s.session != nil
	s.mu.Unlock()
	if !active {
		return nil, ErrNoActiveExam
	}

	s.archive(s.stopExam())

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, nil
}

// Exam returns the exam view.
func (s *PortalService) Exam() (ExamView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ExamView{}, ErrNoActiveExam
	}
	return s.examViewLocked(), nil
}

// Outcome returns the result of the finished exam.
func (s *PortalService) Outcome() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoActiveExam
	}
	if s.outcome == nil {
		return nil, ErrExamNotFinished
	}
	return s.outcome, nil
}

// Close stops any running countdown. The session itself is left as is.
func (s *PortalService) Close() {
	s.mu.Lock()
	cd := s.countdown
	s.mu.Unlock()
	if cd != nil {
		cd.Stop()
	}
}

// ─── Subscriptions ───────────────────────────────────────────────────

// Subscribe registers for exam events. The returned func unsubscribes.
func (s *PortalService) Subscribe() (<-chan ExamEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan ExamEvent, 16)
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// broadcast never blocks; a slow subscriber misses events.
func (s *PortalService) broadcast(ev ExamEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
