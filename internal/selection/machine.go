package selection

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/stemsi/acequiz-backend/internal/access"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/identity"
	"github.com/stemsi/acequiz-backend/internal/model"
)

// Selection errors. All of them leave the machine at its stage, except that a
// pick from the competitive landing has already settled on the set listing.
var (
	ErrInvalidIdentity     = errors.New("name and a candidate id in the form NNNNN-NNNNNNN-N are required")
	ErrIncompleteSelection = errors.New("selection is incomplete")
	ErrInvalidChoice       = errors.New("choice is not offered at this stage")
	ErrIllegalTransition   = errors.New("action is not allowed at this stage")
	ErrSetUnavailable      = errors.New("question set is unavailable, choose another")
	ErrAccessDenied        = fmt.Errorf("selection: %w", access.ErrDenied)
	ErrReattemptNotAllowed = errors.New("question set was already attempted")
)

// Machine is the selection state machine for one candidate. It is not safe
// for concurrent use; the owner serializes commands.
type Machine struct {
	registry       *catalog.Registry
	gate           *access.Gate
	allowReattempt bool
	completed      map[model.SetID]struct{}
	// candidate outlives every stage after identity capture and is kept as
	// prefill when stepping back to it.
	candidate *model.Candidate
	current   state
}

// NewMachine creates a machine waiting for the candidate's identity.
func NewMachine(registry *catalog.Registry, gate *access.Gate, allowReattempt bool) *Machine {
	return &Machine{
		registry:       registry,
		gate:           gate,
		allowReattempt: allowReattempt,
		completed:      make(map[model.SetID]struct{}),
		current:        identityPending{},
	}
}

// Stage returns the current stage.
func (m *Machine) Stage() model.Stage {
	return m.current.stage()
}

// Progress returns a snapshot of the choices made so far.
func (m *Machine) Progress() model.SelectionProgress {
	p := model.SelectionProgress{Stage: m.current.stage()}
	if m.candidate != nil {
		c := *m.candidate
		p.Candidate = &c
	}
	m.current.fill(&p)
	return p
}

// Candidate returns the captured identity, if any.
func (m *Machine) Candidate() (model.Candidate, bool) {
	if m.candidate == nil || m.Stage() == model.StageIdentityPending {
		return model.Candidate{}, false
	}
	return *m.candidate, true
}

// SubmitIdentity normalizes the candidate id and moves to path selection.
func (m *Machine) SubmitIdentity(name, candidateID, photo string) error {
	if _, ok := m.current.(identityPending); !ok {
		return ErrIllegalTransition
	}

	name = strings.TrimSpace(name)
	id := identity.Normalize(candidateID)
	if name == "" || !identity.Valid(id) {
		return ErrInvalidIdentity
	}

	m.candidate = &model.Candidate{Name: name, ID: id, Photo: photo}
	m.current = pathPending{}
	return nil
}

// SetPhoto replaces the candidate's photo reference without moving the stage.
func (m *Machine) SetPhoto(photo string) error {
	if m.candidate == nil {
		return ErrIllegalTransition
	}
	m.candidate.Photo = photo
	return nil
}

// ChoosePath picks the learning path.
func (m *Machine) ChoosePath(path model.LearningPath) error {
	if _, ok := m.current.(pathPending); !ok {
		return ErrIllegalTransition
	}

	if !path.Valid() {
		return fmt.Errorf("%w: path %q", ErrInvalidChoice, path)
	}

	if path == model.PathCompetitive {
		m.current = competitivePending{}
	} else {
		m.current = classBoardPending{}
	}
	return nil
}

// ChooseClassAndBoard records both axes together.
func (m *Machine) ChooseClassAndBoard(class, board string) error {
	if _, ok := m.current.(classBoardPending); !ok {
		return ErrIllegalTransition
	}

	class, board = strings.TrimSpace(class), strings.TrimSpace(board)
	if class == "" || board == "" {
		return fmt.Errorf("%w: class and board are both required", ErrIncompleteSelection)
	}

	m.current = subjectPending{class: class, board: board}
	return nil
}

// ChooseSubject picks one of the fixed subjects.
func (m *Machine) ChooseSubject(subject string) error {
	s, ok := m.current.(subjectPending)
	if !ok {
		return ErrIllegalTransition
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return fmt.Errorf("%w: subject is required", ErrIncompleteSelection)
	}
	if !slices.Contains(model.Subjects, subject) {
		return fmt.Errorf("%w: subject %q", ErrInvalidChoice, subject)
	}

	m.current = materialTypePending{class: s.class, board: s.board, subject: subject}
	return nil
}

// ChooseMaterialType moves quizzes on to set selection; other material types
// end at the content listing.
func (m *Machine) ChooseMaterialType(material model.MaterialType) error {
	s, ok := m.current.(materialTypePending)
	if !ok {
		return ErrIllegalTransition
	}
	if !material.Valid() {
		return fmt.Errorf("%w: material type %q", ErrInvalidChoice, material)
	}

	a := axes{
		path:     model.PathBoard,
		class:    s.class,
		board:    s.board,
		subject:  s.subject,
		material: material,
	}
	if material == model.MaterialQuiz {
		m.current = questionSetPending{axes: a}
	} else {
		m.current = contentListing{axes: a}
	}
	return nil
}

// Filter returns the registry filter for the current listing stage.
func (m *Machine) Filter() (catalog.Filter, bool) {
	a, ok := m.listingAxes()
	if !ok {
		return catalog.Filter{}, false
	}
	return a.filter(), true
}

func (m *Machine) listingAxes() (axes, bool) {
	switch s := m.current.(type) {
	case competitivePending:
		return axes{path: model.PathCompetitive}, true
	case questionSetPending:
		return s.axes, true
	case contentListing:
		return s.axes, true
	}
	return axes{}, false
}

// SelectQuestionSet picks a set from the current listing. Protected sets move
// to the access gate; others resolve immediately. From the competitive landing
// the machine settles on the set listing first, so a rejected pick leaves it
// at QuestionSetPending.
func (m *Machine) SelectQuestionSet(id model.SetID) error {
	a, ok := m.listingAxes()
	if !ok || m.Stage() == model.StageContentListing {
		return ErrIllegalTransition
	}
	if _, landing := m.current.(competitivePending); landing {
		m.current = questionSetPending{axes: a}
	}

	set, err := m.available(id, a)
	if err != nil {
		return err
	}
	if m.Attempted(id) && !m.allowReattempt {
		return fmt.Errorf("%w: %s", ErrReattemptNotAllowed, id)
	}

	if m.gate.RequiresSecret(id) {
		m.current = accessControlPending{axes: a, set: set}
		return nil
	}
	m.current = resolved{axes: a, set: set}
	return nil
}

func (m *Machine) available(id model.SetID, a axes) (model.QuestionSet, error) {
	for _, s := range m.registry.ListAvailable(a.filter()) {
		if s.ID != id {
			continue
		}
		if len(s.Questions) == 0 {
			break
		}
		return s, nil
	}
	return model.QuestionSet{}, fmt.Errorf("%w: %s", ErrSetUnavailable, id)
}

// Authenticate submits the secret for the pending protected set. A denial
// keeps the machine at the gate and may be retried without limit.
func (m *Machine) Authenticate(secret string) error {
	s, ok := m.current.(accessControlPending)
	if !ok {
		return ErrIllegalTransition
	}

	if m.gate.Authenticate(s.set.ID, secret) != access.Granted {
		return ErrAccessDenied
	}
	m.current = resolved{axes: s.axes, set: s.set}
	return nil
}

// Resolved returns the resolved question set.
func (m *Machine) Resolved() (model.QuestionSet, bool) {
	s, ok := m.current.(resolved)
	if !ok {
		return model.QuestionSet{}, false
	}
	return s.set, true
}

// Reopen returns a resolved set to the listing with the set kept as prefill.
// The owner calls it when the exam for the set could not be started.
func (m *Machine) Reopen() error {
	s, ok := m.current.(resolved)
	if !ok {
		return ErrIllegalTransition
	}
	m.current = questionSetPending{axes: s.axes, prefill: s.set.ID}
	return nil
}

// GoBack moves to the preceding stage.
func (m *Machine) GoBack() error {
	prev, ok := m.current.back()
	if !ok {
		return ErrIllegalTransition
	}
	m.current = prev
	return nil
}

// Restart leaves the current selection and resumes at the given point while
// keeping the identity. ResumeAtQuestionSet keeps the narrowing axes and only
// clears the chosen set.
func (m *Machine) Restart(resume model.ResumePoint) error {
	if _, ok := m.Candidate(); !ok {
		return ErrIllegalTransition
	}

	switch resume {
	case "", model.ResumeAtPath:
		m.current = pathPending{}
	case model.ResumeAtQuestionSet:
		var a axes
		switch s := m.current.(type) {
		case competitivePending:
			a = axes{path: model.PathCompetitive}
		case questionSetPending:
			a = s.axes
		case accessControlPending:
			a = s.axes
		case resolved:
			a = s.axes
		default:
			return ErrIllegalTransition
		}
		m.current = questionSetPending{axes: a}
	default:
		return fmt.Errorf("%w: resume point %q", ErrInvalidChoice, resume)
	}
	return nil
}

// MarkCompleted records that a set was finished in this process.
func (m *Machine) MarkCompleted(id model.SetID) {
	m.completed[id] = struct{}{}
}

// Attempted reports whether the set was already finished in this process.
func (m *Machine) Attempted(id model.SetID) bool {
	_, ok := m.completed[id]
	return ok
}
