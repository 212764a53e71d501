package selection

import (
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/model"
)

// state is one variant of the selection machine. Each variant carries only the
// fields that are meaningful at its stage, so a deeper choice cannot exist
// without the shallower ones it depends on.
type state interface {
	stage() model.Stage
	fill(p *model.SelectionProgress)
	// back returns the preceding variant. Fields chosen in the exited stage
	// and deeper are dropped; the predecessor keeps its own choice as prefill.
	back() (state, bool)
}

// axes is the narrowing bundle that leads to a question set listing.
type axes struct {
	path     model.LearningPath
	class    string
	board    string
	subject  string
	material model.MaterialType
}

func (a axes) filter() catalog.Filter {
	return catalog.Filter{
		Path:         a.path,
		Class:        a.class,
		Board:        a.board,
		Subject:      a.subject,
		MaterialType: a.material,
	}
}

func (a axes) fill(p *model.SelectionProgress) {
	p.Path = a.path
	p.Class = a.class
	p.Board = a.board
	p.Subject = a.subject
	p.MaterialType = a.material
}


type identityPending struct{}

func (identityPending) stage() model.Stage { return model.StageIdentityPending }

func (identityPending) fill(*model.SelectionProgress) {}

func (identityPending) back() (state, bool) { return nil, false }

type pathPending struct {
	prefill model.LearningPath
}

func (pathPending) stage() model.Stage { return model.StagePathPending }

func (s pathPending) fill(p *model.SelectionProgress) {
	p.Path = s.prefill
}

func (pathPending) back() (state, bool) {
	return identityPending{}, true
}

// competitivePending is the paper landing. Its listing is shown as a preview;
// picking a set commits the move to questionSetPending first.
type competitivePending struct {
	prefill model.SetID
}

func (competitivePending) stage() model.Stage { return model.StageCompetitivePending }

func (s competitivePending) fill(p *model.SelectionProgress) {
	p.Path = model.PathCompetitive
	p.QuestionSetID = s.prefill
}

func (competitivePending) back() (state, bool) {
	return pathPending{prefill: model.PathCompetitive}, true
}

type classBoardPending struct {
	class, board string
}

func (classBoardPending) stage() model.Stage { return model.StageClassBoardPending }

func (s classBoardPending) fill(p *model.SelectionProgress) {
	p.Path = model.PathBoard
	p.Class = s.class
	p.Board = s.board
}

func (classBoardPending) back() (state, bool) {
	return pathPending{prefill: model.PathBoard}, true
}

type subjectPending struct {
	class, board string
	subject      string
}

func (subjectPending) stage() model.Stage { return model.StageSubjectPending }

func (s subjectPending) fill(p *model.SelectionProgress) {
	p.Path = model.PathBoard
	p.Class = s.class
	p.Board = s.board
	p.Subject = s.subject
}

func (s subjectPending) back() (state, bool) {
	return classBoardPending{class: s.class, board: s.board}, true
}

type materialTypePending struct {
	class, board string
	subject      string
	prefill      model.MaterialType
}

func (materialTypePending) stage() model.Stage { return model.StageMaterialTypePending }

func (s materialTypePending) fill(p *model.SelectionProgress) {
	p.Path = model.PathBoard
	p.Class = s.class
	p.Board = s.board
	p.Subject = s.subject
	p.MaterialType = s.prefill
}

func (s materialTypePending) back() (state, bool) {
	return subjectPending{class: s.class, board: s.board, subject: s.subject}, true
}

// contentListing is where past papers and notes end up. Nothing beyond it is
// handled here.
type contentListing struct {
	axes axes
}

func (contentListing) stage() model.Stage { return model.StageContentListing }

func (s contentListing) fill(p *model.SelectionProgress) {
	s.axes.fill(p)
}

func (s contentListing) back() (state, bool) {
	return materialTypePending{
		class:   s.axes.class,
		board:   s.axes.board,
		subject: s.axes.subject,
		prefill: s.axes.material,
	}, true
}

// questionSetPending is where both paths pick a set.
type questionSetPending struct {
	axes    axes
	prefill model.SetID
}

func (questionSetPending) stage() model.Stage { return model.StageQuestionSetPending }

func (s questionSetPending) fill(p *model.SelectionProgress) {
	s.axes.fill(p)
	p.QuestionSetID = s.prefill
}

func (s questionSetPending) back() (state, bool) {
	if s.axes.path == model.PathCompetitive {
		return competitivePending{prefill: s.prefill}, true
	}
	return materialTypePending{
		class:   s.axes.class,
		board:   s.axes.board,
		subject: s.axes.subject,
		prefill: s.axes.material,
	}, true
}

type accessControlPending struct {
	axes axes
	set  model.QuestionSet
}

func (accessControlPending) stage() model.Stage { return model.StageAccessControlPending }

func (s accessControlPending) fill(p *model.SelectionProgress) {
	s.axes.fill(p)
	p.QuestionSetID = s.set.ID
}

func (s accessControlPending) back() (state, bool) {
	return questionSetPending{axes: s.axes, prefill: s.set.ID}, true
}

type resolved struct {
	axes axes
	set  model.QuestionSet
}

func (resolved) stage() model.Stage { return model.StageResolved }

func (s resolved) fill(p *model.SelectionProgress) {
	s.axes.fill(p)
	p.QuestionSetID = s.set.ID
}

// back from a resolved set starts a fresh selection with the same identity.
func (resolved) back() (state, bool) {
	return pathPending{}, true
}
