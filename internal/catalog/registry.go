package catalog

import (
	"errors"
	"fmt"

	"github.com/stemsi/acequiz-backend/internal/model"
)

// Registry errors.
var (
	ErrNotFound    = errors.New("question set not found")
	ErrDuplicateID = errors.New("duplicate question set id")
	ErrInvalidSet  = errors.New("invalid question set")
)

// Filter narrows a listing. Every non-empty field must match the set's tag
// exactly; Path is matched against the category tag.
type Filter struct {
	Path         model.LearningPath
	Class        string
	Board        string
	Subject      string
	MaterialType model.MaterialType
}

func (f Filter) matches(t model.Tags) bool {
	switch {
	case f.Path != "" && t.Category != string(f.Path):
		return false
	case f.Class != "" && t.Class != f.Class:
		return false
	case f.Board != "" && t.Board != f.Board:
		return false
	case f.Subject != "" && t.Subject != f.Subject:
		return false
	case f.MaterialType != "" && t.MaterialType != string(f.MaterialType):
		return false
	}
	return true
}

// Registry is the read-only catalog of question sets, loaded once at startup.
type Registry struct {
	sets  []model.QuestionSet
	index map[model.SetID]int
}

// NewRegistry validates the sets and builds a registry. Catalog order is kept
// for listings.
func NewRegistry(sets []model.QuestionSet) (*Registry, error) {
	r := &Registry{
		sets:  make([]model.QuestionSet, 0, len(sets)),
		index: make(map[model.SetID]int, len(sets)),
	}
	for _, s := range sets {
		if err := Validate(s); err != nil {
			return nil, err
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		r.index[s.ID] = len(r.sets)
		r.sets = append(r.sets, s)
	}
	return r, nil
}

// Validate checks the question invariants of a single set. Question content
// itself is not inspected.
func Validate(s model.QuestionSet) error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSet)
	}
	seen := make(map[int]struct{}, len(s.Questions))
	for i, q := range s.Questions {
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: set %s question #%d has no options", ErrInvalidSet, s.ID, i+1)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return fmt.Errorf("%w: set %s question %d correct answer %d out of range",
				ErrInvalidSet, s.ID, q.ID, q.CorrectAnswer)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: set %s repeats question id %d", ErrInvalidSet, s.ID, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// ListAvailable returns the available sets matching the filter, in catalog
// order.
func (r *Registry) ListAvailable(f Filter) []model.QuestionSet {
	out := make([]model.QuestionSet, 0)
	for _, s := range r.sets {
		if s.IsAvailable && f.matches(s.Tags) {
			out = append(out, s)
		}
	}
	return out
}

// All returns every set, including unavailable ones.
func (r *Registry) All() []model.QuestionSet {
	out := make([]model.QuestionSet, len(r.sets))
	copy(out, r.sets)
	return out
}

// Resolve looks a set up by id regardless of availability.
func (r *Registry) Resolve(id model.SetID) (model.QuestionSet, error) {
	i, ok := r.index[id]
	if !ok {
		return model.QuestionSet{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.sets[i], nil
}

// Len is the number of sets in the catalog.
func (r *Registry) Len() int {
	return len(r.sets)
}
