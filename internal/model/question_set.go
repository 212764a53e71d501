package model

// SetID identifies a question set. Catalog files may use numbers or strings;
// both decode to the same textual key.
type SetID string

// Tags is the optional filter bundle attached to a question set. Tags are only
// consulted while narrowing the selection.
type Tags struct {
	Category     string `json:"category,omitempty" mapstructure:"category"`
	Class        string `json:"class,omitempty" mapstructure:"class"`
	Board        string `json:"board,omitempty" mapstructure:"board"`
	Subject      string `json:"subject,omitempty" mapstructure:"subject"`
	MaterialType string `json:"material_type,omitempty" mapstructure:"material_type"`
}

// QuestionSet is a named, ordered collection of questions.
type QuestionSet struct {
	ID          SetID      `json:"id" mapstructure:"id"`
	Title       string     `json:"title" mapstructure:"title"`
	IsAvailable bool       `json:"is_available" mapstructure:"is_available"`
	Secret      string     `json:"-" mapstructure:"secret"`
	Tags        Tags       `json:"tags" mapstructure:"tags"`
	Questions   []Question `json:"-" mapstructure:"questions"`
}

// Protected reports whether the set sits behind the access gate.
func (s QuestionSet) Protected() bool {
	return s.Secret != ""
}

// QuestionSetSummary is the listing view of a question set.
type QuestionSetSummary struct {
	ID             SetID  `json:"id"`
	Title          string `json:"title"`
	TotalQuestions int    `json:"total_questions"`
	Protected      bool   `json:"protected"`
	Tags           Tags   `json:"tags"`
}

// Summary builds the listing view.
func (s QuestionSet) Summary() QuestionSetSummary {
	return QuestionSetSummary{
		ID:             s.ID,
		Title:          s.Title,
		TotalQuestions: len(s.Questions),
		Protected:      s.Protected(),
		Tags:           s.Tags,
	}
}

// QuestionSetQuery is the optional filter accepted by the set listing.
type QuestionSetQuery struct {
	Path         LearningPath `form:"path" binding:"omitempty,oneof=competitive board"`
	Class        string       `form:"class" binding:"max=50"`
	Board        string       `form:"board" binding:"max=100"`
	Subject      string       `form:"subject" binding:"max=100"`
	MaterialType MaterialType `form:"material_type" binding:"omitempty,oneof=quiz past-papers notes"`
}
