package model

// Question is a single multiple-choice item. Questions are immutable once
// loaded from the catalog.
type Question struct {
	ID            int      `json:"id" mapstructure:"id"`
	Prompt        string   `json:"question" mapstructure:"question"`
	Options       []string `json:"options" mapstructure:"options"`
	CorrectAnswer int      `json:"correct_answer" mapstructure:"correct_answer"`
	Category      string   `json:"category" mapstructure:"category"`
}

// HasOption reports whether idx is a valid index into Options.
func (q Question) HasOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// QuestionForCandidate is a question without the correct answer, sent while
// the exam is running.
type QuestionForCandidate struct {
	ID       int      `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// ForCandidate strips the answer key.
func (q Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:       q.ID,
		Prompt:   q.Prompt,
		Options:  q.Options,
		Category: q.Category,
	}
}
