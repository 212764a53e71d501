package model

// ScoreResult is the immutable summary computed when a session finishes.
// Attempted == Correct+Wrong and Attempted+Unattempted == TotalQuestions.
type ScoreResult struct {
	TotalQuestions int     `json:"total_questions"`
	Attempted      int     `json:"attempted"`
	Correct        int     `json:"correct"`
	Wrong          int     `json:"wrong"`
	Unattempted    int     `json:"unattempted"`
	Score          float64 `json:"score"`
}

// IncorrectAnswer pairs a wrongly answered question with the chosen and
// correct option indices, for review after the exam.
type IncorrectAnswer struct {
	Question      Question `json:"question"`
	ChosenOption  int      `json:"chosen_option"`
	CorrectOption int      `json:"correct_option"`
	ChosenText    string   `json:"chosen_text"`
	CorrectText   string   `json:"correct_text"`
}
