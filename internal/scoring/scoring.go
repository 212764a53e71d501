package scoring

import (
	"fmt"
	"math"

	"github.com/stemsi/acequiz-backend/internal/model"
)

// Marking scheme constants.
const (
	CorrectWeight = 1.0
	WrongWeight   = 0.25
	PassRatio     = 0.40
)

// Integer forms of the scheme. Scores are tracked in quarter marks and the
// pass ratio as 2/5 so threshold comparisons never touch floating point.
const (
	quartersPerCorrect = 4
	quartersPerWrong   = 1
	passNumerator      = 2
	passDenominator    = 5
)

// Score computes the result of a finished exam. It depends only on which
// questions carry a recorded answer, so the order of questions is irrelevant.
func Score(questions []model.Question, answers map[int]int) model.ScoreResult {
	var correct, wrong int
	for _, q := range questions {
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		if chosen == q.CorrectAnswer {
			correct++
		} else {
			wrong++
		}
	}

	attempted := correct + wrong
	return model.ScoreResult{
		TotalQuestions: len(questions),
		Attempted:      attempted,
		Correct:        correct,
		Wrong:          wrong,
		Unattempted:    len(questions) - attempted,
		Score:          float64(quarters(correct, wrong)) / quartersPerCorrect,
	}
}

// Passed reports whether score >= 0.40 * total, compared exactly:
// quarters/4 >= 2*total/5  <=>  5*quarters >= 8*total.
func Passed(r model.ScoreResult) bool {
	q := quarters(r.Correct, r.Wrong)
	return passDenominator*q >= passNumerator*quartersPerCorrect*r.TotalQuestions
}

// Label returns the certificate label for a result.
func Label(r model.ScoreResult) model.ResultLabel {
	if Passed(r) {
		return model.ResultPass
	}
	return model.ResultFail
}

// Percentage is the share of correct answers, rounded to a whole percent.
func Percentage(r model.ScoreResult) int {
	if r.TotalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(r.Correct) * 100 / float64(r.TotalQuestions)))
}

// Formula renders the calculation printed on certificates.
func Formula(r model.ScoreResult) string {
	return fmt.Sprintf("(%d x %.1f) - (%d x %.2f)", r.Correct, CorrectWeight, r.Wrong, WrongWeight)
}

// FormatScore renders a score with two decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

func quarters(correct, wrong int) int {
	return correct*quartersPerCorrect - wrong*quartersPerWrong
}
