package certificate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/scoring"
)

// BuildCertificateData assembles the certificate payload for a scored attempt.
// The serial is fresh for every call; the verification token is left for the
// signer.
func BuildCertificateData(set model.QuestionSet, result model.ScoreResult, candidate model.Candidate, issuedAt time.Time) model.CertificateData {
	return model.CertificateData{
		Serial:           uuid.New(),
		CandidateName:    candidate.Name,
		CandidateID:      candidate.ID,
		Photo:            candidate.Photo,
		QuestionSetID:    set.ID,
		QuestionSetTitle: set.Title,
		TotalQuestions:   result.TotalQuestions,
		Attempted:        result.Attempted,
		Correct:          result.Correct,
		Wrong:            result.Wrong,
		Unattempted:      result.Unattempted,
		Score:            result.Score,
		ScoreText:        scoring.FormatScore(result.Score),
		ScoreFormula:     scoring.Formula(result),
		Percentage:       scoring.Percentage(result),
		Result:           scoring.Label(result),
		IssuedAt:         issuedAt.UTC(),
	}
}

// BuildShareText is the one-line summary handed to share/clipboard targets.
func BuildShareText(result model.ScoreResult, setTitle, appName string) string {
	return fmt.Sprintf("I just completed %s on %s! Score: %s / %d",
		setTitle, appName, scoring.FormatScore(result.Score), result.TotalQuestions)
}

// ListIncorrect returns the answered-but-wrong questions in exam order.
func ListIncorrect(questions []model.Question, answers map[int]int) []model.IncorrectAnswer {
	out := make([]model.IncorrectAnswer, 0)
	for _, q := range questions {
		chosen, ok := answers[q.ID]
		if !ok || chosen == q.CorrectAnswer {
			continue
		}
		item := model.IncorrectAnswer{
			Question:      q,
			ChosenOption:  chosen,
			CorrectOption: q.CorrectAnswer,
			CorrectText:   q.Options[q.CorrectAnswer],
		}
		if q.HasOption(chosen) {
			item.ChosenText = q.Options[chosen]
		}
		out = append(out, item)
	}
	return out
}
