package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultLabel is the pass/fail label printed on a certificate.
type ResultLabel string

const (
	ResultPass ResultLabel = "PASS"
	ResultFail ResultLabel = "FAIL"
)

// CertificateData is everything an external certificate renderer may assume
// is present. It carries no layout information.
type CertificateData struct {
	Serial            uuid.UUID   `json:"serial"`
	CandidateName     string      `json:"candidate_name"`
	CandidateID       string      `json:"candidate_id"`
	Photo             string      `json:"photo,omitempty"`
	QuestionSetID     SetID       `json:"question_set_id"`
	QuestionSetTitle  string      `json:"question_set_title"`
	TotalQuestions    int         `json:"total_questions"`
	Attempted         int         `json:"attempted"`
	Correct           int         `json:"correct"`
	Wrong             int         `json:"wrong"`
	Unattempted       int         `json:"unattempted"`
	Score             float64     `json:"score"`
	ScoreText         string      `json:"score_text"`
	ScoreFormula      string      `json:"score_formula"`
	Percentage        int         `json:"percentage"`
	Result            ResultLabel `json:"result"`
	IssuedAt          time.Time   `json:"issued_at"`
	VerificationToken string      `json:"verification_token,omitempty"`
}

// CertificateRecord is the archived form of an issued certificate.
type CertificateRecord struct {
	Serial           uuid.UUID   `json:"serial"`
	AttemptID        uuid.UUID   `json:"attempt_id"`
	CandidateName    string      `json:"candidate_name"`
	CandidateID      string      `json:"candidate_id"`
	QuestionSetID    SetID       `json:"question_set_id"`
	QuestionSetTitle string      `json:"question_set_title"`
	TotalQuestions   int         `json:"total_questions"`
	Correct          int         `json:"correct"`
	Wrong            int         `json:"wrong"`
	Unattempted      int         `json:"unattempted"`
	Score            float64     `json:"score"`
	Result           ResultLabel `json:"result"`
	IssuedAt         time.Time   `json:"issued_at"`
}

// Record converts certificate data into its archived form.
func (c CertificateData) Record(attemptID uuid.UUID) CertificateRecord {
	return CertificateRecord{
		Serial:           c.Serial,
		AttemptID:        attemptID,
		CandidateName:    c.CandidateName,
		CandidateID:      c.CandidateID,
		QuestionSetID:    c.QuestionSetID,
		QuestionSetTitle: c.QuestionSetTitle,
		TotalQuestions:   c.TotalQuestions,
		Correct:          c.Correct,
		Wrong:            c.Wrong,
		Unattempted:      c.Unattempted,
		Score:            c.Score,
		Result:           c.Result,
		IssuedAt:         c.IssuedAt,
	}
}
