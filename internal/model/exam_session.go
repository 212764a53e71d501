package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusRunning  SessionStatus = "RUNNING"
	SessionStatusFinished SessionStatus = "FINISHED"
)

// FinishReason records what ended a session.
type FinishReason string

const (
	FinishReasonCandidate FinishReason = "candidate"
	FinishReasonExpired   FinishReason = "expired"
)

// ExamSessionState is a point-in-time copy of an exam session, safe to hand to
// other goroutines.
type ExamSessionState struct {
	ID            uuid.UUID     `json:"id"`
	Status        SessionStatus `json:"status"`
	Cursor        int           `json:"cursor"`
	Total         int           `json:"total_questions"`
	Answers       map[int]int   `json:"answers"`
	Answered      []bool        `json:"answered"`
	AnsweredCount int           `json:"answered_count"`
	RemainingTime int           `json:"remaining_seconds"`
	RemainingText string        `json:"remaining_text"`
	LowTime       bool          `json:"low_time"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	FinishReason  FinishReason  `json:"finish_reason,omitempty"`
}

// SelectAnswerRequest records an answer for one question.
type SelectAnswerRequest struct {
	QuestionID int  `json:"question_id"`
	Option     *int `json:"option" binding:"required,min=0"`
}

// NavigateAction is a cursor movement.
type NavigateAction string

const (
	NavigateNext     NavigateAction = "next"
	NavigatePrevious NavigateAction = "previous"
	NavigateGoTo     NavigateAction = "goto"
)

// NavigateRequest moves the question cursor.
type NavigateRequest struct {
	Action NavigateAction `json:"action" binding:"required,oneof=next previous goto"`
	Index  int            `json:"index"`
}
