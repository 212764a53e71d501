package websocket

import "github.com/stemsi/acequiz-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNavigate Action = "navigate"
	ActionFinish   Action = "finish"
	ActionPing     Action = "ping"
)

// Request is the single shape every client message decodes into; unused
// fields stay zero for a given action.
type Request struct {
	Action Action               `json:"action"`
	QID    int                  `json:"q_id"`
	Option *int                 `json:"option"`
	To     model.NavigateAction `json:"to"`
	Index  int                  `json:"index"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventTick     Event = "tick"
	EventFinished Event = "finished"
	EventPong     Event = "pong"
	EventError    Event = "error"
)

// StateResponse carries the full exam view after a change.
type StateResponse struct {
	Event Event       `json:"event"`
	Exam  interface{} `json:"exam"`
}

// TickResponse is pushed once per countdown tick.
type TickResponse struct {
	Event         Event  `json:"event"`
	Remaining     int    `json:"remaining"`
	RemainingText string `json:"remaining_text"`
	LowTime       bool   `json:"low_time"`
}

// FinishedResponse carries the exam outcome.
type FinishedResponse struct {
	Event  Event       `json:"event"`
	Result interface{} `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
