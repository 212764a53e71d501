package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/exam"
	"github.com/stemsi/acequiz-backend/internal/model"
	"github.com/stemsi/acequiz-backend/internal/service"
	ws "github.com/stemsi/acequiz-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the running exam: countdown ticks and the final result
// are pushed, answers and navigation come back on the same socket.
type WSHandler struct {
	portal   *service.PortalService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(portal *service.PortalService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		portal:   portal,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam/stream
func (h *WSHandler) ExamStream(c *gin.Context) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	events, unsubscribe := h.portal.Subscribe()
	defer unsubscribe()

	h.log.Info().Str("remote", c.ClientIP()).Msg("Exam stream connected")

	if view, err := h.portal.Exam(); err == nil {
		conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Exam: view})
	}

	done := make(chan struct{})
	defer close(done)
	go h.pump(conn, events, done)

	for {
		req, err := conn.ReadRequest()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Exam stream closed")
			}
			return
		}
		h.dispatch(conn, req)
	}
}

// pump forwards portal events until the read loop exits or the
// subscription closes.
func (h *WSHandler) pump(conn *ws.Conn, events <-chan service.ExamEvent, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteTyped(eventPayload(ev)); err != nil {
				h.log.Debug().Err(err).Msg("Exam stream write failed")
				return
			}
		}
	}
}

func eventPayload(ev service.ExamEvent) interface{} {
	switch ev.Kind {
	case service.ExamEventTick:
		return ws.TickResponse{
			Event:         ws.EventTick,
			Remaining:     ev.Remaining,
			RemainingText: exam.FormatRemaining(ev.Remaining),
			LowTime:       ev.Remaining < exam.LowTimeSeconds,
		}
	case service.ExamEventFinished:
		return ws.FinishedResponse{Event: ws.EventFinished, Result: ev.Outcome}
	default:
		return ws.StateResponse{Event: ws.EventState, Exam: ev.Exam}
	}
}

func (h *WSHandler) dispatch(conn *ws.Conn, req ws.Request) {
	switch req.Action {
	case ws.ActionPing:
		conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

	case ws.ActionAnswer:
		if req.Option == nil {
			conn.WriteError("VALIDATION_ERROR", "q_id and option are required")
			return
		}
		view, err := h.portal.SelectAnswer(model.SelectAnswerRequest{QuestionID: req.QID, Option: req.Option})
		h.writeState(conn, view, err)

	case ws.ActionNavigate:
		to := req.To
		switch to {
		case "":
			to = model.NavigateGoTo
		case model.NavigateNext, model.NavigatePrevious, model.NavigateGoTo:
		default:
			conn.WriteError("VALIDATION_ERROR", "to must be one of next previous goto")
			return
		}
		view, err := h.portal.Navigate(model.NavigateRequest{Action: to, Index: req.Index})
		h.writeState(conn, view, err)

	case ws.ActionFinish:
		// A first finish reaches this socket through the finished event.
		if out, err := h.portal.Outcome(); err == nil {
			conn.WriteTyped(ws.FinishedResponse{Event: ws.EventFinished, Result: out})
			return
		}
		if _, err := h.portal.Finish(); err != nil {
			h.writeErr(conn, err)
		}

	default:
		h.log.Warn().Str("action", string(req.Action)).Msg("Unknown action")
		conn.WriteError("INVALID_PAYLOAD", "unknown action: "+string(req.Action))
	}
}

func (h *WSHandler) writeState(conn *ws.Conn, view service.ExamView, err error) {
	if err != nil {
		h.writeErr(conn, err)
		return
	}
	conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Exam: view})
}

func (h *WSHandler) writeErr(conn *ws.Conn, err error) {
	_, code := classify(err)
	conn.WriteError(string(code), err.Error())
}
