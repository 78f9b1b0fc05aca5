package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/auth"
	"lms-quiz-service/internal/domain"
)

// WSHandler drives timed quiz runs over a websocket. The server sends the
// quiz, collects answers and submits automatically when time runs out.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      zerolog.Logger
	// deadline returns the channel that fires when a run must be auto-submitted.
	deadline func(run *app.Run) <-chan time.Time
}

func NewWSHandler(service *app.QuizService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		deadline: func(run *app.Run) <-chan time.Time {
			return time.After(run.Remaining())
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == origin {
				return true
			}
		}
		return false
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId" validate:"required"`
	Value      any    `json:"value"`
}

type quizPayload struct {
	RunID            string          `json:"runId"`
	Quiz             domain.QuizView `json:"quiz"`
	Deadline         time.Time       `json:"deadline"`
	RemainingSeconds int             `json:"remainingSeconds"`
}

type answeredPayload struct {
	QuestionID string `json:"questionId"`
}

type resultPayload struct {
	domain.Submission
	AutoSubmitted bool `json:"autoSubmitted"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS starts a run for the authenticated caller and upgrades the request.
// Failures before the upgrade are reported as plain HTTP errors.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing quizId"})
		return
	}
	sess := auth.SessionFromContext(r.Context())
	run, view, err := h.service.StartRun(r.Context(), sess, quizID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.service.AbandonRun(sess, run.ID())
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()
	out := outbox{send: send, done: writerDone}

	inbound := make(chan inboundMessage)
	readerDone := make(chan struct{})
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-readerDone:
				return
			}
		}
	}()

	defer func() {
		close(readerDone)
		close(send)
		<-writerDone
	}()

	live := out.emit(outboundMessage[any]{Type: "quiz", Payload: quizPayload{
		RunID:            run.ID(),
		Quiz:             view,
		Deadline:         run.Deadline(),
		RemainingSeconds: int(run.Remaining() / time.Second),
	}})

	expired := h.deadline(run)
	for live {
		select {
		case <-expired:
			if !h.finish(r, sess, run, out, true) {
				h.service.AbandonRun(sess, run.ID())
			}
			return
		case msg, ok := <-inbound:
			if !ok {
				live = false
				continue
			}
			switch msg.Type {
			case "answer":
				var payload answerPayload
				if err := json.Unmarshal(msg.Payload, &payload); err != nil || check(&payload) != nil {
					live = out.emit(errorMessage("invalid answer payload"))
					continue
				}
				if err := h.service.Answer(r.Context(), sess, run.ID(), payload.QuestionID, cast.ToString(payload.Value)); err != nil {
					live = out.emit(errorMessage(err.Error()))
					continue
				}
				live = out.emit(outboundMessage[any]{Type: "answered", Payload: answeredPayload{QuestionID: payload.QuestionID}})
			case "submit":
				// a failed submit leaves the run open for another try
				if h.finish(r, sess, run, out, false) {
					return
				}
				live = !out.closed()
			default:
				live = out.emit(errorMessage("unsupported message type"))
			}
		}
	}
	h.service.AbandonRun(sess, run.ID())
	h.log.Debug().Str("run_id", run.ID()).Msg("run abandoned")
}

// finish submits the run and reports whether it was recorded.
func (h *WSHandler) finish(r *http.Request, sess domain.Session, run *app.Run, out outbox, auto bool) bool {
	sub, err := h.service.FinishRun(r.Context(), sess, run.ID())
	if err != nil {
		out.emit(errorMessage(err.Error()))
		return false
	}
	out.emit(outboundMessage[any]{Type: "result", Payload: resultPayload{Submission: sub, AutoSubmitted: auto}})
	return true
}

// outbox hands messages to the connection writer without blocking once the
// writer has stopped.
type outbox struct {
	send chan<- outboundMessage[any]
	done <-chan struct{}
}

// emit reports false when the writer is gone and msg was dropped.
func (o outbox) emit(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

func (o outbox) closed() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
