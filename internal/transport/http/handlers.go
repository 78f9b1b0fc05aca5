package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/auth"
	"lms-quiz-service/internal/normalize"
)

// Handler serves the REST quiz endpoints.
type Handler struct {
	service *app.QuizService
	log     zerolog.Logger
}

func NewHandler(service *app.QuizService, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log.With().Str("component", "http").Logger()}
}

type submitRequest struct {
	QuizID  string         `json:"quizId" validate:"required"`
	Answers map[string]any `json:"answers" validate:"required"`
}

type gradeRequest struct {
	AttemptID string         `json:"attemptId" validate:"required"`
	Marks     map[string]int `json:"marks" validate:"required,min=1"`
}

// GetQuiz returns the learner view, or the full quiz for instructors.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	quizID := chi.URLParam(r, "id")
	if sess.CanInstruct() {
		quiz, err := h.service.GetQuizWithAnswers(r.Context(), sess, quizID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, quiz)
		return
	}
	view, err := h.service.GetQuiz(r.Context(), sess, quizID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if fields := bind(r.Body, &req); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission", Fields: fields})
		return
	}
	sub, err := h.service.Submit(r.Context(), auth.SessionFromContext(r.Context()), req.QuizID, normalize.Answers(req.Answers))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.History(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Lobby(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Lobby(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.Reports(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) StudentDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.StudentDetails(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// AttemptAnswers lists an attempt's questions with the learner's answers and
// current marks.
func (h *Handler) AttemptAnswers(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.AttemptAnswers(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if fields := bind(r.Body, &req); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid grading", Fields: fields})
		return
	}
	sub, err := h.service.Grade(r.Context(), auth.SessionFromContext(r.Context()), req.AttemptID, req.Marks)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, err)
}
