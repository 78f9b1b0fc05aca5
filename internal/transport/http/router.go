package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/auth"
)

// NewRouter mounts the REST API and the websocket endpoint. An empty
// allowedOrigins list permits every origin.
func NewRouter(service *app.QuizService, authn *auth.Authenticator, log zerolog.Logger, allowedOrigins []string) http.Handler {
	h := NewHandler(service, log)
	ws := NewWSHandler(service, log, allowedOrigins)

	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authn))
		pr.Route("/api/quiz", func(qr chi.Router) {
			qr.Post("/submit", h.Submit)
			qr.Get("/my-quizzes", h.History)
			qr.Get("/lobby", h.Lobby)
			qr.Get("/stats", h.Stats)
			qr.Get("/{id}", h.GetQuiz)
		})
		pr.Route("/api/instructor", func(ir chi.Router) {
			ir.Get("/reports", h.Reports)
			ir.Get("/student/{id}/details", h.StudentDetails)
			ir.Get("/quiz/attempt/{id}", h.AttemptAnswers)
			ir.Post("/grade", h.Grade)
		})
		pr.Get("/ws/quiz", ws.ServeWS)
	})
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
