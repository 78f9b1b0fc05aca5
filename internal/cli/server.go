package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/auth"
	"lms-quiz-service/internal/config"
	"lms-quiz-service/internal/domain"
	"lms-quiz-service/internal/infra/memory"
	pgstore "lms-quiz-service/internal/infra/postgres"
	redisstore "lms-quiz-service/internal/infra/redis"
	"lms-quiz-service/internal/logger"
	"lms-quiz-service/internal/scoring"
	transport "lms-quiz-service/internal/transport/http"
)

const devJWTSecret = "dev-secret"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (overrides config and PORT)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	runGrace := config.TTLDuration(cfg.Redis.TTL, time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var attemptStore app.AttemptRepository
	switch {
	case pool != nil:
		attemptStore = pgstore.NewAttemptStore(pool)
	case redisClient != nil:
		attemptStore = redisstore.NewAttemptStore(redisClient)
	default:
		attemptStore = memory.NewAttemptStore()
	}

	var runs app.RunRepository
	if redisClient != nil {
		runs = redisstore.NewRunStore(redisClient, runGrace)
	} else {
		runs = memory.NewRunStore()
	}

	service := app.NewQuizService(quizRepo, attemptStore, runs,
		app.WithPassThreshold(cfg.Scoring.PassThreshold),
		app.WithEngine(scoring.NewEngine(scoring.WithAutoGrade(cfg.Scoring.AutoGradeShortAnswers))),
		app.WithLogger(log),
	)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		log.Warn().Msg("auth.jwt_secret not set, using development secret")
		secret = devJWTSecret
	}
	router := transport.NewRouter(service, auth.NewAuthenticator(secret), log, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Str("backend", backendName(pool, redisClient)).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func backendName(pool *pgxpool.Pool, client *redis.Client) string {
	switch {
	case pool != nil && client != nil:
		return "postgres+redis"
	case pool != nil:
		return "postgres"
	case client != nil:
		return "redis"
	default:
		return "memory"
	}
}

// sampleQuizzes seeds the in-memory loader when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:               "quiz-1",
			Title:            "Arithmetic Basics",
			TopicName:        "Maths",
			Difficulty:       domain.DifficultyEasy,
			TimeLimitMinutes: 5,
			Questions: []domain.Question{
				{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
				{ID: "q2", Prompt: "What is 3 x 3?", Options: []string{"6", "9", "12"}, CorrectAnswer: "9"},
			},
		},
		"quiz-2": {
			ID:         "quiz-2",
			Title:      "Forces",
			TopicName:  "Physics",
			Difficulty: domain.DifficultyMedium,
			Questions: []domain.Question{
				{ID: "f1", Prompt: "Unit of force?", Options: []string{"Newton", "Joule", "Watt"}, CorrectAnswer: "Newton"},
				{ID: "f2", Prompt: "Why does an apple fall?", CorrectAnswer: "gravity"},
			},
		},
		"quiz-3": {
			ID:               "quiz-3",
			Title:            "Organic Chemistry",
			TopicName:        "Chemistry",
			Difficulty:       domain.DifficultyHard,
			TimeLimitMinutes: 20,
			Questions: []domain.Question{
				{ID: "c1", Prompt: "Simplest alkane?", Options: []string{"Methane", "Ethene", "Benzene"}, CorrectAnswer: "Methane", Points: 2},
			},
		},
	}
}
