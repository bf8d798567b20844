package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
	pgstore "livequiz-service/internal/infra/postgres"
	redisstore "livequiz-service/internal/infra/redis"
	transport "livequiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 4*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var quizStore memory.QuizStore = memory.NewStaticQuizStore(sampleQuizzes())
	if pool != nil {
		quizStore = pgstore.NewQuizStore(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, quizStore, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(quizStore, quizTTL)
	}

	var rooms app.RoomRepository
	if redisClient != nil {
		rooms = redisstore.NewRoomStore(redisClient, redisTTL)
	} else {
		rooms = memory.NewRoomStore()
	}
	service := app.NewSessionService(rooms, quizRepo)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting livequiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides demo content covering every question kind; swap the
// store for the Postgres-backed one in production.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Science Warm-up",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Kind:         domain.KindMultipleChoice,
					Prompt:       "Which planet is closest to the sun?",
					Options:      []string{"Venus", "Mercury", "Mars"},
					CorrectIndex: 1,
					Points:       10,
					TimeLimitSec: 30,
				},
				{
					ID:       "q2",
					Kind:     domain.KindFillBlank,
					Prompt:   "Chemical formula of water?",
					Expected: "H2O",
					Points:   10,
				},
				{
					ID:     "q3",
					Kind:   domain.KindMatch,
					Prompt: "Match each element to its symbol",
					Pairs: []domain.MatchPair{
						{Item: "Hydrogen", Target: "H"},
						{Item: "Oxygen", Target: "O"},
						{Item: "Carbon", Target: "C"},
					},
					Points:       15,
					TimeLimitSec: 60,
				},
			},
		},
	}
}
