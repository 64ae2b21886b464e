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

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/auth"
	"rich-trivia-service/internal/config"
	"rich-trivia-service/internal/domain"
	"rich-trivia-service/internal/infra/memory"
	pgstore "rich-trivia-service/internal/infra/postgres"
	redisstore "rich-trivia-service/internal/infra/redis"
	transport "rich-trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
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
	statsTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	if pool != nil {
		loader = pgstore.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = redisstore.NewCatalogCache(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var statsStore app.StatsStore = memory.NewStatsStore()
	if pool != nil {
		statsStore = pgstore.NewStatsStore(pool)
	}
	if redisClient != nil {
		statsStore = redisstore.NewStatsCache(redisClient, statsStore, statsTTL)
	}
	statsService := app.NewStatsService(statsStore)

	var credentials auth.CredentialStore = memory.NewCredentialStore()
	if pool != nil {
		credentials = pgstore.NewCredentialStore(pool)
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "dev-secret"
		log.Printf("auth.jwt_secret not set, using insecure development secret")
	}
	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	authService := auth.NewService(credentials, statsService, jwtSecret, tokenTTL)

	revealDelay := config.TTLDuration(cfg.Game.RevealDelay, time.Second)
	games := app.NewGameService(catalog, statsService, revealDelay)

	httpServer := transport.NewServer(games, authService)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
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

// sampleCatalog provides a minimal playable question set for runs without
// Postgres; seed the real catalog with the seed command in production.
func sampleCatalog() []domain.Question {
	return []domain.Question{
		{
			ID: "q-easy", Text: "What is 2 + 2?", Level: 1, Money: 100,
			Answers: []domain.Answer{
				{ID: "A", Text: "3", Correct: false},
				{ID: "B", Text: "4", Correct: true},
				{ID: "C", Text: "5", Correct: false},
			},
		},
		{
			ID: "q-mid", Text: "Which planet is known as the Red Planet?", Level: 2, Money: 500,
			Answers: []domain.Answer{
				{ID: "A", Text: "Venus", Correct: false},
				{ID: "B", Text: "Jupiter", Correct: false},
				{ID: "C", Text: "Mars", Correct: true},
			},
		},
		{
			ID: "q-hard", Text: "What is the capital of Australia?", Level: 3, Money: 1000,
			Answers: []domain.Answer{
				{ID: "A", Text: "Sydney", Correct: false},
				{ID: "B", Text: "Canberra", Correct: true},
				{ID: "C", Text: "Melbourne", Correct: false},
			},
		},
	}
}
