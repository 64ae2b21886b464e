package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/auth"
	"rich-trivia-service/internal/domain"
	pgstore "rich-trivia-service/internal/infra/postgres"
	pgmigrations "rich-trivia-service/internal/infra/postgres/migrations"
	redisstore "rich-trivia-service/internal/infra/redis"
)

func TestGameAndStatsEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCatalog(t, ctx, pgURL, sampleCatalog())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	catalog := redisstore.NewCatalogCache(redisClient, pgstore.NewCatalogLoader(pool), 5*time.Minute)
	stats := app.NewStatsService(redisstore.NewStatsCache(redisClient, pgstore.NewStatsStore(pool), 5*time.Minute))
	authService := auth.NewService(pgstore.NewCredentialStore(pool), stats, "integration-secret", time.Hour)
	games := app.NewGameService(catalog, stats, 10*time.Millisecond)

	identity, token, err := authService.Register(ctx, "alice@example.com", "s3cret", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := authService.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	done := make(chan app.Snapshot, 4)
	game, err := games.StartGame(ctx, func(snap app.Snapshot) { done <- snap })
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	// Play to completion: always answer correctly.
	for {
		snap := game.Snapshot()
		correct := correctAnswerID(t, snap.Question)
		if _, err := game.Submit(correct); err != nil {
			t.Fatalf("submit: %v", err)
		}
		committed := waitCommit(t, done)
		if committed.Finished {
			if committed.Outcome != domain.OutcomeWon {
				t.Fatalf("expected won, got %+v", committed)
			}
			stats.RecordResult(ctx, identity.UID, committed.Summary())
			break
		}
	}

	record, err := stats.Stats(ctx, identity.UID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if record.AnsweredCount != 2 || record.MoneyEarned != 500 {
		t.Fatalf("expected 2 answered and 500 earned, got %+v", record)
	}

	// A second (lost) session accumulates on top.
	stats.RecordResult(ctx, identity.UID, app.Summary{Outcome: domain.OutcomeLost, CorrectCount: 1, MoneyWon: 100})
	record, err = stats.Stats(ctx, identity.UID)
	if err != nil {
		t.Fatalf("stats 2: %v", err)
	}
	if record.AnsweredCount != 3 || record.MoneyEarned != 600 {
		t.Fatalf("expected 3/600 after second session, got %+v", record)
	}
}

func waitCommit(t *testing.T, done chan app.Snapshot) app.Snapshot {
	t.Helper()
	select {
	case snap := <-done:
		return snap
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for commit")
		return app.Snapshot{}
	}
}

func correctAnswerID(t *testing.T, q domain.Question) string {
	t.Helper()
	for _, a := range q.Answers {
		if a.Correct {
			return a.ID
		}
	}
	t.Fatalf("question %s has no correct answer", q.ID)
	return ""
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, dsn string, catalog []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, q := range catalog {
		doc := map[string]any{
			"text":    q.Text,
			"level":   q.Level,
			"money":   q.Money,
			"answers": q.Answers,
		}
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal question: %v", err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO questions (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
			q.ID, string(data)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func sampleCatalog() []domain.Question {
	return []domain.Question{
		{
			ID: "q1", Text: "What is 2 + 2?", Level: 1, Money: 100,
			Answers: []domain.Answer{
				{ID: "A", Text: "3", Correct: false},
				{ID: "B", Text: "4", Correct: true},
			},
		},
		{
			ID: "q2", Text: "What is 6 x 7?", Level: 2, Money: 500,
			Answers: []domain.Answer{
				{ID: "A", Text: "42", Correct: true},
				{ID: "B", Text: "36", Correct: false},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
