package integration

import (
	"context"
	"database/sql"
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

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/postgres"
	infraredis "quizdesk/internal/infra/redis"
	"quizdesk/internal/infra/schema"
)

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()

	pgDSN, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDatabase(t, ctx, pgDSN)

	pool, err := pgxpool.Connect(ctx, pgDSN)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	results := infraredis.NewResultsCache(redisClient, store, 5*time.Minute)

	accounts := app.NewAccountService(store)
	quizzes := app.NewQuizService(results)
	reports := app.NewReportService(results)

	user, err := accounts.Register(ctx, "alice123", "secret1", domain.AccountStudent)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "alice123", "secret1"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	quiz := domain.QuizDefinition{
		Name:   "Capitals",
		Author: "Ms. Smith",
		Questions: []domain.Question{
			{Prompt: "Capital of France?", Answer: "Paris"},
			{Prompt: "Capital of Spain?", Answer: "Madrid"},
		},
	}
	sess := quizzes.Start(quiz, user.ID)
	if err := sess.SubmitAndAdvance("paris"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := sess.SubmitAndAdvance("Lisbon"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	result, err := quizzes.Finish(ctx, sess)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Score.CorrectCount != 1 || result.Score.TotalQuestions != 2 {
		t.Fatalf("expected 1/2, got %d/%d", result.Score.CorrectCount, result.Score.TotalQuestions)
	}

	history, err := reports.History(ctx, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Score != result.Score {
		t.Fatalf("history did not round-trip: %+v", history)
	}

	now := time.Now()
	series, err := reports.Dashboard(ctx, user.ID, now, 5)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("expected 5 dashboard entries, got %d", len(series))
	}
	today := series[4]
	if today.Attempts != 1 || today.AvgPercentage != 50 {
		t.Fatalf("expected today {1, 50%%}, got %+v", today)
	}

	// A second attempt must invalidate the cached window.
	sess = quizzes.Start(quiz, user.ID)
	if err := sess.SubmitAndAdvance("Paris"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := sess.SubmitAndAdvance("Madrid"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := quizzes.Finish(ctx, sess); err != nil {
		t.Fatalf("finish: %v", err)
	}
	series, err = reports.Dashboard(ctx, user.ID, now, 5)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	today = series[4]
	if today.Attempts != 2 || today.AvgPercentage != 75 {
		t.Fatalf("expected today {2, 75%%}, got %+v", today)
	}
}

func migrateDatabase(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()
	if err := schema.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}
