package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"quizboard-service/internal/app"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/infra/postgres"
	infraredis "quizboard-service/internal/infra/redis"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applied, err := postgres.Migrate(ctx, pgURL)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) == 0 {
		t.Fatalf("expected migrations to be applied")
	}
	if again, err := postgres.Migrate(ctx, pgURL); err != nil || len(again) != 0 {
		t.Fatalf("second migrate should be a no-op, got %v %v", again, err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	questions := infraredis.NewQuestionCache(redisClient, postgres.NewQuestionStore(pool), 5*time.Minute)
	seeded, err := questions.SeedIfEmpty(ctx, sampleQuestions())
	if err != nil || !seeded {
		t.Fatalf("seed: seeded=%v err=%v", seeded, err)
	}
	if seeded, _ := questions.SeedIfEmpty(ctx, sampleQuestions()); seeded {
		t.Fatalf("second seed must be a no-op")
	}

	sessions, err := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	scores := postgres.NewScoreRecorder(pool)
	users := postgres.NewUserDirectory(pool)

	engine := app.NewQuizEngine(questions, sessions, scores, app.WithShuffler(app.KeepOrder))
	ranker := app.NewLeaderboardRanker(scores, users, 10)

	alice := domain.User{ID: "u1", DisplayName: "Alice"}
	bob := domain.User{ID: "u2", DisplayName: "Bob"}
	for _, u := range []domain.User{alice, bob} {
		if err := users.Upsert(ctx, u); err != nil {
			t.Fatalf("upsert %s: %v", u.ID, err)
		}
	}

	if got := play(t, ctx, engine, alice, "alice-session", []string{"A", "B", "D"}); got != (domain.Completion{Score: 2, Total: 3, Percentage: 2.0 / 3}) {
		t.Fatalf("alice: unexpected completion %+v", got)
	}
	if got := play(t, ctx, engine, bob, "bob-session", []string{"a", "b", "c"}); got.Score != 3 {
		t.Fatalf("bob: unexpected completion %+v", got)
	}

	if _, ok, _ := sessions.Get(ctx, "alice-session"); ok {
		t.Fatalf("completed session should be cleared")
	}

	top, err := ranker.Top(ctx, 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].DisplayName != "Bob" || top[1].DisplayName != "Alice" {
		t.Fatalf("expected bob leading, got %+v", top)
	}

	history, err := ranker.History(ctx, alice.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Score != 2 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func play(t *testing.T, ctx context.Context, engine *app.QuizEngine, user domain.User, key string, labels []string) domain.Completion {
	t.Helper()
	step, err := engine.Advance(ctx, user, key, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, label := range labels {
		if step.Progress == nil {
			t.Fatalf("quiz ended early")
		}
		step, err = engine.Advance(ctx, user, key, &domain.Submission{
			QuestionID:    step.Progress.Question.ID,
			SelectedLabel: label,
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if step.Completion == nil {
		t.Fatalf("expected completion, got %+v", step)
	}
	return *step.Completion
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "2 + 2?", Options: [4]string{"4", "3", "5", "22"}, Correct: domain.LabelA},
		{Text: "Capital of France?", Options: [4]string{"Rome", "Paris", "Oslo", "Bern"}, Correct: domain.LabelB},
		{Text: "Largest planet?", Options: [4]string{"Mars", "Venus", "Jupiter", "Earth"}, Correct: domain.LabelC},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
