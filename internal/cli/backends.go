package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quizboard-service/internal/app"
	"quizboard-service/internal/config"
	"quizboard-service/internal/infra/memory"
	"quizboard-service/internal/infra/postgres"
	redisstore "quizboard-service/internal/infra/redis"
)

// backends holds the stores selected by config. Postgres backs questions,
// scores and users; Redis backs sessions and the question cache. Whatever
// is not configured falls back to process memory.
type backends struct {
	questions app.QuestionBank
	sessions  app.SessionStateStore
	scores    app.ScoreRecorder
	users     app.UserDirectory

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}

	var source memory.QuestionSource
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		source = postgres.NewQuestionStore(pool)
		b.scores = postgres.NewScoreRecorder(pool)
		b.users = postgres.NewUserDirectory(pool)
		log.Info("using postgres for questions, scores and users")
	} else {
		source = memory.NewQuestionStore()
		b.scores = memory.NewScoreRecorder()
		b.users = memory.NewUserDirectory()
		log.Warn("postgres not configured; scores are kept in memory only")
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
	if redisClient != nil {
		b.questions = redisstore.NewQuestionCache(redisClient, source, cacheTTL)
		sessions, err := redisstore.NewSessionStore(redisClient, sessionTTL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.sessions = sessions
		log.WithField("addr", cfg.Redis.Addr).Info("using redis for sessions and question cache")
	} else {
		b.questions = memory.NewQuestionCache(source, cacheTTL)
		b.sessions = memory.NewSessionStore()
	}
	return b, nil
}
