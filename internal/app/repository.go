package app

import (
	"context"

	"quizboard-service/internal/domain"
)

// QuestionBank is the read-only question repository (in-memory, Postgres, cached).
type QuestionBank interface {
	ListIDs(ctx context.Context) ([]int64, error)
	// Get returns domain.ErrQuestionNotFound for unknown IDs.
	Get(ctx context.Context, id int64) (domain.Question, error)
	// SeedIfEmpty inserts defaults only when the bank holds no question and reports whether it did.
	SeedIfEmpty(ctx context.Context, defaults []domain.Question) (bool, error)
}

// SessionStateStore keeps in-progress quiz state per opaque session key.
type SessionStateStore interface {
	Get(ctx context.Context, key string) (domain.SessionState, bool, error)
	Set(ctx context.Context, key string, state domain.SessionState) error
	Delete(ctx context.Context, key string) error
}

// ScoreRecorder is the append-only store of completed attempts.
type ScoreRecorder interface {
	// Append persists rec and returns it with its assigned ID.
	Append(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error)
	ListAll(ctx context.Context) ([]domain.ScoreRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
}

// UserDirectory resolves display names for score records.
type UserDirectory interface {
	Upsert(ctx context.Context, user domain.User) error
	Lookup(ctx context.Context, ids []string) (map[string]domain.User, error)
}
