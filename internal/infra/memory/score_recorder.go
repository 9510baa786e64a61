package memory

import (
	"context"
	"sync"

	"quizboard-service/internal/domain"
)

// ScoreRecorder is an append-only in-memory score log.
type ScoreRecorder struct {
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreRecorder() *ScoreRecorder {
	return &ScoreRecorder{}
}

func (r *ScoreRecorder) Append(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *ScoreRecorder) ListAll(_ context.Context) ([]domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ScoreRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *ScoreRecorder) ListByUser(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ScoreRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}
