package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizboard-service/internal/domain"
)

// ScoreRecorder appends completed attempts to the scores table. Rows are never updated.
type ScoreRecorder struct {
	pool *pgxpool.Pool
}

func NewScoreRecorder(pool *pgxpool.Pool) *ScoreRecorder {
	return &ScoreRecorder{pool: pool}
}

func (r *ScoreRecorder) Append(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO scores (user_id, score, total, recorded_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		rec.UserID, rec.Score, rec.Total, rec.RecordedAt,
	).Scan(&rec.ID)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("insert score: %w", err)
	}
	return rec, nil
}

func (r *ScoreRecorder) ListAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, score, total, recorded_at FROM scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scanScores(rows)
}

func (r *ScoreRecorder) ListByUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, score, total, recorded_at FROM scores WHERE user_id=$1 ORDER BY recorded_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list scores of %s: %w", userID, err)
	}
	return scanScores(rows)
}

func scanScores(rows pgx.Rows) ([]domain.ScoreRecord, error) {
	defer rows.Close()
	var records []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Score, &rec.Total, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		rec.RecordedAt = rec.RecordedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
