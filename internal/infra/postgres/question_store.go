package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizboard-service/internal/domain"
)

// QuestionStore reads questions from the questions table.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

const questionColumns = `id, text, option_a, option_b, option_c, option_d, correct_option`

func (s *QuestionStore) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *QuestionStore) Get(ctx context.Context, id int64) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question %d: %w", id, err)
	}
	return q, nil
}

func (s *QuestionStore) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// SeedIfEmpty inserts defaults inside one transaction holding an exclusive
// table lock, so concurrent starters cannot both seed.
func (s *QuestionStore) SeedIfEmpty(ctx context.Context, defaults []domain.Question) (bool, error) {
	for _, q := range defaults {
		if err := q.Validate(); err != nil {
			return false, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE questions IN EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("lock questions: %w", err)
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return false, fmt.Errorf("count questions: %w", err)
	}
	if count > 0 || len(defaults) == 0 {
		return false, nil
	}

	for _, q := range defaults {
		_, err := tx.Exec(ctx,
			`INSERT INTO questions (text, option_a, option_b, option_c, option_d, correct_option) VALUES ($1, $2, $3, $4, $5, $6)`,
			q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], string(q.Correct))
		if err != nil {
			return false, fmt.Errorf("insert question: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q       domain.Question
		correct string
	)
	if err := row.Scan(&q.ID, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &correct); err != nil {
		return domain.Question{}, err
	}
	q.Correct = domain.Label(correct)
	return q, nil
}
