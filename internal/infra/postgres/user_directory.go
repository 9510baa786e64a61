package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizboard-service/internal/domain"
)

// UserDirectory mirrors identities seen by the auth layer into the users table.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) Upsert(ctx context.Context, user domain.User) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (id, display_name, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET display_name=EXCLUDED.display_name, updated_at=now()
		 WHERE users.display_name IS DISTINCT FROM EXCLUDED.display_name`,
		user.ID, user.DisplayName)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}

func (d *UserDirectory) Lookup(ctx context.Context, ids []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := d.pool.Query(ctx, `SELECT id, display_name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}
