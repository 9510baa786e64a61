package memory

import (
	"context"
	"sync"

	"quizboard-service/internal/domain"
)

// UserDirectory remembers the display name last seen for each user.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{users: make(map[string]domain.User)}
}

func (d *UserDirectory) Upsert(_ context.Context, user domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
	return nil
}

func (d *UserDirectory) Lookup(_ context.Context, ids []string) (map[string]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
