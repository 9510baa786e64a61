package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizboard-service/internal/domain"
)

var errNoClient = errors.New("redis client not configured")

// SessionStore keeps quiz state in Redis as one JSON value per session key,
// so any instance behind the load balancer can serve the next request.
// Keys expire after ttl of inactivity; an expired quiz simply starts over.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) (*SessionStore, error) {
	if client == nil {
		return nil, errNoClient
	}
	return &SessionStore{client: client, ttl: ttl}, nil
}

func (s *SessionStore) Get(ctx context.Context, key string) (domain.SessionState, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, err
	}
	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("decode session %s: %w", key, err)
	}
	return state, true, nil
}

func (s *SessionStore) Set(ctx context.Context, key string, state domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *SessionStore) key(sessionKey string) string {
	return "quiz:session:" + sessionKey
}
