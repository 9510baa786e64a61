package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"quizboard-service/internal/domain"
)

// LeaderboardHub fans out top-N snapshots to live subscribers whenever a score is recorded.
type LeaderboardHub struct {
	ranker *LeaderboardRanker
	now    func() time.Time
	log    logrus.FieldLogger

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub(ranker *LeaderboardRanker, log logrus.FieldLogger) *LeaderboardHub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LeaderboardHub{
		ranker:      ranker,
		now:         time.Now,
		log:         log,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe returns a channel that first receives the current top list and then every update.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := h.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	ch <- initial
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish recomputes the top list and pushes it to every subscriber.
func (h *LeaderboardHub) Publish(ctx context.Context) error {
	lb, err := h.snapshot(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(lb)
	return nil
}

// RecordHook adapts Publish to the engine's completion hook.
func (h *LeaderboardHub) RecordHook() RecordHook {
	return func(ctx context.Context, rec domain.ScoreRecord) {
		if err := h.Publish(ctx); err != nil {
			h.log.WithError(err).WithField("record", rec.ID).Warn("leaderboard publish failed")
		}
	}
}

// Subscribers reports how many listeners are attached.
func (h *LeaderboardHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *LeaderboardHub) snapshot(ctx context.Context) (domain.Leaderboard, error) {
	top, err := h.ranker.Top(ctx, 0)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Top: top, UpdatedAt: h.now().UTC()}, nil
}

func (h *LeaderboardHub) broadcastLocked(lb domain.Leaderboard) {
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
