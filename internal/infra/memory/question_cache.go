package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizboard-service/internal/domain"
)

// QuestionSource is the durable store behind a cache (e.g., Postgres).
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
	SeedIfEmpty(ctx context.Context, defaults []domain.Question) (bool, error)
}

// QuestionCache keeps the whole question set in memory with a TTL to avoid repeated DB hits.
// Questions never change once stored, so a stale snapshot can only miss newly added ones.
type QuestionCache struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	entry *cachedQuestions
}

type cachedQuestions struct {
	ids       []int64
	byID      map[int64]domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListIDs(ctx context.Context) ([]int64, error) {
	entry, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(entry.ids))
	copy(ids, entry.ids)
	return ids, nil
}

func (c *QuestionCache) Get(ctx context.Context, id int64) (domain.Question, error) {
	entry, err := c.load(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	q, ok := entry.byID[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (c *QuestionCache) SeedIfEmpty(ctx context.Context, defaults []domain.Question) (bool, error) {
	seeded, err := c.source.SeedIfEmpty(ctx, defaults)
	if err != nil {
		return false, err
	}
	if seeded {
		c.Invalidate()
	}
	return seeded, nil
}

// Invalidate forces the next read to reload from the source.
func (c *QuestionCache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

func (c *QuestionCache) load(ctx context.Context) (*cachedQuestions, error) {
	if entry := c.fresh(c.clock()); entry != nil {
		return entry, nil
	}

	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		if entry := c.fresh(now); entry != nil {
			return entry, nil
		}

		questions, err := c.source.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		entry := &cachedQuestions{
			ids:       make([]int64, 0, len(questions)),
			byID:      make(map[int64]domain.Question, len(questions)),
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		for _, q := range questions {
			if _, dup := entry.byID[q.ID]; !dup {
				entry.ids = append(entry.ids, q.ID)
			}
			entry.byID[q.ID] = q
		}
		sort.Slice(entry.ids, func(i, j int) bool { return entry.ids[i] < entry.ids[j] })

		c.mu.Lock()
		c.entry = entry
		c.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*cachedQuestions), nil
}

func (c *QuestionCache) fresh(now time.Time) *cachedQuestions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry != nil && c.entry.expiresAt.After(now) {
		return c.entry
	}
	return nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
