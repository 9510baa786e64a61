package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizboard-service/internal/domain"
)

// QuestionSource is the durable store behind the cache (e.g., Postgres).
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
	SeedIfEmpty(ctx context.Context, defaults []domain.Question) (bool, error)
}

// QuestionCache keeps the question set in one Redis hash and falls back to the source on a miss.
// Questions are stored as: HSET quiz:questions {questionID} {question JSON}
type QuestionCache struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListIDs(ctx context.Context) ([]int64, error) {
	questions, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(questions))
	for id := range questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (c *QuestionCache) Get(ctx context.Context, id int64) (domain.Question, error) {
	raw, err := c.client.HGet(ctx, questionsKey, strconv.FormatInt(id, 10)).Bytes()
	if err == nil {
		var q domain.Question
		if json.Unmarshal(raw, &q) == nil {
			return q, nil
		}
	}

	questions, err := c.all(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	q, ok := questions[id]
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
		if err := c.client.Del(ctx, questionsKey).Err(); err != nil {
			return true, err
		}
	}
	return seeded, nil
}

const questionsKey = "quiz:questions"

func (c *QuestionCache) all(ctx context.Context) (map[int64]domain.Question, error) {
	if cached, ok := c.readCache(ctx); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := c.readCache(ctx); ok {
			return cached, nil
		}

		questions, err := c.source.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[int64]domain.Question, len(questions))
		fields := make(map[string]interface{}, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
			data, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			fields[strconv.FormatInt(q.ID, 10)] = data
		}
		if len(fields) > 0 {
			// One MULTI so readers never see a half-filled hash or one without a TTL.
			_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, questionsKey)
				pipe.HSet(ctx, questionsKey, fields)
				if ttl := c.ttlWithJitter(); ttl > 0 {
					pipe.Expire(ctx, questionsKey, ttl)
				}
				return nil
			})
			if err != nil {
				_ = c.client.Del(ctx, questionsKey).Err()
			}
		}

		return byID, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]domain.Question), nil
}

func (c *QuestionCache) readCache(ctx context.Context) (map[int64]domain.Question, bool) {
	fields, err := c.client.HGetAll(ctx, questionsKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	byID := make(map[int64]domain.Question, len(fields))
	for field, raw := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, false
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		byID[id] = q
	}
	return byID, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
