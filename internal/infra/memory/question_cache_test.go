package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizboard-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	source := &countingSource{QuestionStore: NewQuestionStore(sampleQuestions()...)}
	cache := NewQuestionCache(source, time.Minute)

	ids, err := cache.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	if source.calls != 1 {
		t.Fatalf("expected loader once, got %d", source.calls)
	}

	if _, err := cache.Get(context.Background(), ids[0]); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", source.calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	source := &countingSource{QuestionStore: NewQuestionStore(sampleQuestions()...)}
	cache := NewQuestionCache(source, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.ListIDs(context.Background())
	now = now.Add(2 * time.Minute) // beyond ttl + 10% jitter
	_, _ = cache.ListIDs(context.Background())

	if source.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", source.calls)
	}
}

func TestQuestionCacheUnknownQuestion(t *testing.T) {
	cache := NewQuestionCache(NewQuestionStore(sampleQuestions()...), time.Minute)

	_, err := cache.Get(context.Background(), 999)
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuestionCacheSeedInvalidates(t *testing.T) {
	cache := NewQuestionCache(NewQuestionStore(), time.Minute)

	ids, _ := cache.ListIDs(context.Background())
	if len(ids) != 0 {
		t.Fatalf("expected empty bank, got %v", ids)
	}

	seeded, err := cache.SeedIfEmpty(context.Background(), sampleQuestions())
	if err != nil || !seeded {
		t.Fatalf("expected seed, got seeded=%v err=%v", seeded, err)
	}
	ids, _ = cache.ListIDs(context.Background())
	if len(ids) != 2 {
		t.Fatalf("expected seeded ids visible, got %v", ids)
	}
}

type countingSource struct {
	*QuestionStore
	calls int
}

func (s *countingSource) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	s.calls++
	return s.QuestionStore.LoadQuestions(ctx)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Text:    "What is 2 + 2?",
			Options: [4]string{"3", "4", "5", "22"},
			Correct: domain.LabelB,
		},
		{
			Text:    "Which protocol is used to send emails?",
			Options: [4]string{"HTTP", "SMTP", "FTP", "SSH"},
			Correct: domain.LabelB,
		},
	}
}
