package memory

import (
	"context"
	"testing"

	"quizboard-service/internal/domain"
)

func TestQuestionStoreSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()

	seeded, err := store.SeedIfEmpty(ctx, sampleQuestions())
	if err != nil || !seeded {
		t.Fatalf("first seed: seeded=%v err=%v", seeded, err)
	}
	seeded, err = store.SeedIfEmpty(ctx, sampleQuestions())
	if err != nil || seeded {
		t.Fatalf("second seed must be a no-op: seeded=%v err=%v", seeded, err)
	}

	ids, _ := store.ListIDs(ctx)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids %v", ids)
	}
	q, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.Correct != domain.LabelB || q.Options[1] != "4" {
		t.Fatalf("unexpected question %+v", q)
	}
}

func TestQuestionStoreRejectsInvalidLabel(t *testing.T) {
	store := NewQuestionStore()
	_, err := store.SeedIfEmpty(context.Background(), []domain.Question{{Text: "?", Correct: "E"}})
	if err != domain.ErrInvalidLabel {
		t.Fatalf("expected invalid label, got %v", err)
	}
	if ids, _ := store.ListIDs(context.Background()); len(ids) != 0 {
		t.Fatalf("nothing should be stored, got %v", ids)
	}
}
