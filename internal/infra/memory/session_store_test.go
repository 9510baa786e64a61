package memory

import (
	"context"
	"testing"

	"quizboard-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok, _ := store.Get(ctx, "s1"); ok {
		t.Fatalf("expected no session yet")
	}

	state := domain.SessionState{Order: []int64{3, 1, 2}, Total: 3}
	if err := store.Set(ctx, "s1", state); err != nil {
		t.Fatalf("set: %v", err)
	}
	state.Order[0] = 99

	got, ok, err := store.Get(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("expected session present, ok=%v err=%v", ok, err)
	}
	if got.Order[0] != 3 {
		t.Fatalf("stored order must not alias caller slice, got %v", got.Order)
	}
	if _, ok, _ := store.Get(ctx, "s2"); ok {
		t.Fatalf("keys must be isolated")
	}

	_ = store.Delete(ctx, "s1")
	if _, ok, _ := store.Get(ctx, "s1"); ok {
		t.Fatalf("expected session removed")
	}
}
