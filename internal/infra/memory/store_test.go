package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/domain"
)

func TestRunStoreLifecycle(t *testing.T) {
	store := NewRunStore()

	store.Put(app.NewRun("run-1", "quiz-1", "u1", time.Minute))
	if _, ok := store.Get("run-1"); !ok {
		t.Fatalf("expected run present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one run, got %d", store.Len())
	}

	store.Delete("run-1")
	if _, ok := store.Get("run-1"); ok {
		t.Fatalf("expected run removed")
	}
}

func TestAttemptStoreListsPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore(domain.Attempt{ID: "seed", UserID: "u1"})
	_ = store.Record(ctx, domain.Attempt{ID: "a2", UserID: "u2"})
	_ = store.Record(ctx, domain.Attempt{ID: "a3", UserID: "u1"})

	own, _ := store.ListByUser(ctx, "u1")
	if len(own) != 2 || own[0].ID != "seed" || own[1].ID != "a3" {
		t.Fatalf("unexpected attempts for u1: %+v", own)
	}
	all, _ := store.ListAll(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}

	own[0].ID = "mutated"
	again, _ := store.ListByUser(ctx, "u1")
	if again[0].ID != "seed" {
		t.Fatalf("store must hand out copies")
	}
}

func TestAttemptStoreGetAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	_ = store.Record(ctx, domain.Attempt{
		ID:      "a1",
		UserID:  "u1",
		Status:  domain.StatusPendingReview,
		Answers: domain.SubmittedAnswers{"s1": "gravity"},
	})

	got, err := store.Get(ctx, "a1")
	if err != nil || got.Answers["s1"] != "gravity" {
		t.Fatalf("unexpected attempt %+v (%v)", got, err)
	}
	got.Answers["s1"] = "mutated"

	score := 100
	got.Score, got.Status, got.Marks = &score, domain.StatusCompleted, map[string]int{"s1": 1}
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	own, _ := store.ListByUser(ctx, "u1")
	if len(own) != 1 || own[0].Status != domain.StatusCompleted || *own[0].Score != 100 || own[0].Marks["s1"] != 1 {
		t.Fatalf("update not visible: %+v", own)
	}
	if own[0].Answers["s1"] != "gravity" {
		t.Fatalf("update must not touch answers, got %q", own[0].Answers["s1"])
	}

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
	if err := store.Update(ctx, domain.Attempt{ID: "nope"}); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found on update, got %v", err)
	}
}
