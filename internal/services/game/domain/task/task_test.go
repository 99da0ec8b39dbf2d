package task

import (
	"testing"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

func offeredTask(t *testing.T) Task {
	t.Helper()
	task, err := Offer(OfferInput{NPCID: "npc-1", Kind: "courier", BaseReward: 100, Streak: 2},
		nil, func() (string, error) { return "task-1", nil })
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	return task
}

func TestOffer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	task, err := Offer(OfferInput{NPCID: " npc-1 ", Kind: " Courier ", BaseReward: 100},
		func() time.Time { return now }, func() (string, error) { return "task-1", nil })
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if task.NPCID != "npc-1" {
		t.Fatalf("npc id = %q, want npc-1", task.NPCID)
	}
	if task.Kind != "courier" {
		t.Fatalf("kind = %q, want lowercase courier", task.Kind)
	}
	if task.Status != StatusOffered {
		t.Fatalf("status = %q, want offered", task.Status)
	}
	if !task.CreatedAt.Equal(now) {
		t.Fatal("expected created at to match now")
	}
}

func TestOfferRejections(t *testing.T) {
	t.Parallel()

	if _, err := Offer(OfferInput{Kind: "courier"}, nil, nil); apperrors.CodeOf(err) != apperrors.CodeTaskEmptyNPC {
		t.Fatalf("expected empty npc code, got %v", err)
	}
	if _, err := Offer(OfferInput{NPCID: "npc-1"}, nil, nil); apperrors.CodeOf(err) != apperrors.CodeTaskEmptyKind {
		t.Fatalf("expected empty kind code, got %v", err)
	}
	if _, err := Offer(OfferInput{NPCID: "npc-1", Kind: "courier", BaseReward: -1}, nil, nil); err == nil {
		t.Fatal("expected error for negative base reward")
	}
}

func TestAcceptLifecycle(t *testing.T) {
	t.Parallel()

	task := offeredTask(t)
	accepted, err := Accept(task, "char-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted || accepted.CharacterID != "char-1" {
		t.Fatalf("accepted = %+v, want accepted by char-1", accepted)
	}

	// Same character accepting again is a no-op.
	again, err := Accept(accepted, "char-1", nil)
	if err != nil {
		t.Fatalf("re-accept: %v", err)
	}
	if again.Status != StatusAccepted {
		t.Fatal("expected task to stay accepted")
	}

	// A different character cannot steal an accepted task.
	if _, err := Accept(accepted, "char-2", nil); apperrors.CodeOf(err) != apperrors.CodeTaskInvalidTransition {
		t.Fatalf("expected invalid transition code, got %v", err)
	}
}

func TestCompleteIdempotent(t *testing.T) {
	t.Parallel()

	task := offeredTask(t)
	accepted, err := Accept(task, "char-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	completed, err := Complete(accepted, 120, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != StatusCompleted || completed.Reward != 120 {
		t.Fatalf("completed = %+v, want completed with reward 120", completed)
	}
	if completed.CompletedAt == nil {
		t.Fatal("expected completed at to be set")
	}

	again, err := Complete(completed, 999, nil)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if again.Reward != 120 {
		t.Fatalf("reward = %d, want original 120 on replay", again.Reward)
	}
}

func TestCompleteRequiresAccepted(t *testing.T) {
	t.Parallel()

	task := offeredTask(t)
	if _, err := Complete(task, 100, nil); apperrors.CodeOf(err) != apperrors.CodeTaskInvalidTransition {
		t.Fatalf("expected invalid transition code, got %v", err)
	}
}

func TestExpire(t *testing.T) {
	t.Parallel()

	task := offeredTask(t)
	expired, err := Expire(task, nil)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if expired.Status != StatusExpired {
		t.Fatalf("status = %q, want expired", expired.Status)
	}

	if _, err := Expire(expired, nil); err != nil {
		t.Fatalf("re-expire should be a no-op, got %v", err)
	}

	accepted, err := Accept(offeredTask(t), "char-1", nil)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	completed, err := Complete(accepted, 10, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := Expire(completed, nil); apperrors.CodeOf(err) != apperrors.CodeTaskInvalidTransition {
		t.Fatalf("expected invalid transition code, got %v", err)
	}
}
