// Package task manages NPC task lifecycles: offer, accept, complete, expire.
// Completion rewards may be computed by an embedded Lua hook.
package task

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/id"
)

// Status represents the task lifecycle state.
type Status string

const (
	// StatusOffered means the NPC has posted the task but no one accepted it.
	StatusOffered Status = "offered"
	// StatusAccepted means a character took the task on.
	StatusAccepted Status = "accepted"
	// StatusCompleted means the task finished and its reward was paid.
	StatusCompleted Status = "completed"
	// StatusExpired means the offer lapsed before completion.
	StatusExpired Status = "expired"
)

var (
	// ErrEmptyNPC indicates a task without an owning NPC.
	ErrEmptyNPC = apperrors.New(apperrors.CodeTaskEmptyNPC, "task npc id is required")
	// ErrEmptyKind indicates a task without a kind.
	ErrEmptyKind = apperrors.New(apperrors.CodeTaskEmptyKind, "task kind is required")
)

// Task is a unit of work an NPC offers to characters in its region.
type Task struct {
	ID          string
	NPCID       string
	CharacterID string
	Kind        string
	BaseReward  int64
	Reward      int64
	Streak      int
	Status      Status

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// OfferInput contains the fields required to offer a task.
type OfferInput struct {
	NPCID      string
	Kind       string
	BaseReward int64
	Streak     int
}

// NormalizeOfferInput trims and validates offer input.
func NormalizeOfferInput(input OfferInput) (OfferInput, error) {
	input.NPCID = strings.TrimSpace(input.NPCID)
	if input.NPCID == "" {
		return OfferInput{}, ErrEmptyNPC
	}
	input.Kind = strings.ToLower(strings.TrimSpace(input.Kind))
	if input.Kind == "" {
		return OfferInput{}, ErrEmptyKind
	}
	if input.BaseReward < 0 {
		return OfferInput{}, apperrors.New(apperrors.CodePaymentInvalidAmount, "task base reward cannot be negative")
	}
	if input.Streak < 0 {
		input.Streak = 0
	}
	return input, nil
}

// Offer constructs a normalized offered task with generated ID.
func Offer(input OfferInput, now func() time.Time, idGenerator func() (string, error)) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeOfferInput(input)
	if err != nil {
		return Task{}, err
	}

	taskID, err := idGenerator()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}

	createdAt := now().UTC()
	return Task{
		ID:         taskID,
		NPCID:      normalized.NPCID,
		Kind:       normalized.Kind,
		BaseReward: normalized.BaseReward,
		Streak:     normalized.Streak,
		Status:     StatusOffered,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}

// Accept assigns an offered task to a character. Re-accepting by the same
// character is a no-op so retried grid calls stay safe.
func Accept(t Task, characterID string, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return Task{}, apperrors.New(apperrors.CodeCharacterEmptyName, "character id is required")
	}

	switch t.Status {
	case StatusOffered:
	case StatusAccepted:
		if t.CharacterID == characterID {
			return t, nil
		}
		return Task{}, transitionError(t.Status, StatusAccepted)
	default:
		return Task{}, transitionError(t.Status, StatusAccepted)
	}

	t.CharacterID = characterID
	t.Status = StatusAccepted
	t.UpdatedAt = now().UTC()
	return t, nil
}

// Complete marks an accepted task as completed with the given reward.
// Completing an already-completed task returns it unchanged.
func Complete(t Task, reward int64, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	switch t.Status {
	case StatusAccepted:
	case StatusCompleted:
		return t, nil
	default:
		return Task{}, transitionError(t.Status, StatusCompleted)
	}
	if reward < 0 {
		return Task{}, apperrors.New(apperrors.CodePaymentInvalidAmount, "task reward cannot be negative")
	}

	completedAt := now().UTC()
	t.Reward = reward
	t.Status = StatusCompleted
	t.UpdatedAt = completedAt
	t.CompletedAt = &completedAt
	return t, nil
}

// Expire lapses a task that was never completed. Expiring an already-expired
// task returns it unchanged; completed tasks cannot expire.
func Expire(t Task, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	switch t.Status {
	case StatusOffered, StatusAccepted:
	case StatusExpired:
		return t, nil
	default:
		return Task{}, transitionError(t.Status, StatusExpired)
	}

	t.Status = StatusExpired
	t.UpdatedAt = now().UTC()
	return t, nil
}

func transitionError(from, to Status) error {
	return apperrors.WithMetadata(apperrors.CodeTaskInvalidTransition,
		fmt.Sprintf("cannot move task from %s to %s", from, to),
		map[string]string{"From": string(from), "To": string(to)})
}
