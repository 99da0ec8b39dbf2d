package app

import (
	"context"

	"github.com/veilspire/gridlink/internal/services/game/domain/task"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// OfferTask posts a new NPC task.
func (s *Service) OfferTask(ctx context.Context, input task.OfferInput) (task.Task, error) {
	offered, err := task.Offer(input, s.now, s.newID)
	if err != nil {
		return task.Task{}, err
	}
	if err := s.store.PutTask(ctx, offered); err != nil {
		return task.Task{}, err
	}
	return offered, nil
}

// AcceptTask assigns a task to a character.
func (s *Service) AcceptTask(ctx context.Context, taskID, characterID string) (task.Task, error) {
	current, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return task.Task{}, err
	}
	// The character must exist before it can take work on.
	if _, err := s.store.GetCharacter(ctx, characterID); err != nil {
		return task.Task{}, err
	}

	accepted, err := task.Accept(current, characterID, s.now)
	if err != nil {
		return task.Task{}, err
	}
	if accepted.UpdatedAt.Equal(current.UpdatedAt) {
		// Idempotent replay, nothing to persist.
		return accepted, nil
	}
	if err := s.store.PutTask(ctx, accepted); err != nil {
		return task.Task{}, err
	}
	return accepted, nil
}

// CompleteTask finishes a task, computes its reward with the configured Lua
// hook (or the built-in fallback), and credits the character balance.
func (s *Service) CompleteTask(ctx context.Context, taskID string) (task.Task, error) {
	current, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return task.Task{}, err
	}
	if current.Status == task.StatusCompleted {
		return current, nil
	}

	var reward int64
	if s.rewardScript != nil {
		reward, err = s.rewardScript.Compute(current.Kind, current.BaseReward, current.Streak)
		if err != nil {
			return task.Task{}, err
		}
	} else {
		reward = task.DefaultReward(current.BaseReward, current.Streak)
	}

	completed, err := task.Complete(current, reward, s.now)
	if err != nil {
		return task.Task{}, err
	}
	if err := s.store.PutTask(ctx, completed); err != nil {
		return task.Task{}, err
	}
	if completed.CharacterID != "" && completed.Reward > 0 {
		if err := s.store.CreditBalance(ctx, completed.CharacterID, completed.Reward); err != nil {
			return task.Task{}, err
		}
	}
	s.logger.Printf("task completed id=%s character=%s reward=%d", completed.ID, completed.CharacterID, completed.Reward)
	return completed, nil
}

// ExpireTask lapses an unfinished task.
func (s *Service) ExpireTask(ctx context.Context, taskID string) (task.Task, error) {
	current, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return task.Task{}, err
	}
	expired, err := task.Expire(current, s.now)
	if err != nil {
		return task.Task{}, err
	}
	if expired.Status == current.Status {
		return expired, nil
	}
	if err := s.store.PutTask(ctx, expired); err != nil {
		return task.Task{}, err
	}
	return expired, nil
}

// ListTasksByNPC returns a page of an NPC's tasks.
func (s *Service) ListTasksByNPC(ctx context.Context, npcID string, pageSize int, pageToken string) (storage.TaskPage, error) {
	return s.store.ListTasksByNPC(ctx, npcID, pageSize, pageToken)
}
