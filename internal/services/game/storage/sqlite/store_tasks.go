package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/veilspire/gridlink/internal/services/game/domain/task"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// PutTask persists a task record.
func (s *Store) PutTask(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.NPCID) == "" {
		return fmt.Errorf("task npc id is required")
	}
	if strings.TrimSpace(string(t.Status)) == "" {
		return fmt.Errorf("task status is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tasks (
	id, npc_id, character_id, kind, base_reward, reward, streak, status, created_at, updated_at, completed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	character_id = excluded.character_id,
	reward = excluded.reward,
	status = excluded.status,
	updated_at = excluded.updated_at,
	completed_at = excluded.completed_at
`,
		t.ID, t.NPCID, t.CharacterID, t.Kind, t.BaseReward, t.Reward, t.Streak, string(t.Status),
		toMillis(t.CreatedAt), toMillis(t.UpdatedAt), toNullMillis(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

// GetTask fetches a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return task.Task{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return task.Task{}, fmt.Errorf("task id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, npc_id, character_id, kind, base_reward, reward, streak, status, created_at, updated_at, completed_at
FROM tasks
WHERE id = ?
`, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasksByNPC returns a page of tasks for one NPC ordered by insertion.
func (s *Store) ListTasksByNPC(ctx context.Context, npcID string, pageSize int, pageToken string) (storage.TaskPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.TaskPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TaskPage{}, fmt.Errorf("storage is not configured")
	}
	npcID = strings.TrimSpace(npcID)
	if npcID == "" {
		return storage.TaskPage{}, fmt.Errorf("npc id is required")
	}

	limit := normalizePageSize(pageSize)
	afterSeq, err := decodePageToken(pageToken, "npc:"+npcID)
	if err != nil {
		return storage.TaskPage{}, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, id, npc_id, character_id, kind, base_reward, reward, streak, status, created_at, updated_at, completed_at
FROM tasks
WHERE seq > ? AND npc_id = ?
ORDER BY seq ASC
LIMIT ?
`, afterSeq, npcID, limit+1)
	if err != nil {
		return storage.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var page storage.TaskPage
	var lastSeq uint64
	for rows.Next() {
		var seq uint64
		t, err := scanTask(func(dest ...any) error {
			return rows.Scan(append([]any{&seq}, dest...)...)
		})
		if err != nil {
			return storage.TaskPage{}, fmt.Errorf("scan task: %w", err)
		}
		if len(page.Tasks) == limit {
			token, err := encodePageToken(lastSeq, "npc:"+npcID)
			if err != nil {
				return storage.TaskPage{}, err
			}
			page.NextPageToken = token
			break
		}
		page.Tasks = append(page.Tasks, t)
		lastSeq = seq
	}
	if err := rows.Err(); err != nil {
		return storage.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	return page, nil
}

func scanTask(scan func(dest ...any) error) (task.Task, error) {
	var (
		t           task.Task
		status      string
		createdAt   int64
		updatedAt   int64
		completedAt sql.NullInt64
	)
	if err := scan(
		&t.ID, &t.NPCID, &t.CharacterID, &t.Kind, &t.BaseReward, &t.Reward, &t.Streak, &status,
		&createdAt, &updatedAt, &completedAt,
	); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	t.CompletedAt = fromNullMillis(completedAt)
	return t, nil
}
