package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

func (s *Storage) AppendHistory(ctx context.Context, entry *models.HistoryEntry, task *models.Task) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const insertHistoryQuery = `
INSERT INTO history (task_id,
                     user_id,
                     comment,
                     attachment,
                     amount,
                     created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
		err := tx.QueryRow(
			ctx,
			insertHistoryQuery,
			entry.TaskID,
			entry.UserID,
			entry.Comment,
			entry.Attachment,
			entry.Amount,
			entry.CreatedAt,
		).Scan(&entry.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return services.ErrTaskNotFound
			}
			return fmt.Errorf("failed to insert history entry: %w", err)
		}

		if task == nil {
			return nil
		}
		tag, err := tx.Exec(ctx, updateTaskStatusQuery, task.ID, task.Status, task.ClosureDate, task.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return services.ErrTaskNotFound
		}
		return nil
	})
}

func (s *Storage) ListHistory(ctx context.Context, taskID int64) ([]models.HistoryEntry, error) {
	const selectHistoryQuery = `
SELECT h.id,
       h.task_id,
       h.user_id,
       h.comment,
       h.attachment,
       h.amount,
       h.created_at,
       u.username,
       t.title
FROM history h
         JOIN users u ON u.id = h.user_id
         JOIN tasks t ON t.id = h.task_id
WHERE h.task_id = $1
ORDER BY h.created_at DESC, h.id DESC
`
	rows, err := s.pool.Query(ctx, selectHistoryQuery, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var h models.HistoryEntry
		err = rows.Scan(
			&h.ID,
			&h.TaskID,
			&h.UserID,
			&h.Comment,
			&h.Attachment,
			&h.Amount,
			&h.CreatedAt,
			&h.Username,
			&h.TaskTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over history: %w", err)
	}
	return entries, nil
}
