package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func scanTask(row pgx.Row, t *models.Task) error {
	var (
		cost             decimal.NullDecimal
		owner            models.User
		respName, respEm *string
	)
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.ProjectID,
		&t.ResponsibleID,
		&t.Title,
		&t.Description,
		&cost,
		&t.TargetDate,
		&t.ClosureDate,
		&t.Status,
		&t.Progress,
		&t.Observations,
		&t.CreatedAt,
		&t.UpdatedAt,
		&owner.Username,
		&owner.Email,
		&respName,
		&respEm,
	)
	if err != nil {
		return err
	}

	if cost.Valid {
		t.EstimatedCost = &cost.Decimal
	}
	owner.ID = t.OwnerID
	t.Owner = &owner
	if t.ResponsibleID != nil && respName != nil {
		t.Responsible = &models.User{ID: *t.ResponsibleID, Username: *respName}
		if respEm != nil {
			t.Responsible.Email = *respEm
		}
	}
	return nil
}

func collectTasks(rows pgx.Rows) ([]models.Task, error) {
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over tasks: %w", err)
	}
	return tasks, nil
}

// loadTaskRelations fills collaborators and tags of every task with
// one query each. Tags keep their association order.
func (s *Storage) loadTaskRelations(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]int64, len(tasks))
	index := make(map[int64]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		index[t.ID] = i
	}

	const selectCollaboratorsQuery = `
SELECT tc.task_id, u.id, u.username, u.email, u.first_name, u.last_name
FROM task_collaborators tc
         JOIN users u ON u.id = tc.user_id
WHERE tc.task_id = ANY ($1::bigint[])
ORDER BY u.username
`
	rows, err := s.pool.Query(ctx, selectCollaboratorsQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select collaborators: %w", err)
	}
	for rows.Next() {
		var (
			taskID int64
			u      models.User
		)
		if err = rows.Scan(&taskID, &u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan collaborator: %w", err)
		}
		i := index[taskID]
		tasks[i].Collaborators = append(tasks[i].Collaborators, u)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate over collaborators: %w", err)
	}

	const selectTaskTagsQuery = `
SELECT tt.task_id, g.id, g.user_id, g.name, g.color
FROM task_tags tt
         JOIN tags g ON g.id = tt.tag_id
WHERE tt.task_id = ANY ($1::bigint[])
ORDER BY tt.task_id, tt.position
`
	rows, err = s.pool.Query(ctx, selectTaskTagsQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select task tags: %w", err)
	}
	for rows.Next() {
		var (
			taskID int64
			tag    models.Tag
		)
		if err = rows.Scan(&taskID, &tag.ID, &tag.UserID, &tag.Name, &tag.Color); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task tag: %w", err)
		}
		i := index[taskID]
		tasks[i].Tags = append(tasks[i].Tags, tag)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate over task tags: %w", err)
	}
	return nil
}

func replaceTaskLinks(ctx context.Context, tx pgx.Tx, taskID int64, collaboratorIDs []string, tagIDs []int64) error {
	const deleteCollaboratorsQuery = `DELETE FROM task_collaborators WHERE task_id = $1`
	if _, err := tx.Exec(ctx, deleteCollaboratorsQuery, taskID); err != nil {
		return fmt.Errorf("failed to delete collaborators: %w", err)
	}
	if len(collaboratorIDs) > 0 {
		const insertCollaboratorsQuery = `
INSERT INTO task_collaborators (task_id, user_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT DO NOTHING
`
		if _, err := tx.Exec(ctx, insertCollaboratorsQuery, taskID, collaboratorIDs); err != nil {
			return fmt.Errorf("failed to insert collaborators: %w", err)
		}
	}

	const deleteTagsQuery = `DELETE FROM task_tags WHERE task_id = $1`
	if _, err := tx.Exec(ctx, deleteTagsQuery, taskID); err != nil {
		return fmt.Errorf("failed to delete task tags: %w", err)
	}
	if len(tagIDs) > 0 {
		const insertTagsQuery = `
INSERT INTO task_tags (task_id, tag_id, position)
SELECT $1, x.tag_id, x.position
FROM unnest($2::bigint[]) WITH ORDINALITY AS x(tag_id, position)
ON CONFLICT DO NOTHING
`
		if _, err := tx.Exec(ctx, insertTagsQuery, taskID, tagIDs); err != nil {
			return fmt.Errorf("failed to insert task tags: %w", err)
		}
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task, collaboratorIDs []string, tagIDs []int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const insertTaskQuery = `
INSERT INTO tasks (owner_id,
                   project_id,
                   responsible_id,
                   title,
                   description,
                   estimated_cost,
                   target_date,
                   closure_date,
                   status,
                   progress,
                   observations,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id
`
		err := tx.QueryRow(
			ctx,
			insertTaskQuery,
			task.OwnerID,
			task.ProjectID,
			task.ResponsibleID,
			task.Title,
			task.Description,
			nullDecimal(task.EstimatedCost),
			task.TargetDate,
			task.ClosureDate,
			task.Status,
			task.Progress,
			task.Observations,
			task.CreatedAt,
			task.UpdatedAt,
		).Scan(&task.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return services.ErrValidation
			}
			return fmt.Errorf("failed to insert task: %w", err)
		}
		s.logger.Debug().
			Int64("task_id", task.ID).
			Msg("inserted task row")

		return replaceTaskLinks(ctx, tx, task.ID, collaboratorIDs, tagIDs)
	})
}

func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := scanTask(s.pool.QueryRow(ctx, taskSelect+`WHERE t.id = $1`, id), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}

	tasks := []models.Task{t}
	if err = s.loadTaskRelations(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (s *Storage) UpdateTask(ctx context.Context, task *models.Task, collaboratorIDs []string, tagIDs []int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const updateTaskQuery = `
UPDATE tasks
SET project_id     = $2,
    responsible_id = $3,
    title          = $4,
    description    = $5,
    estimated_cost = $6,
    target_date    = $7,
    closure_date   = $8,
    status         = $9,
    progress       = $10,
    observations   = $11,
    updated_at     = $12
WHERE id = $1
`
		tag, err := tx.Exec(
			ctx,
			updateTaskQuery,
			task.ID,
			task.ProjectID,
			task.ResponsibleID,
			task.Title,
			task.Description,
			nullDecimal(task.EstimatedCost),
			task.TargetDate,
			task.ClosureDate,
			task.Status,
			task.Progress,
			task.Observations,
			task.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return services.ErrValidation
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return services.ErrTaskNotFound
		}

		return replaceTaskLinks(ctx, tx, task.ID, collaboratorIDs, tagIDs)
	})
}

const updateTaskStatusQuery = `
UPDATE tasks
SET status       = $2,
    closure_date = $3,
    updated_at   = $4
WHERE id = $1
`

func (s *Storage) UpdateTaskStatus(ctx context.Context, task *models.Task) error {
	tag, err := s.pool.Exec(ctx, updateTaskStatusQuery, task.ID, task.Status, task.ClosureDate, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes the task. History and links go with it.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	const deleteTaskQuery = `DELETE FROM tasks WHERE id = $1`
	tag, err := s.pool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, filter services.TaskFilter) ([]models.Task, int, error) {
	countQuery, countArgs := buildCountTasksQuery(filter)
	var total int
	if err := s.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	if total == 0 || (filter.Limit > 0 && filter.Offset >= total) {
		return []models.Task{}, total, nil
	}

	listQuery, listArgs := buildListTasksQuery(filter)
	rows, err := s.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	if err = s.loadTaskRelations(ctx, tasks); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
