package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

type statusCountRow struct {
	Status models.TaskStatus `db:"status"`
	Count  int               `db:"count"`
}

func (s *Storage) CountTasksByStatus(ctx context.Context, userID string) (map[models.TaskStatus]int, error) {
	const countTasksByStatusQuery = `
SELECT t.status AS status, count(*) AS count
FROM tasks t
WHERE ` + visibleTask + `
GROUP BY t.status
`
	var rows []statusCountRow
	if err := s.db.SelectContext(ctx, &rows, countTasksByStatusQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	counts := make(map[models.TaskStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

type tagUsageRow struct {
	ID     int64           `db:"id"`
	UserID string          `db:"user_id"`
	Name   string          `db:"name"`
	Color  models.TagColor `db:"color"`
	Count  int             `db:"count"`
}

const topTagsQuery = `
SELECT g.id, g.user_id, g.name, g.color, count(*) AS count
FROM task_tags tt
         JOIN tags g ON g.id = tt.tag_id
         JOIN tasks t ON t.id = tt.task_id
WHERE ` + visibleTask + `
GROUP BY g.id
ORDER BY count DESC, g.name
LIMIT $2
`

// TopTags ranks tags by how many visible tasks carry them, whoever
// created the tag.
func (s *Storage) TopTags(ctx context.Context, userID string, limit int) ([]models.TagUsage, error) {
	var rows []tagUsageRow
	if err := s.db.SelectContext(ctx, &rows, topTagsQuery, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to select top tags: %w", err)
	}

	usage := make([]models.TagUsage, len(rows))
	for i, r := range rows {
		usage[i] = models.TagUsage{
			Tag:   models.Tag{ID: r.ID, UserID: r.UserID, Name: r.Name, Color: r.Color},
			Count: r.Count,
		}
	}
	return usage, nil
}

func (s *Storage) UpcomingTasks(ctx context.Context, userID string, from, to time.Time, limit int) ([]models.Task, error) {
	const upcomingTasksQuery = `
WHERE ` + visibleTask + `
  AND t.status <> 'completed'
  AND t.target_date BETWEEN $2 AND $3
ORDER BY t.target_date, t.id
LIMIT $4
`
	rows, err := s.pool.Query(ctx, taskSelect+upcomingTasksQuery, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select upcoming tasks: %w", err)
	}
	return collectTasks(rows)
}

type historyRow struct {
	ID         int64           `db:"id"`
	TaskID     int64           `db:"task_id"`
	UserID     string          `db:"user_id"`
	Comment    string          `db:"comment"`
	Attachment string          `db:"attachment"`
	Amount     decimal.Decimal `db:"amount"`
	CreatedAt  time.Time       `db:"created_at"`
	Username   string          `db:"username"`
	TaskTitle  string          `db:"task_title"`
}

// RecentHistory returns the latest entries on tasks visible to the user.
func (s *Storage) RecentHistory(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	const recentHistoryQuery = `
SELECT h.id,
       h.task_id,
       h.user_id,
       h.comment,
       h.attachment,
       h.amount,
       h.created_at,
       u.username,
       t.title AS task_title
FROM history h
         JOIN users u ON u.id = h.user_id
         JOIN tasks t ON t.id = h.task_id
WHERE ` + visibleTask + `
ORDER BY h.created_at DESC, h.id DESC
LIMIT $2
`
	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, recentHistoryQuery, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to select recent history: %w", err)
	}

	entries := make([]models.HistoryEntry, len(rows))
	for i, r := range rows {
		entries[i] = models.HistoryEntry{
			ID:         r.ID,
			TaskID:     r.TaskID,
			UserID:     r.UserID,
			Comment:    r.Comment,
			Attachment: r.Attachment,
			Amount:     r.Amount,
			CreatedAt:  r.CreatedAt,
			Username:   r.Username,
			TaskTitle:  r.TaskTitle,
		}
	}
	return entries, nil
}

type projectTotalsRow struct {
	Budget decimal.Decimal `db:"budget"`
	Spent  decimal.Decimal `db:"spent"`
}

// ProjectTotals sums budgets of the owner's projects and the amounts
// logged against their tasks.
func (s *Storage) ProjectTotals(ctx context.Context, ownerID string) (services.ProjectTotals, error) {
	const projectTotalsQuery = `
SELECT COALESCE((SELECT sum(p.budget) FROM projects p WHERE p.owner_id = $1), 0) AS budget,
       COALESCE((SELECT sum(h.amount)
                 FROM history h
                          JOIN tasks t ON t.id = h.task_id
                          JOIN projects p ON p.id = t.project_id
                 WHERE p.owner_id = $1), 0)                                     AS spent
`
	var row projectTotalsRow
	if err := s.db.GetContext(ctx, &row, projectTotalsQuery, ownerID); err != nil {
		return services.ProjectTotals{}, fmt.Errorf("failed to select project totals: %w", err)
	}
	return services.ProjectTotals{Budget: row.Budget, Spent: row.Spent}, nil
}

type projectFiguresRow struct {
	ProjectID      int64           `db:"project_id"`
	Spent          decimal.Decimal `db:"spent"`
	TaskCount      int             `db:"task_count"`
	CompletedCount int             `db:"completed_count"`
}

func (s *Storage) ProjectFigures(ctx context.Context, projectIDs []int64) (map[int64]services.ProjectFigures, error) {
	figures := make(map[int64]services.ProjectFigures, len(projectIDs))
	if len(projectIDs) == 0 {
		return figures, nil
	}

	const projectFiguresQuery = `
SELECT t.project_id,
       COALESCE(sum(h.spent), 0)                      AS spent,
       count(*)                                       AS task_count,
       count(*) FILTER (WHERE t.status = 'completed') AS completed_count
FROM tasks t
         LEFT JOIN (SELECT task_id, sum(amount) AS spent
                    FROM history
                    GROUP BY task_id) h ON h.task_id = t.id
WHERE t.project_id = ANY ($1::bigint[])
GROUP BY t.project_id
`
	var rows []projectFiguresRow
	if err := s.db.SelectContext(ctx, &rows, projectFiguresQuery, projectIDs); err != nil {
		return nil, fmt.Errorf("failed to select project figures: %w", err)
	}
	for _, r := range rows {
		figures[r.ProjectID] = services.ProjectFigures{
			Spent:          r.Spent,
			TaskCount:      r.TaskCount,
			CompletedCount: r.CompletedCount,
		}
	}
	return figures, nil
}

type userCardRow struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Image    string `db:"image"`
}

// SearchUsers matches usernames and emails. With a project set only
// its owner and team are candidates.
func (s *Storage) SearchUsers(ctx context.Context, search services.UserSearch) ([]services.UserCard, error) {
	const searchUsersQuery = `
SELECT u.id,
       u.username,
       u.email,
       COALESCE(pr.image, '` + models.DefaultProfileImage + `') AS image
FROM users u
         LEFT JOIN profiles pr ON pr.user_id = u.id
WHERE NOT u.is_superuser
  AND ($1 = '' OR u.username ILIKE $2 OR u.email ILIKE $2)
  AND ($3::bigint IS NULL
    OR u.id = (SELECT p.owner_id FROM projects p WHERE p.id = $3)
    OR EXISTS (SELECT 1 FROM project_team pt WHERE pt.project_id = $3 AND pt.user_id = u.id))
ORDER BY u.username
LIMIT $4
`
	pattern := "%" + likeEscaper.Replace(search.Query) + "%"

	var rows []userCardRow
	err := s.db.SelectContext(ctx, &rows, searchUsersQuery, search.Query, pattern, search.ProjectID, search.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	cards := make([]services.UserCard, len(rows))
	for i, r := range rows {
		cards[i] = services.UserCard(r)
	}
	return cards, nil
}
