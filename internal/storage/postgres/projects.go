package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const projectSelect = `
SELECT p.id,
       p.owner_id,
       p.title,
       p.description,
       p.budget,
       p.start_date,
       p.end_date,
       p.status,
       p.created_at,
       p.updated_at,
       o.username,
       o.email
FROM projects p
         JOIN users o ON o.id = p.owner_id
`

func scanProject(row pgx.Row, p *models.Project) error {
	owner := &models.User{}
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.Budget,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
		&owner.Username,
		&owner.Email,
	)
	if err != nil {
		return err
	}
	owner.ID = p.OwnerID
	p.Owner = owner
	return nil
}

func replaceTeam(ctx context.Context, tx pgx.Tx, projectID int64, teamIDs []string) error {
	const deleteTeamQuery = `DELETE FROM project_team WHERE project_id = $1`
	if _, err := tx.Exec(ctx, deleteTeamQuery, projectID); err != nil {
		return fmt.Errorf("failed to delete project team: %w", err)
	}
	if len(teamIDs) == 0 {
		return nil
	}

	const insertTeamQuery = `
INSERT INTO project_team (project_id, user_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT DO NOTHING
`
	if _, err := tx.Exec(ctx, insertTeamQuery, projectID, teamIDs); err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return &services.ValidationError{Fields: map[string]string{"team": "unknown user"}}
		}
		return fmt.Errorf("failed to insert project team: %w", err)
	}
	return nil
}

func (s *Storage) CreateProject(ctx context.Context, project *models.Project, teamIDs []string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const insertProjectQuery = `
INSERT INTO projects (owner_id,
                      title,
                      description,
                      budget,
                      start_date,
                      end_date,
                      status,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
		err := tx.QueryRow(
			ctx,
			insertProjectQuery,
			project.OwnerID,
			project.Title,
			project.Description,
			project.Budget,
			project.StartDate,
			project.EndDate,
			project.Status,
			project.CreatedAt,
			project.UpdatedAt,
		).Scan(&project.ID)
		if err != nil {
			if isCheckViolation(err) {
				return services.ErrValidation
			}
			return fmt.Errorf("failed to insert project: %w", err)
		}

		return replaceTeam(ctx, tx, project.ID, teamIDs)
	})
}

func (s *Storage) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := scanProject(s.pool.QueryRow(ctx, projectSelect+`WHERE p.id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to select project: %w", err)
	}

	projects := []models.Project{p}
	if err = s.loadTeams(ctx, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (s *Storage) loadTeams(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]int64, len(projects))
	index := make(map[int64]int, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
		index[p.ID] = i
	}

	const selectTeamsQuery = `
SELECT pt.project_id, ` + userColumns + `
FROM project_team pt
         JOIN users u ON u.id = pt.user_id
WHERE pt.project_id = ANY ($1::bigint[])
ORDER BY u.username
`
	rows, err := s.pool.Query(ctx, selectTeamsQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to select project teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			projectID int64
			u         models.User
		)
		err = rows.Scan(
			&projectID,
			&u.ID,
			&u.Username,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.Password,
			&u.IsSuperuser,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan team member: %w", err)
		}
		i := index[projectID]
		projects[i].Team = append(projects[i].Team, u)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate over team members: %w", err)
	}
	return nil
}

func (s *Storage) UpdateProject(ctx context.Context, project *models.Project, teamIDs []string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const updateProjectQuery = `
UPDATE projects
SET title       = $2,
    description = $3,
    budget      = $4,
    start_date  = $5,
    end_date    = $6,
    status      = $7,
    updated_at  = $8
WHERE id = $1
`
		tag, err := tx.Exec(
			ctx,
			updateProjectQuery,
			project.ID,
			project.Title,
			project.Description,
			project.Budget,
			project.StartDate,
			project.EndDate,
			project.Status,
			project.UpdatedAt,
		)
		if err != nil {
			if isCheckViolation(err) {
				return services.ErrValidation
			}
			return fmt.Errorf("failed to update project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return services.ErrProjectNotFound
		}

		return replaceTeam(ctx, tx, project.ID, teamIDs)
	})
}

// DeleteProject removes the project. Its tasks stay, unlinked by the
// foreign key.
func (s *Storage) DeleteProject(ctx context.Context, id int64) error {
	const deleteProjectQuery = `DELETE FROM projects WHERE id = $1`
	tag, err := s.pool.Exec(ctx, deleteProjectQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrProjectNotFound
	}
	return nil
}

func (s *Storage) ListProjectsForUser(ctx context.Context, userID string) ([]models.Project, error) {
	const whereMemberQuery = `
WHERE p.owner_id = $1
   OR EXISTS (SELECT 1 FROM project_team pt WHERE pt.project_id = p.id AND pt.user_id = $1)
ORDER BY p.created_at DESC, p.id DESC
`
	rows, err := s.pool.Query(ctx, projectSelect+whereMemberQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err = scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over projects: %w", err)
	}
	rows.Close()

	if err = s.loadTeams(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Storage) ListProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, taskSelect+`WHERE t.project_id = $1`+taskOrder, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select project tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	if err = s.loadTaskRelations(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
