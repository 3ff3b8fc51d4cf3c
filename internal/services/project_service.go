package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

type projectServiceImpl struct {
	logger  zerolog.Logger
	storage Storage
	now     func() time.Time
}

func NewProjectService(
	logger zerolog.Logger,
	storage Storage,
) ProjectService {
	return &projectServiceImpl{
		logger:  logger,
		storage: storage,
		now:     time.Now,
	}
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, params ProjectParams) (*models.Project, error) {
	now := s.now()
	project := models.Project{
		OwnerID:   params.ActorID,
		StartDate: models.TruncateDay(now),
		CreatedAt: now,
	}
	teamIDs, err := s.apply(&project, params, now)
	if err != nil {
		return nil, err
	}

	err = s.storage.CreateProject(ctx, &project, teamIDs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", params.ActorID).
			Msg("failed to insert project")
		return nil, err
	}

	s.logger.Info().
		Int64("project_id", project.ID).
		Str("owner_id", project.OwnerID).
		Int("team", len(teamIDs)).
		Msg("created project")
	return &project, nil
}

func (s *projectServiceImpl) UpdateProject(ctx context.Context, projectID int64, params ProjectParams) (*models.Project, error) {
	project, err := s.GetOwnedProject(ctx, params.ActorID, projectID)
	if err != nil {
		return nil, err
	}

	teamIDs, err := s.apply(project, params, s.now())
	if err != nil {
		return nil, err
	}

	err = s.storage.UpdateProject(ctx, project, teamIDs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to update project")
		return nil, err
	}

	s.logger.Info().
		Int64("project_id", projectID).
		Msg("updated project")
	return project, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, actorID string, projectID int64) error {
	if _, err := s.GetOwnedProject(ctx, actorID, projectID); err != nil {
		return err
	}

	err := s.storage.DeleteProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to delete project")
		return err
	}

	s.logger.Info().
		Int64("project_id", projectID).
		Str("user_id", actorID).
		Msg("deleted project")
	return nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, actorID string, projectID int64) (*ProjectDetail, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Permits(actorID) {
		s.logger.Warn().
			Str("user_id", actorID).
			Int64("project_id", projectID).
			Msg("project is not visible to user")
		return nil, ErrForbidden
	}

	tasks, err := s.storage.ListProjectTasks(ctx, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to select project tasks")
		return nil, err
	}

	figures, err := s.storage.ProjectFigures(ctx, []int64{projectID})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to aggregate project figures")
		return nil, err
	}
	f := figures[projectID]
	s.logger.Debug().
		Int64("project_id", projectID).
		Int("tasks", len(tasks)).
		Str("spent", f.Spent.String()).
		Msg("aggregated project figures")

	return &ProjectDetail{
		Project: *project,
		Metrics: models.NewProjectMetrics(project.Budget, f.Spent, f.TaskCount, f.CompletedCount),
		Tasks:   tasks,
		CanEdit: project.IsOwner(actorID),
	}, nil
}

func (s *projectServiceImpl) GetOwnedProject(ctx context.Context, actorID string, projectID int64) (*models.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(actorID) {
		s.logger.Warn().
			Str("user_id", actorID).
			Int64("project_id", projectID).
			Msg("user does not own project")
		return nil, ErrNotOwner
	}
	return project, nil
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, actorID string) ([]ProjectSummary, error) {
	projects, err := s.storage.ListProjectsForUser(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select projects")
		return nil, err
	}
	if len(projects) == 0 {
		return []ProjectSummary{}, nil
	}

	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	figures, err := s.storage.ProjectFigures(ctx, ids)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to aggregate project figures")
		return nil, err
	}

	summaries := make([]ProjectSummary, len(projects))
	for i, p := range projects {
		f := figures[p.ID]
		summaries[i] = ProjectSummary{
			Project: p,
			Metrics: models.NewProjectMetrics(p.Budget, f.Spent, f.TaskCount, f.CompletedCount),
		}
	}
	s.logger.Debug().
		Str("user_id", actorID).
		Int("projects", len(summaries)).
		Msg("selected projects")
	return summaries, nil
}

func (s *projectServiceImpl) getProject(ctx context.Context, projectID int64) (*models.Project, error) {
	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			s.logger.Error().
				Int64("project_id", projectID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("project_id", projectID).
			Msg("failed to select project")
		return nil, err
	}
	return project, nil
}

// apply validates params and copies them onto p. It returns the team
// without the owner and without duplicates.
func (s *projectServiceImpl) apply(p *models.Project, params ProjectParams, now time.Time) ([]string, error) {
	status := params.Status
	if status == "" {
		status = models.ProjectPending
	}

	var v validator
	title := strings.TrimSpace(params.Title)
	v.check(title != "", "title", "required")
	v.check(len([]rune(title)) <= maxTaskTitleLength, "title", "at most 200 characters")
	v.check(!params.Budget.IsNegative(), "budget", "must not be negative")
	_, statusErr := models.ParseProjectStatus(string(status))
	v.check(statusErr == nil, "status", "unknown status")

	start := p.StartDate
	if params.StartDate != nil {
		start = models.TruncateDay(*params.StartDate)
	}
	var end *time.Time
	if params.EndDate != nil {
		e := models.TruncateDay(*params.EndDate)
		end = &e
		v.check(!e.Before(start), "end_date", "must not be before the start date")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	p.Title = title
	p.Description = params.Description
	p.Budget = params.Budget
	p.StartDate = start
	p.EndDate = end
	p.Status = status
	p.UpdatedAt = now

	team := make([]string, 0, len(params.TeamIDs))
	seen := map[string]struct{}{p.OwnerID: {}}
	for _, id := range params.TeamIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		team = append(team, id)
	}
	return team, nil
}
