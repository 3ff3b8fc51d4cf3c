package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/metrics"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/notify"
)

const (
	maxTaskTitleLength = 200
	defaultPageSize    = 5
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	storage  Storage
	notifier Notifier
	metrics  *metrics.Metrics
	pageSize int
	now      func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	storage Storage,
	notifier Notifier,
	m *metrics.Metrics,
	pageSize int,
) TaskService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &taskServiceImpl{
		logger:   logger,
		storage:  storage,
		notifier: notifier,
		metrics:  m,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// taskRelations holds the rows referenced by a task input once they
// have been checked against the acting user.
type taskRelations struct {
	project         *models.Project
	responsible     *models.User
	collaborators   []models.User
	collaboratorIDs []string
	tags            []models.Tag
	tagIDs          []int64
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	status, err := s.resolveStatus(params.Status)
	if err != nil {
		return nil, err
	}
	if err = validateTaskInput(&params.TaskInput); err != nil {
		return nil, err
	}
	rel, err := s.resolveRelations(ctx, params.ActorID, &params.TaskInput)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := models.Task{
		OwnerID:       params.ActorID,
		ProjectID:     params.ProjectID,
		ResponsibleID: params.ResponsibleID,
		Title:         strings.TrimSpace(params.Title),
		Description:   params.Description,
		EstimatedCost: params.EstimatedCost,
		TargetDate:    models.TruncateDay(params.TargetDate),
		Progress:      params.Progress,
		Observations:  params.Observations,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	task.SetStatus(status, now)

	err = s.storage.CreateTask(ctx, &task, rel.collaboratorIDs, rel.tagIDs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", params.ActorID).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Int("collaborators", len(rel.collaboratorIDs)).
		Int("tags", len(rel.tagIDs)).
		Msg("inserted task")

	task.Responsible = rel.responsible
	task.Collaborators = rel.collaborators
	task.Tags = rel.tags
	s.metrics.TasksCreatedTotal.Inc()

	s.notifyAssignees(ctx, &task)

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("owner_id", task.OwnerID).
		Msg("created task")
	return &task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.getTask(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwner(params.ActorID) {
		s.deny("update_task", params.ActorID, task.ID)
		return nil, ErrNotOwner
	}

	status, err := s.resolveStatus(params.Status)
	if err != nil {
		return nil, err
	}
	if err = validateTaskInput(&params.TaskInput); err != nil {
		return nil, err
	}
	rel, err := s.resolveRelations(ctx, params.ActorID, &params.TaskInput)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task.ProjectID = params.ProjectID
	task.ResponsibleID = params.ResponsibleID
	task.Title = strings.TrimSpace(params.Title)
	task.Description = params.Description
	task.EstimatedCost = params.EstimatedCost
	task.TargetDate = models.TruncateDay(params.TargetDate)
	task.Progress = params.Progress
	task.Observations = params.Observations
	task.UpdatedAt = now
	previous := task.Status
	task.SetStatus(status, now)

	err = s.storage.UpdateTask(ctx, task, rel.collaboratorIDs, rel.tagIDs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Str("status", string(task.Status)).
		Msg("updated task")

	task.Responsible = rel.responsible
	task.Collaborators = rel.collaborators
	task.Tags = rel.tags
	if previous != task.Status {
		s.metrics.StatusChangesTotal.WithLabelValues(string(task.Status)).Inc()
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, actorID string, taskID int64) error {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.IsOwner(actorID) {
		s.deny("delete_task", actorID, taskID)
		return ErrNotOwner
	}

	err = s.storage.DeleteTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Str("user_id", actorID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) SetTaskStatus(
	ctx context.Context,
	actorID string,
	taskID int64,
	status models.TaskStatus,
) (*models.Task, error) {
	if _, err := models.ParseTaskStatus(string(status)); err != nil {
		return nil, ErrInvalidStatus
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanContribute(actorID) {
		s.deny("set_task_status", actorID, taskID)
		return nil, ErrForbidden
	}

	now := s.now()
	previous := task.Status
	task.SetStatus(status, now)
	task.UpdatedAt = now

	err = s.storage.UpdateTaskStatus(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task status")
		return nil, err
	}
	if previous != task.Status {
		s.metrics.StatusChangesTotal.WithLabelValues(string(task.Status)).Inc()
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Str("user_id", actorID).
		Str("from", string(previous)).
		Str("to", string(task.Status)).
		Msg("changed task status")
	return task, nil
}

func (s *taskServiceImpl) ReportProgress(ctx context.Context, params ReportProgressParams) (*models.HistoryEntry, error) {
	task, err := s.getTask(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.CanContribute(params.ActorID) {
		s.deny("report_progress", params.ActorID, params.TaskID)
		return nil, ErrForbidden
	}

	var v validator
	v.check(strings.TrimSpace(params.Comment) != "", "comment", "required")
	v.check(!params.Amount.IsNegative(), "amount", "must not be negative")
	if err = v.err(); err != nil {
		return nil, err
	}
	if params.Status != nil {
		if _, err = models.ParseTaskStatus(string(*params.Status)); err != nil {
			return nil, ErrInvalidStatus
		}
	}

	now := s.now()
	entry := models.HistoryEntry{
		TaskID:     task.ID,
		UserID:     params.ActorID,
		Comment:    strings.TrimSpace(params.Comment),
		Attachment: params.Attachment,
		Amount:     params.Amount,
		CreatedAt:  now,
	}

	var changed *models.Task
	previous := task.Status
	if params.Status != nil && *params.Status != task.Status {
		task.SetStatus(*params.Status, now)
		task.UpdatedAt = now
		changed = task
	}

	err = s.storage.AppendHistory(ctx, &entry, changed)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to append history entry")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Int64("entry_id", entry.ID).
		Bool("status_changed", changed != nil).
		Msg("appended history entry")
	s.metrics.ProgressReportsTotal.Inc()

	if changed != nil {
		s.metrics.StatusChangesTotal.WithLabelValues(string(task.Status)).Inc()
		if !task.IsOwner(params.ActorID) {
			s.notifyOwner(ctx, task, params.ActorID, previous)
		}
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", params.ActorID).
		Msg("reported progress")
	return &entry, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) (*TaskPage, error) {
	today := models.TruncateDay(s.now())
	filter := TaskFilter{
		UserID:    params.ActorID,
		Search:    strings.TrimSpace(params.Search),
		Status:    params.Status,
		When:      params.When,
		Ownership: params.Ownership,
		Today:     today,
		Limit:     s.pageSize,
	}

	// Pages past the end fall back to the last one.
	page := max(params.Page, 1)
	filter.Offset = (page - 1) * s.pageSize
	tasks, total, err := s.storage.ListTasks(ctx, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.ActorID).
			Msg("failed to select tasks")
		return nil, err
	}

	totalPages := max((total+s.pageSize-1)/s.pageSize, 1)
	if page > totalPages {
		page = totalPages
		filter.Offset = (page - 1) * s.pageSize
		tasks, total, err = s.storage.ListTasks(ctx, filter)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("user_id", params.ActorID).
				Msg("failed to select tasks")
			return nil, err
		}
	}
	s.logger.Debug().
		Str("user_id", params.ActorID).
		Int("page", page).
		Int("total", total).
		Msg("selected tasks")

	return &TaskPage{
		Tasks:      tasks,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Today:      today,
	}, nil
}

func (s *taskServiceImpl) GetTaskDetail(ctx context.Context, actorID string, taskID int64) (*TaskDetail, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsVisibleTo(actorID) {
		s.deny("get_task", actorID, taskID)
		return nil, ErrForbidden
	}

	history, err := s.storage.ListHistory(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task history")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", taskID).
		Int("entries", len(history)).
		Msg("selected task history")

	return &TaskDetail{
		Task:    *task,
		History: history,
		CanEdit: task.IsOwner(actorID),
	}, nil
}

func (s *taskServiceImpl) TaskFormOptions(ctx context.Context, actorID string, projectID *int64) (*TaskFormOptions, error) {
	tags, err := s.storage.ListTagsByUser(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select tags")
		return nil, err
	}

	users, err := s.storage.ListUsers(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}

	projects, err := s.storage.ListProjectsForUser(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select projects")
		return nil, err
	}

	opts := &TaskFormOptions{
		Tags:          tags,
		Collaborators: users,
		Responsibles:  users,
		Projects:      projects,
		Statuses:      models.TaskStatuses,
	}

	if projectID != nil {
		project, err := s.getProject(ctx, *projectID)
		if err != nil {
			return nil, err
		}
		if !project.Permits(actorID) {
			s.deny("task_form", actorID, project.ID)
			return nil, ErrForbidden
		}
		opts.Responsibles = projectMembers(project)
	}
	return opts, nil
}

func (s *taskServiceImpl) ExportTasks(ctx context.Context, actorID string) ([]models.Task, error) {
	tasks, _, err := s.storage.ListTasks(ctx, TaskFilter{
		UserID: actorID,
		Today:  models.TruncateDay(s.now()),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select tasks for export")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", actorID).
		Int("tasks", len(tasks)).
		Msg("exported tasks")
	return tasks, nil
}

func (s *taskServiceImpl) getTask(ctx context.Context, taskID int64) (*models.Task, error) {
	task, err := s.storage.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			s.logger.Error().
				Int64("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Str("status", string(task.Status)).
		Msg("selected task")
	return task, nil
}

func (s *taskServiceImpl) getProject(ctx context.Context, projectID int64) (*models.Project, error) {
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

// resolveStatus defaults an empty status to pending.
func (s *taskServiceImpl) resolveStatus(status models.TaskStatus) (models.TaskStatus, error) {
	if status == "" {
		return models.StatusPending, nil
	}
	if _, err := models.ParseTaskStatus(string(status)); err != nil {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func validateTaskInput(in *TaskInput) error {
	var v validator
	title := strings.TrimSpace(in.Title)
	v.check(title != "", "title", "required")
	v.check(len([]rune(title)) <= maxTaskTitleLength, "title", fmt.Sprintf("at most %d characters", maxTaskTitleLength))
	v.check(!in.TargetDate.IsZero(), "target_date", "required")
	v.check(in.EstimatedCost == nil || !in.EstimatedCost.IsNegative(), "estimated_cost", "must not be negative")
	return v.err()
}

func (s *taskServiceImpl) resolveRelations(ctx context.Context, actorID string, in *TaskInput) (*taskRelations, error) {
	rel := &taskRelations{}

	if in.ProjectID != nil {
		project, err := s.getProject(ctx, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		if !project.Permits(actorID) {
			s.deny("link_project", actorID, project.ID)
			return nil, ErrForbidden
		}
		rel.project = project
	}

	if in.ResponsibleID != nil && *in.ResponsibleID == "" {
		in.ResponsibleID = nil
	}
	if in.ResponsibleID != nil {
		responsibleID := *in.ResponsibleID
		if rel.project != nil && !rel.project.Permits(responsibleID) {
			return nil, ErrInvalidResponsible
		}
		user, err := s.storage.GetUserByID(ctx, responsibleID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, ErrInvalidResponsible
			}
			s.logger.Error().
				Err(err).
				Str("user_id", responsibleID).
				Msg("failed to select responsible user")
			return nil, err
		}
		if user.IsSuperuser {
			return nil, ErrInvalidResponsible
		}
		rel.responsible = user
	}

	collaboratorIDs := make([]string, 0, len(in.CollaboratorIDs))
	seenUsers := make(map[string]struct{}, len(in.CollaboratorIDs))
	for _, id := range in.CollaboratorIDs {
		if id == "" || id == actorID {
			continue
		}
		if _, ok := seenUsers[id]; ok {
			continue
		}
		seenUsers[id] = struct{}{}
		collaboratorIDs = append(collaboratorIDs, id)
	}
	if len(collaboratorIDs) > 0 {
		users, err := s.storage.GetUsersByIDs(ctx, collaboratorIDs)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to select collaborators")
			return nil, err
		}
		if len(users) != len(collaboratorIDs) {
			return nil, &ValidationError{Fields: map[string]string{"collaborators": "unknown user"}}
		}
		rel.collaborators = users
	}
	rel.collaboratorIDs = collaboratorIDs

	tagIDs := make([]int64, 0, len(in.TagIDs))
	seenTags := make(map[int64]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, ok := seenTags[id]; ok {
			continue
		}
		seenTags[id] = struct{}{}
		tagIDs = append(tagIDs, id)
	}
	if len(tagIDs) > 0 {
		tags, err := s.storage.GetTagsByIDs(ctx, tagIDs)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to select tags")
			return nil, err
		}
		if len(tags) != len(tagIDs) {
			return nil, ErrInvalidTag
		}
		for _, tag := range tags {
			if tag.UserID != actorID {
				return nil, ErrInvalidTag
			}
		}
		rel.tags = tags
	}
	rel.tagIDs = tagIDs

	return rel, nil
}

func (s *taskServiceImpl) notifyAssignees(ctx context.Context, task *models.Task) {
	emails := make([]string, 0, len(task.Collaborators)+1)
	for _, u := range task.Collaborators {
		emails = append(emails, u.Email)
	}
	if task.Responsible != nil {
		emails = append(emails, task.Responsible.Email)
	}

	to := notify.Recipients(emails...)
	if len(to) == 0 {
		return
	}
	s.notifier.Notify(ctx, notify.Message{
		Kind:    notify.KindTaskAssigned,
		To:      to,
		Subject: fmt.Sprintf("Nueva misión asignada: %s", task.Title),
		Body: fmt.Sprintf(
			"Has sido asignado a la misión \"%s\".\nFecha objetivo: %s\nEstado: %s\n",
			task.Title,
			task.TargetDate.Format(time.DateOnly),
			task.Status.Label(),
		),
	})
	s.logger.Debug().
		Int64("task_id", task.ID).
		Int("recipients", len(to)).
		Msg("scheduled assignment notification")
}

func (s *taskServiceImpl) notifyOwner(ctx context.Context, task *models.Task, actorID string, previous models.TaskStatus) {
	owner := task.Owner
	if owner == nil {
		var err error
		owner, err = s.storage.GetUserByID(ctx, task.OwnerID)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("user_id", task.OwnerID).
				Msg("failed to select task owner for notification")
			return
		}
	}

	to := notify.Recipients(owner.Email)
	if len(to) == 0 {
		return
	}

	actor := actorID
	if u, err := s.storage.GetUserByID(ctx, actorID); err == nil {
		actor = u.Username
	}

	s.notifier.Notify(ctx, notify.Message{
		Kind:    notify.KindStatusChanged,
		To:      to,
		Subject: fmt.Sprintf("Cambio de estado: %s", task.Title),
		Body: fmt.Sprintf(
			"%s cambió el estado de la misión \"%s\" de %s a %s.\n",
			actor,
			task.Title,
			previous.Label(),
			task.Status.Label(),
		),
	})
	s.logger.Debug().
		Int64("task_id", task.ID).
		Str("owner_id", task.OwnerID).
		Msg("scheduled status change notification")
}

func (s *taskServiceImpl) deny(operation, actorID string, id int64) {
	s.metrics.AuthorizationDenials.WithLabelValues(operation).Inc()
	s.logger.Warn().
		Str("operation", operation).
		Str("user_id", actorID).
		Int64("id", id).
		Msg("operation denied")
}

func projectMembers(p *models.Project) []models.User {
	members := make([]models.User, 0, len(p.Team)+1)
	seen := make(map[string]struct{}, len(p.Team)+1)
	if p.Owner != nil {
		members = append(members, *p.Owner)
		seen[p.Owner.ID] = struct{}{}
	}
	for _, u := range p.Team {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		members = append(members, u)
	}
	return members
}
