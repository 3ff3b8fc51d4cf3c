package services

import (
	"context"
	"time"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

// Storage is the persistence port of the services. Every method maps
// to one query or one transaction. Lookups by id return the package's
// not-found errors when nothing matches.
type Storage interface {
	UserStorage
	SessionStorage
	TagStorage
	ProjectStorage
	TaskStorage
	ReportStorage
}

type UserStorage interface {
	// CreateUser inserts the user, its profile and its first session
	// atomically. A taken username yields ErrUserAlreadyExists.
	CreateUser(ctx context.Context, user *models.User, profile *models.Profile, session *models.Session) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUsersByIDs returns the users that exist among ids.
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// ListUsers returns every non-superuser except excludeID.
	ListUsers(ctx context.Context, excludeID string) ([]models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, user *models.User, profile *models.Profile) error
}

type SessionStorage interface {
	// ReplaceSessions drops every session of the user and stores the
	// given one in a single transaction.
	ReplaceSessions(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, id string) (*models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
}

type TagStorage interface {
	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTagsByUser(ctx context.Context, userID string) ([]models.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []int64) ([]models.Tag, error)
}

type ProjectStorage interface {
	CreateProject(ctx context.Context, project *models.Project, teamIDs []string) error
	// GetProject loads the project with its owner and team.
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project, teamIDs []string) error
	DeleteProject(ctx context.Context, id int64) error
	// ListProjectsForUser returns projects the user owns or works on.
	ListProjectsForUser(ctx context.Context, userID string) ([]models.Project, error)
	// ProjectFigures aggregates spending and completion per project.
	ProjectFigures(ctx context.Context, projectIDs []int64) (map[int64]ProjectFigures, error)
	ListProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error)
}

type TaskStorage interface {
	CreateTask(ctx context.Context, task *models.Task, collaboratorIDs []string, tagIDs []int64) error
	// GetTask loads the task with owner, responsible user,
	// collaborators and tags.
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task, collaboratorIDs []string, tagIDs []int64) error
	UpdateTaskStatus(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
	// ListTasks returns one page of matching tasks and the number of
	// matches overall.
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, int, error)
	// AppendHistory stores the entry. A non-nil task has its status
	// written in the same transaction.
	AppendHistory(ctx context.Context, entry *models.HistoryEntry, task *models.Task) error
	ListHistory(ctx context.Context, taskID int64) ([]models.HistoryEntry, error)
}

type ReportStorage interface {
	CountTasksByStatus(ctx context.Context, userID string) (map[models.TaskStatus]int, error)
	TopTags(ctx context.Context, userID string, limit int) ([]models.TagUsage, error)
	// UpcomingTasks lists visible, unfinished tasks due within [from, to].
	UpcomingTasks(ctx context.Context, userID string, from, to time.Time, limit int) ([]models.Task, error)
	RecentHistory(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)
	ProjectTotals(ctx context.Context, ownerID string) (ProjectTotals, error)
	SearchUsers(ctx context.Context, search UserSearch) ([]UserCard, error)
}
