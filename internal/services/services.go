package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/notify"
)

type AuthService interface {
	// Login authenticates the user by username and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// username doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register creates a user together with its profile and a
	// first session, all in one transaction.
	//
	// It returns ErrUserAlreadyExists if the username is taken.
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type TaskService interface {
	// CreateTask stores a task owned by the acting user and notifies
	// its collaborators and responsible user.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask rewrites a task. Only the owner may do it, anybody
	// else gets ErrNotOwner.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	DeleteTask(ctx context.Context, actorID string, taskID int64) error

	// SetTaskStatus is the form-less transition available to the
	// owner, the collaborators and the responsible user.
	SetTaskStatus(ctx context.Context, actorID string, taskID int64, status models.TaskStatus) (*models.Task, error)

	// ReportProgress appends a history entry and, when a different
	// status is proposed, applies it and tells the owner.
	ReportProgress(ctx context.Context, params ReportProgressParams) (*models.HistoryEntry, error)

	ListTasks(ctx context.Context, params ListTasksParams) (*TaskPage, error)
	GetTaskDetail(ctx context.Context, actorID string, taskID int64) (*TaskDetail, error)
	TaskFormOptions(ctx context.Context, actorID string, projectID *int64) (*TaskFormOptions, error)
	ExportTasks(ctx context.Context, actorID string) ([]models.Task, error)
}

type ProjectService interface {
	CreateProject(ctx context.Context, params ProjectParams) (*models.Project, error)
	UpdateProject(ctx context.Context, projectID int64, params ProjectParams) (*models.Project, error)
	DeleteProject(ctx context.Context, actorID string, projectID int64) error
	GetProject(ctx context.Context, actorID string, projectID int64) (*ProjectDetail, error)
	// GetOwnedProject loads a project for its edit or delete form.
	GetOwnedProject(ctx context.Context, actorID string, projectID int64) (*models.Project, error)
	ListProjects(ctx context.Context, actorID string) ([]ProjectSummary, error)
}

type TagService interface {
	CreateTag(ctx context.Context, actorID, name, color string) (*models.Tag, error)
	ListTags(ctx context.Context, actorID string) ([]models.Tag, error)
	Palette() []models.PaletteColor
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*ProfileView, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (*ProfileView, error)
}

type UserService interface {
	SearchUsers(ctx context.Context, params SearchUsersParams) ([]UserCard, error)
}

type DashboardService interface {
	Dashboard(ctx context.Context, actorID string) (*Dashboard, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

type LoginParams struct {
	Username    string
	Password    string
	Fingerprint string
}

type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type TaskInput struct {
	ProjectID       *int64
	ResponsibleID   *string
	Title           string
	Description     string
	EstimatedCost   *decimal.Decimal
	TargetDate      time.Time
	Status          models.TaskStatus
	Progress        string
	Observations    string
	CollaboratorIDs []string
	TagIDs          []int64
}

type CreateTaskParams struct {
	ActorID string
	TaskInput
}

type UpdateTaskParams struct {
	ActorID string
	TaskID  int64
	TaskInput
}

type ReportProgressParams struct {
	ActorID    string
	TaskID     int64
	Comment    string
	Attachment string
	Amount     decimal.Decimal
	// Nil keeps the current status.
	Status *models.TaskStatus
}

type ListTasksParams struct {
	ActorID   string
	Search    string
	Status    *models.TaskStatus
	When      TimeBucket
	Ownership Ownership
	Page      int
}

type TaskPage struct {
	Tasks      []models.Task
	Page       int
	TotalPages int
	Total      int
	Today      time.Time
}

type TaskDetail struct {
	Task    models.Task
	History []models.HistoryEntry
	// Whether the viewer may open the edit form.
	CanEdit bool
}

type TaskFormOptions struct {
	Tags          []models.Tag
	Collaborators []models.User
	// Only restricted when the task belongs to a project.
	Responsibles []models.User
	Projects     []models.Project
	Statuses     []models.TaskStatus
}

type ProjectParams struct {
	ActorID     string
	Title       string
	Description string
	Budget      decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Status      models.ProjectStatus
	TeamIDs     []string
}

type ProjectSummary struct {
	Project models.Project
	Metrics models.ProjectMetrics
}

type ProjectDetail struct {
	Project models.Project
	Metrics models.ProjectMetrics
	Tasks   []models.Task
	CanEdit bool
}

type ProfileView struct {
	User    models.User
	Profile models.Profile
}

// UpdateProfileParams carries the submitted profile fields. A nil
// field was not part of the form and keeps its stored value.
type UpdateProfileParams struct {
	UserID    string
	FirstName *string
	LastName  *string
	Email     *string
	// Empty keeps the current image.
	Image string
}

type SearchUsersParams struct {
	Query     string
	ProjectID *int64
}

type UserCard struct {
	ID       string
	Username string
	Email    string
	Image    string
}

type Dashboard struct {
	StatusCounts map[models.TaskStatus]int
	Total        int
	TopTags      []models.TagUsage
	Budget       decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	Upcoming     []models.Task
	Recent       []models.HistoryEntry
}
