package models

import "errors"

var (
	ErrUnknownTaskStatus    = errors.New("unknown task status")
	ErrUnknownProjectStatus = errors.New("unknown project status")
	ErrUnknownTagColor      = errors.New("unknown tag color")
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusWaiting    TaskStatus = "waiting"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every task status in board order.
var TaskStatuses = []TaskStatus{
	StatusPending,
	StatusWaiting,
	StatusInProgress,
	StatusInReview,
	StatusCompleted,
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch status := TaskStatus(s); status {
	case StatusPending, StatusWaiting, StatusInProgress, StatusInReview, StatusCompleted:
		return status, nil
	default:
		return "", ErrUnknownTaskStatus
	}
}

// Label returns the human readable name used in reports.
func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusWaiting:
		return "En Espera"
	case StatusInProgress:
		return "En Proceso"
	case StatusInReview:
		return "En Revisión"
	case StatusCompleted:
		return "Completada"
	default:
		return string(s)
	}
}

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{
	ProjectPending,
	ProjectInProgress,
	ProjectCompleted,
	ProjectCancelled,
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch status := ProjectStatus(s); status {
	case ProjectPending, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return status, nil
	default:
		return "", ErrUnknownProjectStatus
	}
}

func (s ProjectStatus) Label() string {
	switch s {
	case ProjectPending:
		return "Pendiente"
	case ProjectInProgress:
		return "En Progreso"
	case ProjectCompleted:
		return "Completado"
	case ProjectCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}
