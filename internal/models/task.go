package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Task struct {
	ID            int64
	OwnerID       string
	ProjectID     *int64
	ResponsibleID *string
	Title         string
	Description   string
	EstimatedCost *decimal.Decimal
	TargetDate    time.Time
	ClosureDate   *time.Time
	Status        TaskStatus
	Progress      string
	Observations  string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated by the storage layer when loading a task.
	Owner         *User
	Responsible   *User
	Collaborators []User
	Tags          []Tag
}

// SetStatus changes the status keeping the closure date consistent:
// a completed task keeps its first closure date or gets today's,
// any other status clears it.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	t.Status = status
	if status == StatusCompleted {
		if t.ClosureDate == nil {
			today := TruncateDay(now)
			t.ClosureDate = &today
		}
		return
	}
	t.ClosureDate = nil
}

func (t *Task) IsOwner(userID string) bool {
	return t.OwnerID == userID
}

func (t *Task) IsCollaborator(userID string) bool {
	for _, u := range t.Collaborators {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func (t *Task) IsResponsible(userID string) bool {
	return t.ResponsibleID != nil && *t.ResponsibleID == userID
}

// CanContribute reports whether the user may change the status
// of the task or report progress on it.
func (t *Task) CanContribute(userID string) bool {
	return t.IsOwner(userID) || t.IsCollaborator(userID) || t.IsResponsible(userID)
}

// IsVisibleTo mirrors CanContribute: a task is listed for exactly
// the users that may work on it.
func (t *Task) IsVisibleTo(userID string) bool {
	return t.CanContribute(userID)
}

// TruncateDay drops the clock part of t, keeping its location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type HistoryEntry struct {
	ID         int64
	TaskID     int64
	UserID     string
	Comment    string
	Attachment string
	Amount     decimal.Decimal
	CreatedAt  time.Time

	// Populated on listings.
	Username  string
	TaskTitle string
}
