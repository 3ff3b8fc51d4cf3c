package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

type TimeBucket string

const (
	WhenAny      TimeBucket = ""
	WhenOverdue  TimeBucket = "overdue"
	WhenToday    TimeBucket = "today"
	WhenUpcoming TimeBucket = "upcoming"
)

func ParseTimeBucket(s string) (TimeBucket, bool) {
	switch b := TimeBucket(s); b {
	case WhenAny, WhenOverdue, WhenToday, WhenUpcoming:
		return b, true
	default:
		return "", false
	}
}

type Ownership string

const (
	OwnershipAny    Ownership = ""
	OwnershipMine   Ownership = "mine"
	OwnershipShared Ownership = "shared"
)

func ParseOwnership(s string) (Ownership, bool) {
	switch o := Ownership(s); o {
	case OwnershipAny, OwnershipMine, OwnershipShared:
		return o, true
	default:
		return "", false
	}
}

// TaskFilter selects tasks visible to UserID, that is tasks the user
// owns, collaborates on or is responsible for. Results are ordered
// with completed tasks last, then by target date.
type TaskFilter struct {
	UserID    string
	Search    string
	Status    *models.TaskStatus
	When      TimeBucket
	Ownership Ownership
	// Reference day for the time buckets.
	Today time.Time
	// Zero Limit returns every matching task.
	Limit  int
	Offset int
}

type ProjectFigures struct {
	Spent          decimal.Decimal
	TaskCount      int
	CompletedCount int
}

type ProjectTotals struct {
	Budget decimal.Decimal
	Spent  decimal.Decimal
}

type UserSearch struct {
	Query     string
	ProjectID *int64
	Limit     int
}
