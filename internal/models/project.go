package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID          int64
	OwnerID     string
	Title       string
	Description string
	Budget      decimal.Decimal
	StartDate   time.Time
	EndDate     *time.Time
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner *User
	Team  []User
}

func (p *Project) IsOwner(userID string) bool {
	return p.OwnerID == userID
}

func (p *Project) IsMember(userID string) bool {
	for _, u := range p.Team {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Permits reports whether the user may see the project and
// attach tasks to it.
func (p *Project) Permits(userID string) bool {
	return p.IsOwner(userID) || p.IsMember(userID)
}

type ProjectMetrics struct {
	Spent           decimal.Decimal
	Remaining       decimal.Decimal
	PercentComplete int
	TaskCount       int
	CompletedCount  int
}

// NewProjectMetrics derives the read-only figures of a project from
// its budget and the live state of its tasks.
func NewProjectMetrics(budget, spent decimal.Decimal, taskCount, completedCount int) ProjectMetrics {
	m := ProjectMetrics{
		Spent:          spent,
		Remaining:      budget.Sub(spent),
		TaskCount:      taskCount,
		CompletedCount: completedCount,
	}
	if taskCount > 0 {
		m.PercentComplete = completedCount * 100 / taskCount
	}
	return m
}
