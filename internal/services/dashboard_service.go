package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

type dashboardServiceImpl struct {
	logger       zerolog.Logger
	storage      ReportStorage
	size         int
	upcomingDays int
	now          func() time.Time
}

func NewDashboardService(
	logger zerolog.Logger,
	storage ReportStorage,
	size int,
	upcomingDays int,
) DashboardService {
	if size <= 0 {
		size = 5
	}
	if upcomingDays <= 0 {
		upcomingDays = 7
	}
	return &dashboardServiceImpl{
		logger:       logger,
		storage:      storage,
		size:         size,
		upcomingDays: upcomingDays,
		now:          time.Now,
	}
}

func (s *dashboardServiceImpl) Dashboard(ctx context.Context, actorID string) (*Dashboard, error) {
	counts, err := s.storage.CountTasksByStatus(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to count tasks by status")
		return nil, err
	}

	d := &Dashboard{StatusCounts: make(map[models.TaskStatus]int, len(models.TaskStatuses))}
	for _, status := range models.TaskStatuses {
		d.StatusCounts[status] = counts[status]
		d.Total += counts[status]
	}

	d.TopTags, err = s.storage.TopTags(ctx, actorID, s.size)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select top tags")
		return nil, err
	}

	totals, err := s.storage.ProjectTotals(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to aggregate project totals")
		return nil, err
	}
	d.Budget = totals.Budget
	d.Spent = totals.Spent
	d.Remaining = totals.Budget.Sub(totals.Spent)

	today := models.TruncateDay(s.now())
	d.Upcoming, err = s.storage.UpcomingTasks(ctx, actorID, today, today.AddDate(0, 0, s.upcomingDays), s.size)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select upcoming tasks")
		return nil, err
	}

	d.Recent, err = s.storage.RecentHistory(ctx, actorID, s.size)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select recent history")
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", actorID).
		Int("total", d.Total).
		Int("upcoming", len(d.Upcoming)).
		Msg("built dashboard")
	return d, nil
}
