package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

const defaultSearchLimit = 10

type userServiceImpl struct {
	logger  zerolog.Logger
	storage ReportStorage
	limit   int
}

func NewUserService(logger zerolog.Logger, storage ReportStorage, limit int) UserService {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &userServiceImpl{
		logger:  logger,
		storage: storage,
		limit:   limit,
	}
}

// SearchUsers matches username or email. Without a project an empty
// query yields nothing; with one it lists the whole team.
func (s *userServiceImpl) SearchUsers(ctx context.Context, params SearchUsersParams) ([]UserCard, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" && params.ProjectID == nil {
		return []UserCard{}, nil
	}

	cards, err := s.storage.SearchUsers(ctx, UserSearch{
		Query:     query,
		ProjectID: params.ProjectID,
		Limit:     s.limit,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("query", query).
			Msg("failed to search users")
		return nil, err
	}
	s.logger.Debug().
		Str("query", query).
		Int("results", len(cards)).
		Msg("searched users")
	return cards, nil
}
