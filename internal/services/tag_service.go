package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

const maxTagNameLength = 50

type tagServiceImpl struct {
	logger  zerolog.Logger
	storage TagStorage
}

func NewTagService(logger zerolog.Logger, storage TagStorage) TagService {
	return &tagServiceImpl{
		logger:  logger,
		storage: storage,
	}
}

func (s *tagServiceImpl) CreateTag(ctx context.Context, actorID, name, color string) (*models.Tag, error) {
	var v validator
	name = strings.TrimSpace(name)
	v.check(name != "", "name", "required")
	v.check(len([]rune(name)) <= maxTagNameLength, "name", "at most 50 characters")
	tagColor, err := models.ParseTagColor(color)
	v.check(err == nil, "color", "unknown color")
	if err = v.err(); err != nil {
		return nil, err
	}

	tag := models.Tag{
		UserID: actorID,
		Name:   name,
		Color:  tagColor,
	}
	err = s.storage.CreateTag(ctx, &tag)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to insert tag")
		return nil, err
	}

	s.logger.Info().
		Int64("tag_id", tag.ID).
		Str("user_id", actorID).
		Msg("created tag")
	return &tag, nil
}

func (s *tagServiceImpl) ListTags(ctx context.Context, actorID string) ([]models.Tag, error) {
	tags, err := s.storage.ListTagsByUser(ctx, actorID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", actorID).
			Msg("failed to select tags")
		return nil, err
	}
	return tags, nil
}

func (s *tagServiceImpl) Palette() []models.PaletteColor {
	return models.TagPalette
}
