package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type profileServiceImpl struct {
	logger  zerolog.Logger
	storage UserStorage
	now     func() time.Time
}

func NewProfileService(logger zerolog.Logger, storage UserStorage) ProfileService {
	return &profileServiceImpl{
		logger:  logger,
		storage: storage,
		now:     time.Now,
	}
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}

	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("profile not found")
			return nil, ErrProfileNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select profile")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", userID).
		Str("image", profile.Image).
		Msg("selected profile")

	return &ProfileView{User: *user, Profile: *profile}, nil
}

func (s *profileServiceImpl) UpdateProfile(ctx context.Context, params UpdateProfileParams) (*ProfileView, error) {
	var v validator
	if params.Email != nil {
		if email := strings.TrimSpace(*params.Email); email != "" {
			_, err := mail.ParseAddress(email)
			v.check(err == nil, "email", "invalid address")
		}
	}
	if params.FirstName != nil {
		v.check(len([]rune(*params.FirstName)) <= 150, "first_name", "at most 150 characters")
	}
	if params.LastName != nil {
		v.check(len([]rune(*params.LastName)) <= 150, "last_name", "at most 150 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	view, err := s.GetProfile(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if params.FirstName != nil {
		view.User.FirstName = strings.TrimSpace(*params.FirstName)
	}
	if params.LastName != nil {
		view.User.LastName = strings.TrimSpace(*params.LastName)
	}
	if params.Email != nil {
		view.User.Email = strings.TrimSpace(*params.Email)
	}
	view.User.UpdatedAt = now
	if params.Image != "" {
		view.Profile.Image = params.Image
	}
	view.Profile.UpdatedAt = now

	err = s.storage.UpdateProfile(ctx, &view.User, &view.Profile)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to update profile")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", params.UserID).
		Bool("image_changed", params.Image != "").
		Msg("updated profile")
	return view, nil
}
