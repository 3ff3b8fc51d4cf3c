package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const sessionColumns = `id, user_id, fingerprint, refresh_token, expires_at, created_at, updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Fingerprint,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to select session: %w", err)
	}
	return &session, nil
}

func insertSession(ctx context.Context, tx pgx.Tx, session *models.Session) error {
	const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      fingerprint,
                      refresh_token,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := tx.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.Fingerprint,
		session.RefreshToken,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *Storage) ReplaceSessions(ctx context.Context, session *models.Session) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const deleteSessionsByUserIDQuery = `DELETE FROM sessions WHERE user_id = $1`
		tag, err := tx.Exec(ctx, deleteSessionsByUserIDQuery, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		s.logger.Debug().
			Str("user_id", session.UserID).
			Int64("affected", tag.RowsAffected()).
			Msg("deleted sessions by user id")

		return insertSession(ctx, tx, session)
	})
}

func (s *Storage) GetSessionByID(ctx context.Context, id string) (*models.Session, error) {
	const selectSessionByIDQuery = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(s.pool.QueryRow(ctx, selectSessionByIDQuery, id))
}

func (s *Storage) GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	const selectSessionByRefreshTokenQuery = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE refresh_token = $1
  AND fingerprint = $2
`
	return scanSession(s.pool.QueryRow(ctx, selectSessionByRefreshTokenQuery, refreshToken, fingerprint))
}

func (s *Storage) UpdateSession(ctx context.Context, session *models.Session) error {
	const updateSessionQuery = `
UPDATE sessions
SET refresh_token = $2,
    expires_at    = $3,
    updated_at    = $4
WHERE id = $1
`
	tag, err := s.pool.Exec(
		ctx,
		updateSessionQuery,
		session.ID,
		session.RefreshToken,
		session.ExpiresAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrSessionNotFound
	}
	return nil
}

func (s *Storage) DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error) {
	const deleteSessionsByUserIDQuery = `DELETE FROM sessions WHERE user_id = $1`
	tag, err := s.pool.Exec(ctx, deleteSessionsByUserIDQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
