package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

const userColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.password, u.is_superuser, u.created_at, u.updated_at`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Password,
		&u.IsSuperuser,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func collectUsers(rows pgx.Rows) ([]models.User, error) {
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over users: %w", err)
	}
	return users, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User, profile *models.Profile, session *models.Session) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   email,
                   first_name,
                   last_name,
                   password,
                   is_superuser,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
		_, err := tx.Exec(
			ctx,
			insertUserQuery,
			user.ID,
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.Password,
			user.IsSuperuser,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return services.ErrUserAlreadyExists
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		const insertProfileQuery = `
INSERT INTO profiles (user_id, image, updated_at)
VALUES ($1, $2, $3)
`
		_, err = tx.Exec(ctx, insertProfileQuery, profile.UserID, profile.Image, profile.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert profile: %w", err)
		}

		return insertSession(ctx, tx, session)
	})
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const selectUserByIDQuery = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	var u models.User
	err := scanUser(s.pool.QueryRow(ctx, selectUserByIDQuery, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, services.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to select user by id: %w", err)
	}
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const selectUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1`

	var u models.User
	err := scanUser(s.pool.QueryRow(ctx, selectUserByUsernameQuery, username), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to select user by username: %w", err)
	}
	return &u, nil
}

func (s *Storage) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	const selectUsersByIDsQuery = `
SELECT ` + userColumns + `
FROM users u
WHERE u.id = ANY ($1::uuid[])
ORDER BY array_position($1::uuid[], u.id)
`
	rows, err := s.pool.Query(ctx, selectUsersByIDsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to select users by ids: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil && isInvalidText(err) {
		return []models.User{}, nil
	}
	return users, err
}

func (s *Storage) ListUsers(ctx context.Context, excludeID string) ([]models.User, error) {
	const selectUsersQuery = `
SELECT ` + userColumns + `
FROM users u
WHERE NOT u.is_superuser
  AND u.id <> $1
ORDER BY u.username
`
	rows, err := s.pool.Query(ctx, selectUsersQuery, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	return collectUsers(rows)
}

func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const selectProfileQuery = `SELECT user_id, image, updated_at FROM profiles WHERE user_id = $1`

	var p models.Profile
	err := s.pool.QueryRow(ctx, selectProfileQuery, userID).Scan(&p.UserID, &p.Image, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to select profile: %w", err)
	}
	return &p, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const updateUserQuery = `
UPDATE users
SET first_name = $2,
    last_name  = $3,
    email      = $4,
    updated_at = $5
WHERE id = $1
`
		tag, err := tx.Exec(
			ctx,
			updateUserQuery,
			user.ID,
			user.FirstName,
			user.LastName,
			user.Email,
			user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return services.ErrUserNotFound
		}

		const upsertProfileQuery = `
INSERT INTO profiles (user_id, image, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET image      = excluded.image,
                                    updated_at = excluded.updated_at
`
		_, err = tx.Exec(ctx, upsertProfileQuery, profile.UserID, profile.Image, profile.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
}
