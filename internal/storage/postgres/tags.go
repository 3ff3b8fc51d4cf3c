package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

func collectTags(rows pgx.Rows) ([]models.Tag, error) {
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over tags: %w", err)
	}
	return tags, nil
}

func (s *Storage) CreateTag(ctx context.Context, tag *models.Tag) error {
	const insertTagQuery = `
INSERT INTO tags (user_id, name, color)
VALUES ($1, $2, $3)
RETURNING id
`
	err := s.pool.QueryRow(ctx, insertTagQuery, tag.UserID, tag.Name, tag.Color).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (s *Storage) ListTagsByUser(ctx context.Context, userID string) ([]models.Tag, error) {
	const selectTagsByUserQuery = `
SELECT id, user_id, name, color
FROM tags
WHERE user_id = $1
ORDER BY name, id
`
	rows, err := s.pool.Query(ctx, selectTagsByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	return collectTags(rows)
}

func (s *Storage) GetTagsByIDs(ctx context.Context, ids []int64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}

	const selectTagsByIDsQuery = `
SELECT id, user_id, name, color
FROM tags
WHERE id = ANY ($1::bigint[])
ORDER BY array_position($1::bigint[], id)
`
	rows, err := s.pool.Query(ctx, selectTagsByIDsQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags by ids: %w", err)
	}
	return collectTags(rows)
}
