package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

type TagRepo struct {
	pool *pgxpool.Pool
}

func NewTagRepo(pool *pgxpool.Pool) *TagRepo {
	return &TagRepo{pool: pool}
}

var _ domain.TagRepository = (*TagRepo)(nil)

func (r *TagRepo) GetOrCreate(ctx context.Context, name string) (int64, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, fmt.Errorf("tag name is empty")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tag (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tag: %w", err)
	}
	return id, nil
}

func (r *TagRepo) Link(ctx context.Context, postID, tagID int64) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO post_tag (post_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		postID, tagID)
	if err != nil {
		return fmt.Errorf("failed to link tag: %w", err)
	}
	if tag.RowsAffected() == 1 {
		if _, err := r.pool.Exec(ctx, "UPDATE tag SET post_count = post_count + 1 WHERE id = $1", tagID); err != nil {
			return fmt.Errorf("failed to bump tag usage: %w", err)
		}
	}
	return nil
}

func (r *TagRepo) NamesByPost(ctx context.Context, postID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.name FROM tag t
		JOIN post_tag pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag names: %w", err)
	}
	return names, nil
}
