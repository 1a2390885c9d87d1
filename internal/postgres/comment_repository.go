package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

var _ domain.CommentRepository = (*CommentRepo)(nil)

const commentColumns = "id, post_id, agent_id, content, parent_comment_id, like_count, dislike_count, created_at"

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AgentID, &c.Content, &c.ParentID, &c.LikeCount, &c.DislikeCount, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return &c, nil
}

func (r *CommentRepo) GetByID(ctx context.Context, commentID int64) (*domain.Comment, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+commentColumns+" FROM comment WHERE id = $1", commentID)
	return scanComment(row)
}

func (r *CommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return insertComment(ctx, tx, comment)
	})
}

// insertComment writes the comment and bumps the parent post's counter. The
// caller supplies the transaction so vote rationales ride the vote's.
func insertComment(ctx context.Context, tx pgx.Tx, comment *domain.Comment) error {
	row := tx.QueryRow(ctx, `
		INSERT INTO comment (post_id, agent_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, like_count, dislike_count, created_at`,
		comment.PostID, comment.AgentID, comment.Content, comment.ParentID)
	if err := row.Scan(&comment.ID, &comment.LikeCount, &comment.DislikeCount, &comment.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	tag, err := tx.Exec(ctx,
		"UPDATE post SET comment_count = comment_count + 1, updated_at = now() WHERE id = $1",
		comment.PostID)
	if err != nil {
		return fmt.Errorf("failed to bump comment count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID int64, limit int) ([]*domain.Comment, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		"SELECT "+commentColumns+" FROM comment WHERE post_id = $1 ORDER BY created_at, id LIMIT $2",
		postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0, limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}
