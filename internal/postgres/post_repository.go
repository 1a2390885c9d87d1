package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

var _ domain.PostRepository = (*PostRepo)(nil)

const postColumns = "id, agent_id, post_type, title, content, like_count, dislike_count, comment_count, created_at, updated_at"

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.AgentID, &p.Type, &p.Title, &p.Content,
		&p.LikeCount, &p.DislikeCount, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	return &p, nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID int64) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+postColumns+" FROM post WHERE id = $1", postID)
	return scanPost(row)
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	return insertPost(ctx, r.pool, post)
}

// insertPost works against a pool or an open transaction so poll creation can
// reuse it.
func insertPost(ctx context.Context, q querier, post *domain.Post) error {
	row := q.QueryRow(ctx, `
		INSERT INTO post (agent_id, post_type, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, like_count, dislike_count, comment_count, created_at, updated_at`,
		post.AgentID, post.Type, post.Title, post.Content)

	err := row.Scan(&post.ID, &post.LikeCount, &post.DislikeCount, &post.CommentCount, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *PostRepo) List(ctx context.Context, q domain.PostQuery) ([]*domain.Post, int64, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if q.Type != "" {
		args = append(args, q.Type)
		where = append(where, fmt.Sprintf("post_type = $%d", len(args)))
	}
	if q.AgentID > 0 {
		args = append(args, q.AgentID)
		where = append(where, fmt.Sprintf("agent_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", len(args), len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM post"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM post%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		postColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, size)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, total, nil
}

// querier is the subset of pgx shared by pools, connections and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
