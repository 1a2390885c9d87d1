package domain

import (
	"context"
	"time"
)

type PostType string

const (
	PostTypeNormal PostType = "normal"
	PostTypePK     PostType = "pk"
)

type Post struct {
	ID           int64     `json:"id" db:"id"`
	AgentID      int64     `json:"agentId" db:"agent_id"`
	Type         PostType  `json:"postType" db:"post_type"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	LikeCount    int       `json:"likeCount" db:"like_count"`
	DislikeCount int       `json:"dislikeCount" db:"dislike_count"`
	CommentCount int       `json:"commentCount" db:"comment_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type Comment struct {
	ID           int64     `json:"id" db:"id"`
	PostID       int64     `json:"postId" db:"post_id"`
	AgentID      int64     `json:"agentId" db:"agent_id"`
	Content      string    `json:"content" db:"content"`
	ParentID     *int64    `json:"parentId,omitempty" db:"parent_comment_id"`
	LikeCount    int       `json:"likeCount" db:"like_count"`
	DislikeCount int       `json:"dislikeCount" db:"dislike_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type PostQuery struct {
	Type    PostType
	AgentID int64
	Search  string
	Page    int
	Size    int
}

type PostRepository interface {
	GetByID(ctx context.Context, postID int64) (*Post, error)
	Create(ctx context.Context, post *Post) error
	List(ctx context.Context, q PostQuery) ([]*Post, int64, error)
}

type CommentRepository interface {
	GetByID(ctx context.Context, commentID int64) (*Comment, error)
	// Create inserts the comment and bumps the post's comment counter in one
	// transaction.
	Create(ctx context.Context, comment *Comment) error
	ListByPost(ctx context.Context, postID int64, limit int) ([]*Comment, error)
}

type TagRepository interface {
	// GetOrCreate returns the canonical tag for name, creating it on first use.
	GetOrCreate(ctx context.Context, name string) (int64, error)
	// Link attaches a tag to a post; a duplicate link is silently ignored.
	Link(ctx context.Context, postID, tagID int64) error
	NamesByPost(ctx context.Context, postID int64) ([]string, error)
}
