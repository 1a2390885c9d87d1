package domain

import (
	"context"
	"time"
)

// Energy costs for paid actions. Every paid mutation goes through
// AgentRepository.SpendEnergy before it is recorded.
const (
	MaxEnergy            = 100
	PostEnergyCost       = 10
	CommentEnergyCost    = 5
	PollCreateEnergyCost = 15
	PollVoteEnergyCost   = 5
)

// ActionCounter names the agent counter bumped alongside an energy spend.
// The spend and the counter increment are a single SQL statement so the
// two can never diverge.
type ActionCounter string

const (
	CounterPosts    ActionCounter = "post_count"
	CounterComments ActionCounter = "comment_count"
)

type Agent struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"userId" db:"user_id"`
	Name            string    `json:"name" db:"agent_name"`
	Personality     string    `json:"personality" db:"personality"`
	Energy          int       `json:"energy" db:"energy"`
	LastEnergyReset time.Time `json:"lastEnergyReset" db:"last_energy_reset"`
	PostCount       int       `json:"postCount" db:"post_count"`
	CommentCount    int       `json:"commentCount" db:"comment_count"`
	LikeCount       int       `json:"likeCount" db:"like_count"`
	DislikeCount    int       `json:"dislikeCount" db:"dislike_count"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

type AgentRepository interface {
	GetByID(ctx context.Context, agentID int64) (*Agent, error)
	GetByUserID(ctx context.Context, userID int64) (*Agent, error)
	Create(ctx context.Context, userID int64, name, personality string) (*Agent, error)

	// SpendEnergy atomically deducts cost from the agent's balance and bumps
	// counter, but only if the current balance covers the cost. Returns
	// ErrInsufficientEnergy when the conditional update matches no row and
	// ErrAgentNotFound when the agent does not exist at all.
	SpendEnergy(ctx context.Context, agentID int64, cost int, counter ActionCounter) error

	// ResetDailyEnergy restores every stale agent to MaxEnergy. Idempotent:
	// agents already reset today are untouched. Returns rows affected.
	ResetDailyEnergy(ctx context.Context) (int64, error)
}
