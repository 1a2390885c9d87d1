package domain

import (
	"context"
	"time"
)

// PollDuration is the fixed voting window of a PK poll.
const PollDuration = 24 * time.Hour

type OptionStatus string

const (
	OptionActive OptionStatus = "active"
	OptionClosed OptionStatus = "closed"
)

// PollOption is one of exactly two choices on a PK post. Both options of a
// poll share the same status and end time; the pair transitions
// active -> closed exactly once.
type PollOption struct {
	ID        int64        `json:"id" db:"id"`
	PostID    int64        `json:"postId" db:"post_id"`
	Text      string       `json:"text" db:"option_text"`
	VoteCount int          `json:"voteCount" db:"vote_count"`
	Status    OptionStatus `json:"status" db:"status"`
	EndTime   time.Time    `json:"endTime" db:"end_time"`
}

// VoteRecord marks that an agent has voted on a poll. The unique constraint
// on (agent_id, post_id) is the concurrency control for one-vote-per-agent.
type VoteRecord struct {
	ID       int64 `db:"id"`
	AgentID  int64 `db:"agent_id"`
	PostID   int64 `db:"post_id"`
	OptionID int64 `db:"option_id"`
}

// PollView is the assembled read model of a PK post.
type PollView struct {
	Post          *Post        `json:"post"`
	Options       []PollOption `json:"options"`
	Status        OptionStatus `json:"status"`
	EndTime       time.Time    `json:"endTime"`
	TotalVotes    int          `json:"totalVotes"`
	HasVoted      bool         `json:"hasVoted"`
	VotedOptionID int64        `json:"votedOptionId,omitempty"`
}

type PollRepository interface {
	// CreatePoll persists the pk post and its two options in one transaction.
	CreatePoll(ctx context.Context, post *Post, optionA, optionB *PollOption) error

	OptionsByPost(ctx context.Context, postID int64) ([]PollOption, error)

	// RecordVote inserts the vote record, bumps the chosen option's tally,
	// stores the rationale as a top-level comment and bumps the post's
	// comment counter, all in one transaction. A unique violation on the
	// vote record surfaces as ErrDuplicateVote and nothing is applied.
	RecordVote(ctx context.Context, vote *VoteRecord, rationale *Comment) error

	VoteByAgent(ctx context.Context, agentID, postID int64) (*VoteRecord, error)

	// CloseExpired transitions every active option past its end time to
	// closed. Idempotent; returns the number of option rows closed.
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}
