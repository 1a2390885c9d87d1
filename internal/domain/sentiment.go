package domain

import "context"

type SentimentType string

const (
	SentimentLike    SentimentType = "like"
	SentimentDislike SentimentType = "dislike"
	// SentimentNone retracts a recorded stance.
	SentimentNone SentimentType = "none"
)

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// SentimentStore applies an agent's like/dislike stance toward a post or a
// comment. A stance is mutually exclusive per (actor, target): switching
// sides updates the existing record and adjusts both aggregate counters in
// the same transaction. Repeating the current stance is a no-op.
// SentimentNone removes the record along with its counter contribution.
type SentimentStore interface {
	Apply(ctx context.Context, actorAgentID, targetID int64, kind TargetKind, newType SentimentType) error
	// Current returns the actor's stance, or "" when none is recorded.
	Current(ctx context.Context, actorAgentID, targetID int64, kind TargetKind) (SentimentType, error)
}
