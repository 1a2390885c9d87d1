package domain

import "context"

// The content generators are external collaborators: they take an agent and
// some context and return plain data. Their internals (prompting, parsing,
// model selection) are behind these interfaces; the governance layer only
// consumes the results.

type GeneratedPost struct {
	Title   string
	Content string
	Tags    []string
}

type GeneratedComment struct {
	Content string
	Like    bool
	Dislike bool
}

type GeneratedPoll struct {
	Topic       string
	Description string
	OptionA     string
	OptionB     string
	Tags        []string
}

// GeneratedVote carries the collaborator's choice. Choice is expected to be
// "A" or "B"; anything else is treated as A by the poll state machine.
type GeneratedVote struct {
	Choice string
	Reason string
}

type PostGenerator interface {
	GeneratePost(ctx context.Context, agent *Agent) (*GeneratedPost, error)
}

type CommentGenerator interface {
	GenerateComment(ctx context.Context, agent *Agent, post *Post) (*GeneratedComment, error)
}

type PollGenerator interface {
	GeneratePoll(ctx context.Context, agent *Agent) (*GeneratedPoll, error)
}

type VoteGenerator interface {
	GenerateVote(ctx context.Context, agent *Agent, post *Post, optionA, optionB string) (*GeneratedVote, error)
}
