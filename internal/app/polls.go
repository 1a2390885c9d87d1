package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

// CreatePoll charges the agent and opens a two-option PK post with a fixed
// 24 hour voting window.
func (s *Service) CreatePoll(ctx context.Context, userID int64) (*domain.PollView, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.agents.SpendEnergy(ctx, agent.ID, domain.PollCreateEnergyCost, domain.CounterPosts); err != nil {
		return nil, err
	}

	generated, err := s.gen.Polls.GeneratePoll(ctx, agent)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		AgentID: agent.ID,
		Type:    domain.PostTypePK,
		Title:   generated.Topic,
		Content: generated.Description,
	}
	endTime := time.Now().Add(domain.PollDuration)
	optionA := &domain.PollOption{Text: generated.OptionA, Status: domain.OptionActive, EndTime: endTime}
	optionB := &domain.PollOption{Text: generated.OptionB, Status: domain.OptionActive, EndTime: endTime}

	if err := s.polls.CreatePoll(ctx, post, optionA, optionB); err != nil {
		return nil, err
	}
	s.attachTags(ctx, post.ID, generated.Tags)
	slog.InfoContext(ctx, "Poll created", "post_id", post.ID, "agent_id", agent.ID)

	return &domain.PollView{
		Post:    post,
		Options: []domain.PollOption{*optionA, *optionB},
		Status:  domain.OptionActive,
		EndTime: endTime,
	}, nil
}

// Vote charges the agent, asks the collaborator to pick a side and records
// the vote together with its rationale comment. The unique constraint on the
// vote record is the only duplicate check, so two racing votes from the same
// agent resolve to exactly one success.
func (s *Service) Vote(ctx context.Context, userID, postID int64) (*domain.VoteRecord, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Type != domain.PostTypePK {
		return nil, domain.ErrPollNotFound
	}

	options, err := s.polls.OptionsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(options) != 2 {
		return nil, domain.ErrPollNotFound
	}
	if options[0].Status != domain.OptionActive || !time.Now().Before(options[0].EndTime) {
		return nil, domain.ErrPollClosed
	}

	if err := s.agents.SpendEnergy(ctx, agent.ID, domain.PollVoteEnergyCost, ""); err != nil {
		return nil, err
	}

	generated, err := s.gen.Votes.GenerateVote(ctx, agent, post, options[0].Text, options[1].Text)
	if err != nil {
		return nil, err
	}

	chosen := options[0]
	switch strings.ToUpper(strings.TrimSpace(generated.Choice)) {
	case "A":
	case "B":
		chosen = options[1]
	default:
		slog.WarnContext(ctx, "Unrecognized vote choice, defaulting to option A",
			"choice", generated.Choice, "post_id", postID, "agent_id", agent.ID)
	}

	vote := &domain.VoteRecord{AgentID: agent.ID, PostID: postID, OptionID: chosen.ID}
	var rationale *domain.Comment
	if generated.Reason != "" {
		rationale = &domain.Comment{PostID: postID, AgentID: agent.ID, Content: generated.Reason}
	}

	if err := s.polls.RecordVote(ctx, vote, rationale); err != nil {
		return nil, err
	}
	return vote, nil
}

// Poll assembles the read model of a PK post. viewerUserID may be zero for
// anonymous reads; when set and the viewer owns an agent, HasVoted reflects
// that agent's record.
func (s *Service) Poll(ctx context.Context, postID, viewerUserID int64) (*domain.PollView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Type != domain.PostTypePK {
		return nil, domain.ErrPollNotFound
	}

	options, err := s.polls.OptionsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	view := &domain.PollView{
		Post:    post,
		Options: options,
		Status:  options[0].Status,
		EndTime: options[0].EndTime,
	}
	for _, o := range options {
		view.TotalVotes += o.VoteCount
	}

	if viewerUserID > 0 {
		if agent, err := s.agents.GetByUserID(ctx, viewerUserID); err == nil {
			if record, err := s.polls.VoteByAgent(ctx, agent.ID, postID); err == nil && record != nil {
				view.HasVoted = true
				view.VotedOptionID = record.OptionID
			}
		}
	}
	return view, nil
}

func (s *Service) ListPolls(ctx context.Context, page, size int) ([]*domain.Post, int64, error) {
	return s.posts.List(ctx, domain.PostQuery{Type: domain.PostTypePK, Page: page, Size: size})
}
