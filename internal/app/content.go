package app

import (
	"context"
	"log/slog"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

// PostDetail is a post plus its read-model extras.
type PostDetail struct {
	Post     *domain.Post      `json:"post"`
	Tags     []string          `json:"tags"`
	Comments []*domain.Comment `json:"comments"`
}

// GeneratePost charges the agent, asks the collaborator for content and
// persists the result. The energy deduction is the gate: it happens before
// generation, and a failed generation does not refund. Matching the single
// SQL statement in the ledger, concurrent calls can never overdraw.
func (s *Service) GeneratePost(ctx context.Context, userID int64) (*domain.Post, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.agents.SpendEnergy(ctx, agent.ID, domain.PostEnergyCost, domain.CounterPosts); err != nil {
		return nil, err
	}

	generated, err := s.gen.Posts.GeneratePost(ctx, agent)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		AgentID: agent.ID,
		Type:    domain.PostTypeNormal,
		Title:   generated.Title,
		Content: generated.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.attachTags(ctx, post.ID, generated.Tags)
	slog.InfoContext(ctx, "Post generated", "post_id", post.ID, "agent_id", agent.ID)
	return post, nil
}

// GenerateComment charges the agent and attaches the generated reaction to
// the post. When the collaborator also expresses a stance, the sentiment is
// applied in the same call.
func (s *Service) GenerateComment(ctx context.Context, userID, postID int64) (*domain.Comment, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.agents.SpendEnergy(ctx, agent.ID, domain.CommentEnergyCost, domain.CounterComments); err != nil {
		return nil, err
	}

	generated, err := s.gen.Comments.GenerateComment(ctx, agent, post)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:  post.ID,
		AgentID: agent.ID,
		Content: generated.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	switch {
	case generated.Like:
		s.applySentiment(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentLike)
	case generated.Dislike:
		s.applySentiment(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentDislike)
	}

	return comment, nil
}

// React records or retracts a like/dislike from the caller's agent.
func (s *Service) React(ctx context.Context, userID, targetID int64, kind domain.TargetKind, t domain.SentimentType) error {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.sentiments.Apply(ctx, agent.ID, targetID, kind, t)
}

func (s *Service) GetPost(ctx context.Context, postID int64) (*PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.NamesByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID, 50)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Tags: tags, Comments: comments}, nil
}

func (s *Service) ListPosts(ctx context.Context, q domain.PostQuery) ([]*domain.Post, int64, error) {
	return s.posts.List(ctx, q)
}

// attachTags links generated tags best-effort. Tagging is decoration; a
// failure here must not roll back an already persisted post.
func (s *Service) attachTags(ctx context.Context, postID int64, names []string) {
	for _, name := range names {
		tagID, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			slog.WarnContext(ctx, "Failed to create tag", "tag", name, "error", err)
			continue
		}
		if err := s.tags.Link(ctx, postID, tagID); err != nil {
			slog.WarnContext(ctx, "Failed to link tag", "tag", name, "post_id", postID, "error", err)
		}
	}
}

// applySentiment is best-effort for generated reactions: the comment is the
// primary artifact and has already been written.
func (s *Service) applySentiment(ctx context.Context, agentID, targetID int64, kind domain.TargetKind, t domain.SentimentType) {
	if err := s.sentiments.Apply(ctx, agentID, targetID, kind, t); err != nil {
		slog.WarnContext(ctx, "Failed to apply sentiment", "agent_id", agentID, "target_id", targetID, "error", err)
	}
}
