package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

func activeOptions(end time.Time) []domain.PollOption {
	return []domain.PollOption{
		{ID: 10, PostID: 3, Text: "cats", Status: domain.OptionActive, EndTime: end},
		{ID: 11, PostID: 3, Text: "dogs", Status: domain.OptionActive, EndTime: end},
	}
}

func setupVoteMocks(m *serviceMocks, options []domain.PollOption) {
	m.agents.getByUserIDFn = func(ctx context.Context, userID int64) (*domain.Agent, error) {
		return testAgent(), nil
	}
	m.posts.getByIDFn = func(ctx context.Context, postID int64) (*domain.Post, error) {
		return &domain.Post{ID: postID, Type: domain.PostTypePK, Title: "cats vs dogs"}, nil
	}
	m.polls.optionsByPostFn = func(ctx context.Context, postID int64) ([]domain.PollOption, error) {
		return options, nil
	}
}

func TestCreatePoll_FixedWindow(t *testing.T) {
	svc, m := newTestService()
	m.agents.getByUserIDFn = func(ctx context.Context, userID int64) (*domain.Agent, error) {
		return testAgent(), nil
	}

	before := time.Now().Add(domain.PollDuration)
	view, err := svc.CreatePoll(context.Background(), 7)
	after := time.Now().Add(domain.PollDuration)
	require.NoError(t, err)

	assert.Equal(t, domain.PostTypePK, view.Post.Type)
	assert.Len(t, view.Options, 2)
	assert.Equal(t, domain.OptionActive, view.Status)
	assert.False(t, view.EndTime.Before(before))
	assert.False(t, view.EndTime.After(after))
}

func TestVote_RecordsChosenOption(t *testing.T) {
	svc, m := newTestService()
	setupVoteMocks(m, activeOptions(time.Now().Add(time.Hour)))
	m.generators.voteFn = func(ctx context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error) {
		assert.Equal(t, "cats", optionA)
		assert.Equal(t, "dogs", optionB)
		return &domain.GeneratedVote{Choice: "B", Reason: "dogs are loyal"}, nil
	}

	var recordedRationale *domain.Comment
	m.polls.recordVoteFn = func(ctx context.Context, vote *domain.VoteRecord, rationale *domain.Comment) error {
		recordedRationale = rationale
		return nil
	}

	vote, err := svc.Vote(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 11, vote.OptionID)
	require.NotNil(t, recordedRationale)
	assert.Equal(t, "dogs are loyal", recordedRationale.Content)
}

func TestVote_ChoiceIsCaseInsensitive(t *testing.T) {
	svc, m := newTestService()
	setupVoteMocks(m, activeOptions(time.Now().Add(time.Hour)))
	m.generators.voteFn = func(ctx context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error) {
		return &domain.GeneratedVote{Choice: " b "}, nil
	}

	vote, err := svc.Vote(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 11, vote.OptionID)
}

func TestVote_UnrecognizedChoiceDefaultsToA(t *testing.T) {
	svc, m := newTestService()
	setupVoteMocks(m, activeOptions(time.Now().Add(time.Hour)))
	m.generators.voteFn = func(ctx context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error) {
		return &domain.GeneratedVote{Choice: "maybe C?"}, nil
	}

	vote, err := svc.Vote(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 10, vote.OptionID)
}

func TestVote_ClosedPoll(t *testing.T) {
	svc, m := newTestService()
	options := activeOptions(time.Now().Add(time.Hour))
	options[0].Status = domain.OptionClosed
	options[1].Status = domain.OptionClosed
	setupVoteMocks(m, options)

	_, err := svc.Vote(context.Background(), 7, 3)
	assert.ErrorIs(t, err, domain.ErrPollClosed)
	assert.Zero(t, m.agents.spendCalls)
}

func TestVote_ExpiredWindowIsClosed(t *testing.T) {
	svc, m := newTestService()
	// Still marked active but past its end time: the sweep just has not run
	// yet, votes must be refused regardless.
	setupVoteMocks(m, activeOptions(time.Now().Add(-time.Minute)))

	_, err := svc.Vote(context.Background(), 7, 3)
	assert.ErrorIs(t, err, domain.ErrPollClosed)
}

func TestVote_NonPollPost(t *testing.T) {
	svc, m := newTestService()
	setupVoteMocks(m, activeOptions(time.Now().Add(time.Hour)))
	m.posts.getByIDFn = func(ctx context.Context, postID int64) (*domain.Post, error) {
		return &domain.Post{ID: postID, Type: domain.PostTypeNormal}, nil
	}

	_, err := svc.Vote(context.Background(), 7, 3)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestVote_DuplicateSurfaces(t *testing.T) {
	svc, m := newTestService()
	setupVoteMocks(m, activeOptions(time.Now().Add(time.Hour)))
	m.polls.recordVoteFn = func(ctx context.Context, vote *domain.VoteRecord, rationale *domain.Comment) error {
		return domain.ErrDuplicateVote
	}

	_, err := svc.Vote(context.Background(), 7, 3)
	assert.ErrorIs(t, err, domain.ErrDuplicateVote)
}

func TestPoll_AssemblesView(t *testing.T) {
	svc, m := newTestService()
	options := activeOptions(time.Now().Add(time.Hour))
	options[0].VoteCount = 3
	options[1].VoteCount = 2
	setupVoteMocks(m, options)
	m.polls.voteByAgentFn = func(ctx context.Context, agentID, postID int64) (*domain.VoteRecord, error) {
		return &domain.VoteRecord{AgentID: agentID, PostID: postID, OptionID: 11}, nil
	}

	view, err := svc.Poll(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalVotes)
	assert.True(t, view.HasVoted)
	assert.EqualValues(t, 11, view.VotedOptionID)
}

func TestPoll_AnonymousViewer(t *testing.T) {
	svc, m := newTestService()
	setupVoteMocks(m, activeOptions(time.Now().Add(time.Hour)))

	view, err := svc.Poll(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.False(t, view.HasVoted)
}
