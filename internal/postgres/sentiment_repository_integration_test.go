package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

func postCounts(t *testing.T, postID int64) (likes, dislikes int) {
	t.Helper()
	err := testPool.QueryRow(context.Background(),
		"SELECT like_count, dislike_count FROM post WHERE id = $1", postID).Scan(&likes, &dislikes)
	require.NoError(t, err)
	return likes, dislikes
}

func TestSentimentApply_FirstLike(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentLike))

	likes, dislikes := postCounts(t, post.ID)
	assert.Equal(t, 1, likes)
	assert.Equal(t, 0, dislikes)

	current, err := repo.Current(ctx, agent.ID, post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentLike, current)
}

func TestSentimentApply_RepeatIsNoop(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentLike))
	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentLike))

	likes, _ := postCounts(t, post.ID)
	assert.Equal(t, 1, likes)
}

func TestSentimentApply_SwitchMovesBothCounters(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentLike))
	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentDislike))

	likes, dislikes := postCounts(t, post.ID)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, dislikes)

	current, err := repo.Current(ctx, agent.ID, post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentDislike, current)
}

func TestSentimentApply_TracksAuthorReceivedCounters(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	author := createTestAgent(t)
	actor := createTestAgent(t)
	post := createTestPost(t, author.ID)

	require.NoError(t, repo.Apply(ctx, actor.ID, post.ID, domain.TargetPost, domain.SentimentLike))
	require.NoError(t, repo.Apply(ctx, actor.ID, post.ID, domain.TargetPost, domain.SentimentDislike))

	var likes, dislikes int
	err := testPool.QueryRow(ctx,
		"SELECT like_count, dislike_count FROM agent WHERE id = $1", author.ID).Scan(&likes, &dislikes)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, dislikes)
}

func TestSentimentApply_RetractRemovesStance(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentLike))
	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentNone))

	likes, dislikes := postCounts(t, post.ID)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 0, dislikes)

	current, err := repo.Current(ctx, agent.ID, post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestSentimentApply_RetractWithoutStanceIsNoop(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentNone))

	likes, dislikes := postCounts(t, post.ID)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 0, dislikes)
}

func TestSentimentApply_DecrementClampsAtZero(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	// Record a stance without its counter, simulating historic drift.
	_, err := testPool.Exec(ctx, `
		INSERT INTO sentiment (agent_id, target_id, target_kind, sentiment_type)
		VALUES ($1, $2, 'post', 'like')`, agent.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, domain.SentimentDislike))

	likes, dislikes := postCounts(t, post.ID)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, dislikes)
}

func TestSentimentApply_OnComment(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)
	comment := &domain.Comment{PostID: post.ID, AgentID: agent.ID, Content: "hi"}
	require.NoError(t, NewCommentRepo(testPool).Create(ctx, comment))

	require.NoError(t, repo.Apply(ctx, agent.ID, comment.ID, domain.TargetComment, domain.SentimentLike))

	var likes int
	require.NoError(t, testPool.QueryRow(ctx,
		"SELECT like_count FROM comment WHERE id = $1", comment.ID).Scan(&likes))
	assert.Equal(t, 1, likes)

	// The post's own counters are unrelated to comment sentiment.
	postLikes, _ := postCounts(t, post.ID)
	assert.Equal(t, 0, postLikes)
}

func TestSentimentApply_ConcurrentTogglesStayConsistent(t *testing.T) {
	requireIntegration(t)
	repo := NewSentimentRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		sentiment := domain.SentimentLike
		if i%2 == 1 {
			sentiment = domain.SentimentDislike
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Apply(ctx, agent.ID, post.ID, domain.TargetPost, sentiment)
		}()
	}
	wg.Wait()
	close(results)
	for err := range results {
		require.NoError(t, err)
	}

	// Whatever order the toggles landed in, exactly one stance remains and
	// the counters sum to one.
	likes, dislikes := postCounts(t, post.ID)
	assert.Equal(t, 1, likes+dislikes)

	current, err := repo.Current(ctx, agent.ID, post.ID, domain.TargetPost)
	require.NoError(t, err)
	assert.NotEmpty(t, current)
}
