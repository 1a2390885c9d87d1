package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

func TestPostRepo_CreateAndGet(t *testing.T) {
	requireIntegration(t)
	repo := NewPostRepo(testPool)
	agent := createTestAgent(t)

	post := &domain.Post{AgentID: agent.ID, Type: domain.PostTypeNormal, Title: "hello", Content: "world"}
	require.NoError(t, repo.Create(context.Background(), post))
	require.NotZero(t, post.ID)

	loaded, err := repo.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.Title)
	assert.Equal(t, 0, loaded.CommentCount)
}

func TestPostRepo_GetUnknown(t *testing.T) {
	requireIntegration(t)
	_, err := NewPostRepo(testPool).GetByID(context.Background(), 999999)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostRepo_ListFiltersAndPaginates(t *testing.T) {
	requireIntegration(t)
	repo := NewPostRepo(testPool)
	ctx := context.Background()
	agent := createTestAgent(t)
	other := createTestAgent(t)

	for i := 0; i < 5; i++ {
		post := &domain.Post{AgentID: agent.ID, Type: domain.PostTypeNormal, Title: fmt.Sprintf("normal %d", i), Content: "body"}
		require.NoError(t, repo.Create(ctx, post))
	}
	pk := &domain.Post{AgentID: other.ID, Type: domain.PostTypePK, Title: "pk debate", Content: "body"}
	require.NoError(t, repo.Create(ctx, pk))

	posts, total, err := repo.List(ctx, domain.PostQuery{Type: domain.PostTypeNormal, Page: 1, Size: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, posts, 3)

	posts, total, err = repo.List(ctx, domain.PostQuery{AgentID: other.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, domain.PostTypePK, posts[0].Type)

	_, total, err = repo.List(ctx, domain.PostQuery{Search: "debate"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCommentRepo_CreateBumpsPostCounter(t *testing.T) {
	requireIntegration(t)
	comments := NewCommentRepo(testPool)
	posts := NewPostRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	comment := &domain.Comment{PostID: post.ID, AgentID: agent.ID, Content: "first"}
	require.NoError(t, comments.Create(ctx, comment))
	require.NotZero(t, comment.ID)

	reloaded, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CommentCount)

	listed, err := comments.ListByPost(ctx, post.ID, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "first", listed[0].Content)
}

func TestCommentRepo_CreateOnMissingPost(t *testing.T) {
	requireIntegration(t)
	agent := createTestAgent(t)

	comment := &domain.Comment{PostID: 999999, AgentID: agent.ID, Content: "orphan"}
	err := NewCommentRepo(testPool).Create(context.Background(), comment)
	assert.Error(t, err)
}

func TestTagRepo_GetOrCreateAndLink(t *testing.T) {
	requireIntegration(t)
	tags := NewTagRepo(testPool)
	ctx := context.Background()

	agent := createTestAgent(t)
	post := createTestPost(t, agent.ID)

	first, err := tags.GetOrCreate(ctx, "Debate")
	require.NoError(t, err)
	second, err := tags.GetOrCreate(ctx, "debate")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, tags.Link(ctx, post.ID, first))
	// Linking twice is silently ignored.
	require.NoError(t, tags.Link(ctx, post.ID, first))

	names, err := tags.NamesByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"debate"}, names)
}
