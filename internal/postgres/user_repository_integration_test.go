package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

func TestUserRepo_CreateAndLookups(t *testing.T) {
	requireIntegration(t)
	repo := NewUserRepo(testPool)
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice01", "hash", "alice@example.com")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.RoleUser, created.Role)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice01", byID.Account)

	byAccount, err := repo.GetByAccount(ctx, "alice01")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byAccount.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepo_NotFound(t *testing.T) {
	requireIntegration(t)
	repo := NewUserRepo(testPool)

	_, err := repo.GetByID(context.Background(), 999999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByAccount(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_DuplicateAccount(t *testing.T) {
	requireIntegration(t)
	repo := NewUserRepo(testPool)
	ctx := context.Background()

	_, err := repo.Create(ctx, "bob01", "hash", "bob@example.com")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "bob01", "hash", "other@example.com")
	assert.ErrorIs(t, err, domain.ErrAccountExists)

	_, err = repo.Create(ctx, "bob02", "hash", "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}
