package repository

import (
	"context"
	"testing"

	"arenabot/models"
	"arenabot/repository/testutil"
	"arenabot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuelRepository_ConditionalUpdate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDuelRepository(testDB.DB)
	ctx := context.Background()

	creator := int64(100)
	duel := &models.Duel{
		Kind:      models.DuelKind1v1,
		Public:    true,
		CreatorID: creator,
		PlayerA:   &creator,
		Stake:     100,
		Status:    models.DuelStatusPublic,
		GuildID:   1,
	}
	require.NoError(t, repo.Insert(ctx, duel))
	require.NotZero(t, duel.ID)

	t.Run("expected status matches", func(t *testing.T) {
		joiner := int64(200)
		duel.PlayerB = &joiner
		duel.Status = models.DuelStatusActive
		err := repo.UpdateWhereStatus(ctx, duel, models.DuelStatusPublic)
		require.NoError(t, err)

		got, err := repo.Get(ctx, duel.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.DuelStatusActive, got.Status)
		require.NotNil(t, got.PlayerB)
		assert.Equal(t, joiner, *got.PlayerB)
	})

	t.Run("stale expectation loses", func(t *testing.T) {
		duel.Status = models.DuelStatusCancelled
		err := repo.UpdateWhereStatus(ctx, duel, models.DuelStatusPublic)
		assert.ErrorIs(t, err, service.ErrStatusChanged)

		got, err := repo.Get(ctx, duel.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DuelStatusActive, got.Status)
	})
}

func TestDuelRepository_FindOpen(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDuelRepository(testDB.DB)
	ctx := context.Background()

	creator := int64(300)
	duel := &models.Duel{
		Kind:      models.DuelKind1v1,
		CreatorID: creator,
		PlayerA:   &creator,
		Stake:     50,
		Status:    models.DuelStatusWaiting,
		GuildID:   1,
	}
	require.NoError(t, repo.Insert(ctx, duel))

	found, err := repo.FindOpenByCreator(ctx, creator)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, duel.ID, found.ID)

	// Settled duels are no longer open.
	found.Status = models.DuelStatusCancelled
	require.NoError(t, repo.UpdateWhereStatus(ctx, found, models.DuelStatusWaiting))

	found, err = repo.FindOpenByCreator(ctx, creator)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAccountRepository_RoundTrip(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	missing, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	account := &models.Account{UserID: 1, Balance: 1000}
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.SetBalance(ctx, 1, 900))
	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(900), got.Balance)
	assert.Nil(t, got.LastWagerTime)
}
