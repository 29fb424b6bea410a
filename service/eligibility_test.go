package service

import (
	"context"
	"testing"
	"time"

	"arenabot/models"

	"github.com/stretchr/testify/assert"
)

func TestEligibilityGate_UnknownUserIsClear(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	gate := NewEligibilityGate(memAccounts{store}, memDuels{store}, memTeams{store}, newFakeClock(), 24*time.Hour)

	clear, err := gate.CheckCooldown(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, clear)
}

func TestEligibilityGate_CooldownElapses(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	clock := newFakeClock()
	gate := NewEligibilityGate(memAccounts{store}, memDuels{store}, memTeams{store}, clock, 24*time.Hour)

	assert.NoError(t, gate.StartCooldown(ctx, 1))

	clear, err := gate.CheckCooldown(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, clear)

	clock.Advance(23 * time.Hour)
	clear, _ = gate.CheckCooldown(ctx, 1)
	assert.False(t, clear)

	clock.Advance(2 * time.Hour)
	clear, _ = gate.CheckCooldown(ctx, 1)
	assert.True(t, clear)
}

func TestEligibilityGate_OpenDuelByCreator(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	gate := NewEligibilityGate(memAccounts{store}, memDuels{store}, memTeams{store}, newFakeClock(), 24*time.Hour)

	creator := int64(5)
	duel := &models.Duel{Kind: models.DuelKind1v1, CreatorID: creator, PlayerA: &creator, Stake: 100, Status: models.DuelStatusPublic}
	assert.NoError(t, memDuels{store}.Insert(ctx, duel))

	openID, err := gate.OpenDuel(ctx, creator)
	assert.NoError(t, err)
	assert.Equal(t, duel.ID, openID)

	openID, err = gate.OpenDuel(ctx, 6)
	assert.NoError(t, err)
	assert.Zero(t, openID)
}

func TestEligibilityGate_OpenDuelBindsTeamLeader(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	gate := NewEligibilityGate(memAccounts{store}, memDuels{store}, memTeams{store}, newFakeClock(), 24*time.Hour)

	team := testTeam(t, ctx, store, 10, []int64{10, 11, 12, 13, 14})
	teamID := team.ID
	duel := &models.Duel{Kind: models.DuelKind5v5, CreatorID: 10, TeamA: &teamID, Stake: 100, Status: models.DuelStatusWaiting}
	assert.NoError(t, memDuels{store}.Insert(ctx, duel))

	// The leader is bound by the team's open duel; a plain member is not.
	openID, err := gate.OpenDuel(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, duel.ID, openID)

	openID, err = gate.OpenDuel(ctx, 11)
	assert.NoError(t, err)
	assert.Zero(t, openID)
}
