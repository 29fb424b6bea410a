package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"arenabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuild     = int64(1)
	testChannel   = int64(2)
	testModerator = int64(999)
)

type duelFixture struct {
	store  *memStore
	clock  *fakeClock
	ledger *Ledger
	gate   *EligibilityGate
	svc    *DuelService
}

func newDuelFixture(t *testing.T, startingBalance int64) *duelFixture {
	t.Helper()
	store := newMemStore()
	clock := newFakeClock()
	ledger := NewLedger(memAccounts{store}, nil, clock, startingBalance)
	gate := NewEligibilityGate(memAccounts{store}, memDuels{store}, memTeams{store}, clock, 24*time.Hour)
	svc := NewDuelService(memDuels{store}, memDuelInvites{store}, memTeams{store}, ledger, gate, memModerators{store}, nil, clock, DuelConfig{
		MinStake: 50,
		MaxStake: 200,
		BurnRate: 0.25,
	})
	require.NoError(t, memModerators{store}.Add(context.Background(), testGuild, testModerator))
	return &duelFixture{store: store, clock: clock, ledger: ledger, gate: gate, svc: svc}
}

// testTeam inserts a full confirmed team led by the first member.
func testTeam(t *testing.T, ctx context.Context, store *memStore, leaderID int64, members []int64) *models.Team {
	t.Helper()
	team := &models.Team{
		Name:     "team",
		LeaderID: leaderID,
		Status:   models.TeamStatusConfirmed,
		GuildID:  testGuild,
	}
	for i, m := range members {
		member := m
		team.Slots[i] = &member
	}
	require.NoError(t, memTeams{store}.Insert(ctx, team))
	return team
}

func (f *duelFixture) create(t *testing.T, creator int64, opponent *int64, stake int64) *models.Duel {
	t.Helper()
	duel, err := f.svc.CreateDuel(context.Background(), CreateDuelParams{
		CreatorID:  creator,
		Kind:       models.DuelKind1v1,
		Stake:      stake,
		OpponentID: opponent,
		GuildID:    testGuild,
		ChannelID:  testChannel,
	})
	require.NoError(t, err)
	return duel
}

func (f *duelFixture) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func TestDuelService_CreateValidatesStakeBounds(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	_, err := f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 49, GuildID: testGuild})
	assert.True(t, IsValidation(err))

	_, err = f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 201, GuildID: testGuild})
	assert.True(t, IsValidation(err))
}

func TestDuelService_CreateRejectsSelfDuel(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	self := int64(1)

	_, err := f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 100, OpponentID: &self, GuildID: testGuild})
	assert.True(t, IsValidation(err))
}

func TestDuelService_CreateEscrowsStake(t *testing.T) {
	f := newDuelFixture(t, 1000)

	duel := f.create(t, 1, nil, 100)
	assert.Equal(t, models.DuelStatusPublic, duel.Status)
	assert.Equal(t, int64(900), f.balance(t, 1))
}

func TestDuelService_CreateRefundsWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	clock := newFakeClock()
	ledger := NewLedger(memAccounts{store}, nil, clock, 1000)
	gate := NewEligibilityGate(memAccounts{store}, memDuels{store}, memTeams{store}, clock, 24*time.Hour)
	duels := new(MockDuelStore)
	duels.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	svc := NewDuelService(duels, memDuelInvites{store}, memTeams{store}, ledger, gate, memModerators{store}, nil, clock, DuelConfig{
		MinStake: 50,
		MaxStake: 200,
		BurnRate: 0.25,
	})

	_, err := svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 100, GuildID: testGuild})
	var se *StoreError
	assert.True(t, errors.As(err, &se))

	// The escrow was returned when the insert failed.
	balance, err := ledger.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
	duels.AssertExpectations(t)
}

func TestDuelService_OpenDuelRuleBlocksSecondCreate(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	f.create(t, 1, nil, 100)
	_, err := f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 100, GuildID: testGuild})
	assert.True(t, IsValidation(err))
}

func TestDuelService_PrivateFlowAcceptAndSettle(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	assert.Equal(t, models.DuelStatusWaiting, duel.Status)
	assert.Equal(t, int64(900), f.balance(t, 1))
	assert.Equal(t, int64(1000), f.balance(t, 2))

	duel, err := f.svc.AcceptInvite(ctx, duel.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusActive, duel.Status)
	assert.Equal(t, int64(900), f.balance(t, 2))

	// Both representatives are now in cooldown.
	clear, _ := f.gate.CheckCooldown(ctx, 1)
	assert.False(t, clear)
	clear, _ = f.gate.CheckCooldown(ctx, 2)
	assert.False(t, clear)

	_, err = f.svc.SubmitResult(ctx, duel.ID, 1)
	require.NoError(t, err)

	// Pot 200 at burn 0.25: winner nets 150, 50 burns.
	settlement, err := f.svc.SettleDuel(ctx, duel.ID, testModerator, testGuild, models.SideB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), settlement.WinnerID)
	assert.Equal(t, int64(150), settlement.Payout)
	assert.Equal(t, int64(50), settlement.Burned)
	assert.Equal(t, int64(900), f.balance(t, 1))
	assert.Equal(t, int64(1050), f.balance(t, 2))

	// Conservation: starting 2000 minus the 50 burned.
	assert.Equal(t, int64(1950), f.balance(t, 1)+f.balance(t, 2))
}

func TestDuelService_SettleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	_, err := f.svc.AcceptInvite(ctx, duel.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.SubmitResult(ctx, duel.ID, 2)
	require.NoError(t, err)

	_, err = f.svc.SettleDuel(ctx, duel.ID, testModerator, testGuild, models.SideA)
	require.NoError(t, err)
	after := f.balance(t, 1)

	_, err = f.svc.SettleDuel(ctx, duel.ID, testModerator, testGuild, models.SideA)
	assert.Error(t, err)
	assert.Equal(t, after, f.balance(t, 1))
}

func TestDuelService_SettleRequiresModerator(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	_, err := f.svc.AcceptInvite(ctx, duel.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.SubmitResult(ctx, duel.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.SettleDuel(ctx, duel.ID, 1, testGuild, models.SideA)
	assert.True(t, IsValidation(err))
}

func TestDuelService_DeclineRefundsCreator(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	assert.Equal(t, int64(900), f.balance(t, 1))

	declined, err := f.svc.DeclineInvite(ctx, duel.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusCancelled, declined.Status)
	assert.Equal(t, int64(1000), f.balance(t, 1))
	assert.Equal(t, int64(1000), f.balance(t, 2))
}

func TestDuelService_AcceptRejectsInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)

	// Drain the opponent below the stake after the offer was made.
	_, err := f.ledger.AddBalance(ctx, 2, -950)
	require.NoError(t, err)

	_, err = f.svc.AcceptInvite(ctx, duel.ID, 2)
	assert.True(t, IsValidation(err))

	got, err := f.svc.GetDuel(ctx, duel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusWaiting, got.Status)
}

func TestDuelService_JoinPublicFillsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	duel := f.create(t, 1, nil, 100)

	const joiners = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < joiners; i++ {
		userID := int64(10 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.JoinPublic(ctx, duel.ID, userID); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)

	// Every loser got their escrow straight back.
	var total int64
	for i := 0; i < joiners; i++ {
		total += f.balance(t, int64(10+i))
	}
	assert.Equal(t, int64(joiners*1000-100), total)
}

func TestDuelService_CancelRefundsAndBlocksOthers(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	duel := f.create(t, 1, nil, 100)

	_, err := f.svc.CancelDuel(ctx, duel.ID, 2)
	assert.True(t, IsValidation(err))

	cancelled, err := f.svc.CancelDuel(ctx, duel.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(1000), f.balance(t, 1))

	_, err = f.svc.JoinPublic(ctx, duel.ID, 3)
	assert.Error(t, err)
}

func TestDuelService_ExpireRefundsWithoutCooldown(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	duel := f.create(t, 1, nil, 100)
	f.svc.ExpireDuel(ctx, duel.ID)

	got, err := f.svc.GetDuel(ctx, duel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusCancelled, got.Status)
	assert.Equal(t, int64(1000), f.balance(t, 1))

	// An unfilled offer never consumed the creator's cooldown.
	account, err := memAccounts{f.store}.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, account.LastWagerTime)
}

func TestDuelService_ExpireSkipsProgressedDuel(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	duel := f.create(t, 1, nil, 100)
	_, err := f.svc.JoinPublic(ctx, duel.ID, 2)
	require.NoError(t, err)

	f.svc.ExpireDuel(ctx, duel.ID)

	got, err := f.svc.GetDuel(ctx, duel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusActive, got.Status)
	assert.Equal(t, int64(900), f.balance(t, 1))
}

func TestDuelService_CancelResultIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	_, err := f.svc.AcceptInvite(ctx, duel.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.SubmitResult(ctx, duel.ID, 1)
	require.NoError(t, err)

	voided, err := f.svc.CancelResult(ctx, duel.ID, testModerator, testGuild)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusResultVoided, voided.Status)

	// Both escrows stay withheld and no further settlement is possible.
	assert.Equal(t, int64(900), f.balance(t, 1))
	assert.Equal(t, int64(900), f.balance(t, 2))
	_, err = f.svc.SettleDuel(ctx, duel.ID, testModerator, testGuild, models.SideA)
	assert.Error(t, err)
}

func TestDuelService_ModeratorCancelRefundsBothSides(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	_, err := f.svc.AcceptInvite(ctx, duel.ID, 2)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelByModerator(ctx, duel.ID, testModerator, testGuild)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(1000), f.balance(t, 1))
	assert.Equal(t, int64(1000), f.balance(t, 2))
}

func TestDuelService_ModeratorCancelOfWaitingDuelRefundsOnlyCreator(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	// The invitee is named on the duel but has not accepted, so only the
	// creator's escrow exists.
	duel := f.create(t, 1, &opponent, 100)
	require.Equal(t, models.DuelStatusWaiting, duel.Status)

	cancelled, err := f.svc.CancelByModerator(ctx, duel.ID, testModerator, testGuild)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(1000), f.balance(t, 1))
	assert.Equal(t, int64(1000), f.balance(t, 2))
}

func TestDuelService_CooldownBlocksNextDuelUntilElapsed(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)
	opponent := int64(2)

	duel := f.create(t, 1, &opponent, 100)
	_, err := f.svc.AcceptInvite(ctx, duel.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.SubmitResult(ctx, duel.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.SettleDuel(ctx, duel.ID, testModerator, testGuild, models.SideA)
	require.NoError(t, err)

	_, err = f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 100, GuildID: testGuild})
	assert.True(t, IsValidation(err))

	f.clock.Advance(25 * time.Hour)
	_, err = f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 1, Kind: models.DuelKind1v1, Stake: 100, GuildID: testGuild})
	assert.NoError(t, err)
}

func TestDuelService_TeamDuelPaysWinningLeader(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	testTeam(t, ctx, f.store, 10, []int64{10, 11, 12, 13, 14})
	testTeam(t, ctx, f.store, 20, []int64{20, 21, 22, 23, 24})
	opponent := int64(20)

	duel, err := f.svc.CreateDuel(ctx, CreateDuelParams{
		CreatorID:  10,
		Kind:       models.DuelKind5v5,
		Stake:      200,
		OpponentID: &opponent,
		GuildID:    testGuild,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800), f.balance(t, 10))

	_, err = f.svc.AcceptInvite(ctx, duel.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(800), f.balance(t, 20))

	// Any roster member may report.
	_, err = f.svc.SubmitResult(ctx, duel.ID, 23)
	require.NoError(t, err)

	settlement, err := f.svc.SettleDuel(ctx, duel.ID, testModerator, testGuild, models.SideA)
	require.NoError(t, err)
	assert.Equal(t, int64(10), settlement.WinnerID)
	assert.Equal(t, int64(300), settlement.Payout)
	assert.Equal(t, int64(1100), f.balance(t, 10))
	assert.Equal(t, int64(800), f.balance(t, 20))
}

func TestDuelService_TeamDuelRequiresConfirmedFullTeam(t *testing.T) {
	ctx := context.Background()
	f := newDuelFixture(t, 1000)

	team := &models.Team{Name: "shorthanded", LeaderID: 10, Status: models.TeamStatusPending, GuildID: testGuild}
	leader := int64(10)
	team.Slots[0] = &leader
	require.NoError(t, memTeams{f.store}.Insert(ctx, team))

	_, err := f.svc.CreateDuel(ctx, CreateDuelParams{CreatorID: 10, Kind: models.DuelKind5v5, Stake: 100, GuildID: testGuild})
	assert.True(t, IsValidation(err))
}
