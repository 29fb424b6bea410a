package service

import (
	"context"
	"time"

	"arenabot/events"
	"arenabot/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountStore is a mock implementation of AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Get(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) SetBalance(ctx context.Context, userID int64, balance int64) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockAccountStore) SetLastWagerTime(ctx context.Context, userID int64, t time.Time) error {
	args := m.Called(ctx, userID, t)
	return args.Error(0)
}

func (m *MockAccountStore) ListByBalance(ctx context.Context, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockDuelStore is a mock implementation of DuelStore
type MockDuelStore struct {
	mock.Mock
}

func (m *MockDuelStore) Insert(ctx context.Context, duel *models.Duel) error {
	args := m.Called(ctx, duel)
	return args.Error(0)
}

func (m *MockDuelStore) Get(ctx context.Context, id int64) (*models.Duel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Duel), args.Error(1)
}

func (m *MockDuelStore) UpdateWhereStatus(ctx context.Context, duel *models.Duel, expect models.DuelStatus) error {
	args := m.Called(ctx, duel, expect)
	return args.Error(0)
}

func (m *MockDuelStore) FindOpenByCreator(ctx context.Context, userID int64) (*models.Duel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Duel), args.Error(1)
}

func (m *MockDuelStore) FindOpenByTeam(ctx context.Context, teamID int64) (*models.Duel, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Duel), args.Error(1)
}

// MockDuelInviteStore is a mock implementation of DuelInviteStore
type MockDuelInviteStore struct {
	mock.Mock
}

func (m *MockDuelInviteStore) Insert(ctx context.Context, invite *models.DuelInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockDuelInviteStore) Get(ctx context.Context, duelID, userID int64) (*models.DuelInvite, error) {
	args := m.Called(ctx, duelID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelInvite), args.Error(1)
}

func (m *MockDuelInviteStore) SetStatus(ctx context.Context, duelID, userID int64, status models.InviteStatus) error {
	args := m.Called(ctx, duelID, userID, status)
	return args.Error(0)
}

// MockTeamStore is a mock implementation of TeamStore
type MockTeamStore struct {
	mock.Mock
}

func (m *MockTeamStore) Insert(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamStore) Get(ctx context.Context, id int64) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamStore) Update(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTeamStore) GetByMember(ctx context.Context, userID int64) (*models.Team, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

// MockTeamInviteStore is a mock implementation of TeamInviteStore
type MockTeamInviteStore struct {
	mock.Mock
}

func (m *MockTeamInviteStore) Insert(ctx context.Context, invite *models.TeamInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockTeamInviteStore) Get(ctx context.Context, teamID, userID int64) (*models.TeamInvite, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvite), args.Error(1)
}

func (m *MockTeamInviteStore) Update(ctx context.Context, invite *models.TeamInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockTeamInviteStore) ListByTeam(ctx context.Context, teamID int64) ([]*models.TeamInvite, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TeamInvite), args.Error(1)
}

func (m *MockTeamInviteStore) DeleteByTeam(ctx context.Context, teamID int64) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

// MockMatchStore is a mock implementation of MatchStore
type MockMatchStore struct {
	mock.Mock
}

func (m *MockMatchStore) Insert(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchStore) Get(ctx context.Context, id int64) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockMatchStore) UpdateWhereStatus(ctx context.Context, match *models.Match, expect models.MatchStatus) error {
	args := m.Called(ctx, match, expect)
	return args.Error(0)
}

// MockBetStore is a mock implementation of BetStore
type MockBetStore struct {
	mock.Mock
}

func (m *MockBetStore) Insert(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetStore) ListByMatch(ctx context.Context, matchID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetStore) ListByMatchSide(ctx context.Context, matchID int64, side models.Side) ([]*models.Bet, error) {
	args := m.Called(ctx, matchID, side)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockModeratorStore is a mock implementation of ModeratorStore
type MockModeratorStore struct {
	mock.Mock
}

func (m *MockModeratorStore) IsModerator(ctx context.Context, guildID, userID int64) (bool, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockModeratorStore) Add(ctx context.Context, guildID, userID int64) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

func (m *MockModeratorStore) Remove(ctx context.Context, guildID, userID int64) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

func (m *MockModeratorStore) List(ctx context.Context, guildID int64) ([]int64, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
