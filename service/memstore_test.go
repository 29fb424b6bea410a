package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"arenabot/models"
)

// memStore is an in-memory implementation of every store interface with the
// same conditional-update semantics as the real repositories. Used by the
// stateful tests; concurrency tests rely on its per-call locking matching
// what a real non-transactional store provides.
type memStore struct {
	mu          sync.Mutex
	accounts    map[int64]models.Account
	duels       map[int64]models.Duel
	duelInvites map[string]models.DuelInvite
	teams       map[int64]models.Team
	teamInvites map[string]models.TeamInvite
	matches     map[int64]models.Match
	bets        map[int64]models.Bet
	moderators  map[int64]map[int64]bool
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    make(map[int64]models.Account),
		duels:       make(map[int64]models.Duel),
		duelInvites: make(map[string]models.DuelInvite),
		teams:       make(map[int64]models.Team),
		teamInvites: make(map[string]models.TeamInvite),
		matches:     make(map[int64]models.Match),
		bets:        make(map[int64]models.Bet),
		moderators:  make(map[int64]map[int64]bool),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func pairKey(a, b int64) string {
	return fmt.Sprintf("%d/%d", a, b)
}

// AccountStore

func (s *memStore) Get(ctx context.Context, userID int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		copy := a
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.UserID] = *account
	return nil
}

func (s *memStore) SetBalance(ctx context.Context, userID int64, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID]
	a.UserID = userID
	a.Balance = balance
	s.accounts[userID] = a
	return nil
}

func (s *memStore) SetLastWagerTime(ctx context.Context, userID int64, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID]
	a.UserID = userID
	a.LastWagerTime = &t
	s.accounts[userID] = a
	return nil
}

func (s *memStore) ListByBalance(ctx context.Context, limit int) ([]*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		copy := a
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DuelStore

func (s *memStore) Insert(ctx context.Context, duel *models.Duel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	duel.ID = s.id()
	s.duels[duel.ID] = *duel
	return nil
}

func (s *memStore) GetDuel(ctx context.Context, id int64) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.duels[id]; ok {
		copy := d
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) UpdateDuelWhereStatus(ctx context.Context, duel *models.Duel, expect models.DuelStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.duels[duel.ID]
	if !ok || cur.Status != expect {
		return ErrStatusChanged
	}
	s.duels[duel.ID] = *duel
	return nil
}

func (s *memStore) FindOpenByCreator(ctx context.Context, userID int64) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.duels {
		if d.CreatorID == userID && d.IsOpen() {
			copy := d
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindOpenByTeam(ctx context.Context, teamID int64) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.duels {
		if d.TeamA != nil && *d.TeamA == teamID && d.IsOpen() {
			copy := d
			return &copy, nil
		}
	}
	return nil, nil
}

// DuelInviteStore

func (s *memStore) InsertDuelInvite(ctx context.Context, invite *models.DuelInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite.ID = s.id()
	s.duelInvites[pairKey(invite.DuelID, invite.UserID)] = *invite
	return nil
}

func (s *memStore) GetDuelInvite(ctx context.Context, duelID, userID int64) (*models.DuelInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.duelInvites[pairKey(duelID, userID)]; ok {
		copy := i
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) SetDuelInviteStatus(ctx context.Context, duelID, userID int64, status models.InviteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(duelID, userID)
	i := s.duelInvites[key]
	i.Status = status
	s.duelInvites[key] = i
	return nil
}

// TeamStore

func (s *memStore) InsertTeam(ctx context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team.ID = s.id()
	s.teams[team.ID] = *team
	return nil
}

func (s *memStore) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.teams[id]; ok {
		copy := t
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) UpdateTeam(ctx context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = *team
	return nil
}

func (s *memStore) DeleteTeam(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teams, id)
	return nil
}

func (s *memStore) GetTeamByMember(ctx context.Context, userID int64) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.HasMember(userID) {
			copy := t
			return &copy, nil
		}
	}
	return nil, nil
}

// TeamInviteStore

func (s *memStore) InsertTeamInvite(ctx context.Context, invite *models.TeamInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite.ID = s.id()
	s.teamInvites[pairKey(invite.TeamID, invite.UserID)] = *invite
	return nil
}

func (s *memStore) GetTeamInvite(ctx context.Context, teamID, userID int64) (*models.TeamInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.teamInvites[pairKey(teamID, userID)]; ok {
		copy := i
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) UpdateTeamInvite(ctx context.Context, invite *models.TeamInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamInvites[pairKey(invite.TeamID, invite.UserID)] = *invite
	return nil
}

func (s *memStore) ListTeamInvites(ctx context.Context, teamID int64) ([]*models.TeamInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TeamInvite
	for _, i := range s.teamInvites {
		if i.TeamID == teamID {
			copy := i
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *memStore) DeleteTeamInvitesByTeam(ctx context.Context, teamID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, i := range s.teamInvites {
		if i.TeamID == teamID {
			delete(s.teamInvites, k)
		}
	}
	return nil
}

// MatchStore

func (s *memStore) InsertMatch(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	match.ID = s.id()
	s.matches[match.ID] = *match
	return nil
}

func (s *memStore) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matches[id]; ok {
		copy := m
		return &copy, nil
	}
	return nil, nil
}

func (s *memStore) UpdateMatchWhereStatus(ctx context.Context, match *models.Match, expect models.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.matches[match.ID]
	if !ok || cur.Status != expect {
		return ErrStatusChanged
	}
	s.matches[match.ID] = *match
	return nil
}

// BetStore

func (s *memStore) InsertBet(ctx context.Context, bet *models.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bet.ID = s.id()
	s.bets[bet.ID] = *bet
	return nil
}

func (s *memStore) ListBets(ctx context.Context, matchID int64) ([]*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Bet
	for _, b := range s.bets {
		if b.MatchID == matchID {
			copy := b
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListBetsBySide(ctx context.Context, matchID int64, side models.Side) ([]*models.Bet, error) {
	all, _ := s.ListBets(ctx, matchID)
	var out []*models.Bet
	for _, b := range all {
		if b.Side == side {
			out = append(out, b)
		}
	}
	return out, nil
}

// ModeratorStore

func (s *memStore) IsModerator(ctx context.Context, guildID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moderators[guildID][userID], nil
}

func (s *memStore) AddModerator(ctx context.Context, guildID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moderators[guildID] == nil {
		s.moderators[guildID] = make(map[int64]bool)
	}
	s.moderators[guildID][userID] = true
	return nil
}

func (s *memStore) RemoveModerator(ctx context.Context, guildID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.moderators[guildID], userID)
	return nil
}

func (s *memStore) ListModerators(ctx context.Context, guildID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for id := range s.moderators[guildID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Adapters binding memStore methods to the store interfaces, since a few
// method names collide across interfaces on the shared struct.

type memAccounts struct{ *memStore }

type memDuels struct{ *memStore }

func (m memDuels) Insert(ctx context.Context, duel *models.Duel) error {
	return m.memStore.Insert(ctx, duel)
}
func (m memDuels) Get(ctx context.Context, id int64) (*models.Duel, error) {
	return m.memStore.GetDuel(ctx, id)
}
func (m memDuels) UpdateWhereStatus(ctx context.Context, duel *models.Duel, expect models.DuelStatus) error {
	return m.memStore.UpdateDuelWhereStatus(ctx, duel, expect)
}

type memDuelInvites struct{ *memStore }

func (m memDuelInvites) Insert(ctx context.Context, invite *models.DuelInvite) error {
	return m.memStore.InsertDuelInvite(ctx, invite)
}
func (m memDuelInvites) Get(ctx context.Context, duelID, userID int64) (*models.DuelInvite, error) {
	return m.memStore.GetDuelInvite(ctx, duelID, userID)
}
func (m memDuelInvites) SetStatus(ctx context.Context, duelID, userID int64, status models.InviteStatus) error {
	return m.memStore.SetDuelInviteStatus(ctx, duelID, userID, status)
}

type memTeams struct{ *memStore }

func (m memTeams) Insert(ctx context.Context, team *models.Team) error {
	return m.memStore.InsertTeam(ctx, team)
}
func (m memTeams) Get(ctx context.Context, id int64) (*models.Team, error) {
	return m.memStore.GetTeam(ctx, id)
}
func (m memTeams) Update(ctx context.Context, team *models.Team) error {
	return m.memStore.UpdateTeam(ctx, team)
}
func (m memTeams) Delete(ctx context.Context, id int64) error {
	return m.memStore.DeleteTeam(ctx, id)
}
func (m memTeams) GetByMember(ctx context.Context, userID int64) (*models.Team, error) {
	return m.memStore.GetTeamByMember(ctx, userID)
}

type memTeamInvites struct{ *memStore }

func (m memTeamInvites) Insert(ctx context.Context, invite *models.TeamInvite) error {
	return m.memStore.InsertTeamInvite(ctx, invite)
}
func (m memTeamInvites) Get(ctx context.Context, teamID, userID int64) (*models.TeamInvite, error) {
	return m.memStore.GetTeamInvite(ctx, teamID, userID)
}
func (m memTeamInvites) Update(ctx context.Context, invite *models.TeamInvite) error {
	return m.memStore.UpdateTeamInvite(ctx, invite)
}
func (m memTeamInvites) ListByTeam(ctx context.Context, teamID int64) ([]*models.TeamInvite, error) {
	return m.memStore.ListTeamInvites(ctx, teamID)
}
func (m memTeamInvites) DeleteByTeam(ctx context.Context, teamID int64) error {
	return m.memStore.DeleteTeamInvitesByTeam(ctx, teamID)
}

type memMatches struct{ *memStore }

func (m memMatches) Insert(ctx context.Context, match *models.Match) error {
	return m.memStore.InsertMatch(ctx, match)
}
func (m memMatches) Get(ctx context.Context, id int64) (*models.Match, error) {
	return m.memStore.GetMatch(ctx, id)
}
func (m memMatches) UpdateWhereStatus(ctx context.Context, match *models.Match, expect models.MatchStatus) error {
	return m.memStore.UpdateMatchWhereStatus(ctx, match, expect)
}

type memBets struct{ *memStore }

func (m memBets) Insert(ctx context.Context, bet *models.Bet) error {
	return m.memStore.InsertBet(ctx, bet)
}
func (m memBets) ListByMatch(ctx context.Context, matchID int64) ([]*models.Bet, error) {
	return m.memStore.ListBets(ctx, matchID)
}
func (m memBets) ListByMatchSide(ctx context.Context, matchID int64, side models.Side) ([]*models.Bet, error) {
	return m.memStore.ListBetsBySide(ctx, matchID, side)
}

type memModerators struct{ *memStore }

func (m memModerators) Add(ctx context.Context, guildID, userID int64) error {
	return m.memStore.AddModerator(ctx, guildID, userID)
}
func (m memModerators) Remove(ctx context.Context, guildID, userID int64) error {
	return m.memStore.RemoveModerator(ctx, guildID, userID)
}
func (m memModerators) List(ctx context.Context, guildID int64) ([]int64, error) {
	return m.memStore.ListModerators(ctx, guildID)
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
