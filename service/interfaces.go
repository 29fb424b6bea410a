package service

import (
	"context"
	"errors"
	"time"

	"arenabot/events"
	"arenabot/models"
)

// ErrStatusChanged is returned by conditional store updates when the row's
// status no longer matches the expected value. The write that flips a
// status away from an open state is the single linearization point for
// competing actors; the loser observes this error.
var ErrStatusChanged = errors.New("status changed by a concurrent update")

// Clock supplies the current time. Injected so cooldown and expiry logic
// is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// AccountStore defines keyed access to the accounts collection. Balance
// and cooldown markers are written as separate columns so the ledger and
// the eligibility gate never clobber each other under last-write-wins.
type AccountStore interface {
	// Get retrieves an account, or nil if none exists yet
	Get(ctx context.Context, userID int64) (*models.Account, error)

	// Create inserts a new account row
	Create(ctx context.Context, account *models.Account) error

	// SetBalance persists a new balance for the account
	SetBalance(ctx context.Context, userID int64, balance int64) error

	// SetLastWagerTime persists the cooldown marker for the account
	SetLastWagerTime(ctx context.Context, userID int64, t time.Time) error

	// ListByBalance returns up to limit accounts ordered by balance descending
	ListByBalance(ctx context.Context, limit int) ([]*models.Account, error)
}

// DuelStore defines keyed access to the duels collection
type DuelStore interface {
	// Insert creates a new duel and assigns its ID
	Insert(ctx context.Context, duel *models.Duel) error

	// Get retrieves a duel, or nil if not found
	Get(ctx context.Context, id int64) (*models.Duel, error)

	// UpdateWhereStatus writes the duel row only if its stored status still
	// equals expect; returns ErrStatusChanged otherwise
	UpdateWhereStatus(ctx context.Context, duel *models.Duel, expect models.DuelStatus) error

	// FindOpenByCreator returns the creator's duel in waiting/public, or nil
	FindOpenByCreator(ctx context.Context, userID int64) (*models.Duel, error)

	// FindOpenByTeam returns the team's duel in waiting/public, or nil
	FindOpenByTeam(ctx context.Context, teamID int64) (*models.Duel, error)
}

// DuelInviteStore defines keyed access to the duel_invites collection
type DuelInviteStore interface {
	// Insert creates a new duel invite
	Insert(ctx context.Context, invite *models.DuelInvite) error

	// Get retrieves the invite for a (duel, user) pair, or nil
	Get(ctx context.Context, duelID, userID int64) (*models.DuelInvite, error)

	// SetStatus updates the invite's status
	SetStatus(ctx context.Context, duelID, userID int64, status models.InviteStatus) error
}

// TeamStore defines keyed access to the teams collection
type TeamStore interface {
	// Insert creates a new team and assigns its ID
	Insert(ctx context.Context, team *models.Team) error

	// Get retrieves a team, or nil if not found
	Get(ctx context.Context, id int64) (*models.Team, error)

	// Update writes the team row (slots and status change together)
	Update(ctx context.Context, team *models.Team) error

	// Delete removes the team row
	Delete(ctx context.Context, id int64) error

	// GetByMember returns the team whose roster contains the user, or nil
	GetByMember(ctx context.Context, userID int64) (*models.Team, error)
}

// TeamInviteStore defines keyed access to the team_invites collection.
// One row exists per (team, user) pair; superseding a stale invite updates
// the row in place rather than inserting a duplicate.
type TeamInviteStore interface {
	// Insert creates a new team invite
	Insert(ctx context.Context, invite *models.TeamInvite) error

	// Get retrieves the invite for a (team, user) pair, or nil
	Get(ctx context.Context, teamID, userID int64) (*models.TeamInvite, error)

	// Update writes the invite's status and timestamp
	Update(ctx context.Context, invite *models.TeamInvite) error

	// ListByTeam returns all invites recorded for the team
	ListByTeam(ctx context.Context, teamID int64) ([]*models.TeamInvite, error)

	// DeleteByTeam removes all invites for a disbanded team
	DeleteByTeam(ctx context.Context, teamID int64) error
}

// MatchStore defines keyed access to the matches collection
type MatchStore interface {
	// Insert creates a new match and assigns its ID
	Insert(ctx context.Context, match *models.Match) error

	// Get retrieves a match, or nil if not found
	Get(ctx context.Context, id int64) (*models.Match, error)

	// UpdateWhereStatus writes the match row only if its stored status still
	// equals expect; returns ErrStatusChanged otherwise
	UpdateWhereStatus(ctx context.Context, match *models.Match, expect models.MatchStatus) error
}

// BetStore defines keyed access to the bets collection
type BetStore interface {
	// Insert records a new bet and assigns its ID
	Insert(ctx context.Context, bet *models.Bet) error

	// ListByMatch returns all bets recorded for the match
	ListByMatch(ctx context.Context, matchID int64) ([]*models.Bet, error)

	// ListByMatchSide returns the match's bets on one side
	ListByMatchSide(ctx context.Context, matchID int64, side models.Side) ([]*models.Bet, error)
}

// ModeratorStore defines keyed access to the per-guild moderator roster
type ModeratorStore interface {
	// IsModerator reports whether the user moderates the guild
	IsModerator(ctx context.Context, guildID, userID int64) (bool, error)

	// Add records a moderator for the guild
	Add(ctx context.Context, guildID, userID int64) error

	// Remove deletes a moderator from the guild
	Remove(ctx context.Context, guildID, userID int64) error

	// List returns the guild's moderator IDs
	List(ctx context.Context, guildID int64) ([]int64, error)
}

// EventPublisher defines the interface for publishing state-change events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}
