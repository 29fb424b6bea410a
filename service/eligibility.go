package service

import (
	"context"
	"time"
)

// EligibilityGate enforces the per-user wager cooldown and the one-open-
// duel-at-a-time rule. The cooldown is consumed only once a wager becomes
// mutually committed; a one-sided offer that nobody accepts never costs the
// creator their cooldown.
type EligibilityGate struct {
	accounts AccountStore
	duels    DuelStore
	teams    TeamStore
	clock    Clock
	cooldown time.Duration
}

// NewEligibilityGate creates a new eligibility gate
func NewEligibilityGate(accounts AccountStore, duels DuelStore, teams TeamStore, clock Clock, cooldown time.Duration) *EligibilityGate {
	return &EligibilityGate{
		accounts: accounts,
		duels:    duels,
		teams:    teams,
		clock:    clock,
		cooldown: cooldown,
	}
}

// CheckCooldown reports whether the user's cooldown has elapsed. Users
// without an account yet have never wagered and are always clear.
func (g *EligibilityGate) CheckCooldown(ctx context.Context, userID int64) (bool, error) {
	account, err := g.accounts.Get(ctx, userID)
	if err != nil {
		return false, storeErr("get account", err)
	}
	if account == nil {
		return true, nil
	}
	return account.CooldownClear(g.clock.Now(), g.cooldown), nil
}

// StartCooldown marks the user as having entered a committed wager now.
// Called for both sides at the moment a duel becomes active, never at
// creation of a one-sided offer.
func (g *EligibilityGate) StartCooldown(ctx context.Context, userID int64) error {
	if err := g.accounts.SetLastWagerTime(ctx, userID, g.clock.Now()); err != nil {
		return storeErr("set last wager time", err)
	}
	return nil
}

// OpenDuel returns the ID of the user's open duel (waiting or public), or
// zero if they have none. For team play the rule binds the team's leader:
// a duel fielded by the team the user leads counts as theirs.
func (g *EligibilityGate) OpenDuel(ctx context.Context, userID int64) (int64, error) {
	duel, err := g.duels.FindOpenByCreator(ctx, userID)
	if err != nil {
		return 0, storeErr("find open duel", err)
	}
	if duel != nil {
		return duel.ID, nil
	}

	team, err := g.teams.GetByMember(ctx, userID)
	if err != nil {
		return 0, storeErr("get team", err)
	}
	if team == nil || team.LeaderID != userID {
		return 0, nil
	}

	duel, err = g.duels.FindOpenByTeam(ctx, team.ID)
	if err != nil {
		return 0, storeErr("find open team duel", err)
	}
	if duel != nil {
		return duel.ID, nil
	}
	return 0, nil
}
