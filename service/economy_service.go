package service

import (
	"context"

	"arenabot/models"

	log "github.com/sirupsen/logrus"
)

// EconomyService covers the economy's administrative surface: balance
// lookups, moderator grants, the leaderboard and the per-guild moderator
// roster.
type EconomyService struct {
	accounts AccountStore
	ledger   *Ledger
	mods     ModeratorStore
}

// NewEconomyService creates a new economy service
func NewEconomyService(accounts AccountStore, ledger *Ledger, mods ModeratorStore) *EconomyService {
	return &EconomyService{
		accounts: accounts,
		ledger:   ledger,
		mods:     mods,
	}
}

// GetBalance returns the user's balance, creating the account on first
// reference.
func (s *EconomyService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.ledger.GetBalance(ctx, userID)
}

// Grant credits points to a user out of thin air. Moderator-only; the
// amount may be negative to claw points back.
func (s *EconomyService) Grant(ctx context.Context, guildID, moderatorID, userID, amount int64) (int64, error) {
	ok, err := s.mods.IsModerator(ctx, guildID, moderatorID)
	if err != nil {
		return 0, storeErr("check moderator", err)
	}
	if !ok {
		return 0, validationf("moderator only")
	}
	if amount == 0 {
		return 0, validationf("grant amount must be non-zero")
	}

	newBalance, err := s.ledger.AddBalance(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"moderatorID": moderatorID,
		"userID":      userID,
		"amount":      amount,
	}).Info("Points granted")
	return newBalance, nil
}

// Leaderboard returns up to limit accounts ordered by balance descending.
func (s *EconomyService) Leaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		limit = 10
	}
	accounts, err := s.accounts.ListByBalance(ctx, limit)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	return accounts, nil
}

// AddModerator records a moderator for the guild. Guild-admin gating
// happens at the command layer.
func (s *EconomyService) AddModerator(ctx context.Context, guildID, userID int64) error {
	if err := s.mods.Add(ctx, guildID, userID); err != nil {
		return storeErr("add moderator", err)
	}
	return nil
}

// RemoveModerator deletes a moderator from the guild.
func (s *EconomyService) RemoveModerator(ctx context.Context, guildID, userID int64) error {
	if err := s.mods.Remove(ctx, guildID, userID); err != nil {
		return storeErr("remove moderator", err)
	}
	return nil
}

// ListModerators returns the guild's moderator IDs.
func (s *EconomyService) ListModerators(ctx context.Context, guildID int64) ([]int64, error) {
	ids, err := s.mods.List(ctx, guildID)
	if err != nil {
		return nil, storeErr("list moderators", err)
	}
	return ids, nil
}
