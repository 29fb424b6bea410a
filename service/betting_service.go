package service

import (
	"context"
	"math"

	"arenabot/events"
	"arenabot/models"

	log "github.com/sirupsen/logrus"
)

// BettingService runs moderator-operated parimutuel pools. Spectators back
// one of two named sides; at settlement the losing side's pool, minus the
// burn, is split among the winning side's backers in proportion to their
// stakes. Bets are immutable once recorded.
type BettingService struct {
	matches         MatchStore
	bets            BetStore
	ledger          *Ledger
	mods            ModeratorStore
	bus             EventPublisher
	clock           Clock
	defaultBurnRate float64
}

// NewBettingService creates a new betting service
func NewBettingService(matches MatchStore, bets BetStore, ledger *Ledger, mods ModeratorStore, bus EventPublisher, clock Clock, defaultBurnRate float64) *BettingService {
	return &BettingService{
		matches:         matches,
		bets:            bets,
		ledger:          ledger,
		mods:            mods,
		bus:             bus,
		clock:           clock,
		defaultBurnRate: defaultBurnRate,
	}
}

// CreateMatchParams describes a betting pool to open. A zero BurnRate
// takes the configured default.
type CreateMatchParams struct {
	SideAName string
	SideBName string
	BurnRate  float64
	GuildID   int64
	ChannelID int64
}

// BetPayout records one winning backer's settlement: the returned stake
// plus their share of the distributed losing pool.
type BetPayout struct {
	UserID   int64
	Stake    int64
	Winnings int64
}

// MatchSettlement describes the outcome of a settled betting pool.
type MatchSettlement struct {
	Match       *models.Match
	Winner      models.Side
	Distributed int64
	Burned      int64
	Payouts     []BetPayout
}

// CreateMatch opens a new betting pool. Moderator-only.
func (s *BettingService) CreateMatch(ctx context.Context, moderatorID int64, params CreateMatchParams) (*models.Match, error) {
	if err := s.requireModerator(ctx, params.GuildID, moderatorID); err != nil {
		return nil, err
	}
	if params.SideAName == "" || params.SideBName == "" {
		return nil, validationf("both side names are required")
	}
	if params.BurnRate < 0 || params.BurnRate > 0.9 {
		return nil, validationf("burn rate must be between 0 and 0.9")
	}

	burnRate := params.BurnRate
	if burnRate == 0 {
		burnRate = s.defaultBurnRate
	}

	match := &models.Match{
		SideAName: params.SideAName,
		SideBName: params.SideBName,
		BurnRate:  burnRate,
		Status:    models.MatchStatusOpen,
		GuildID:   params.GuildID,
		ChannelID: params.ChannelID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.matches.Insert(ctx, match); err != nil {
		return nil, storeErr("insert match", err)
	}

	log.WithFields(log.Fields{
		"matchID": match.ID,
		"sideA":   match.SideAName,
		"sideB":   match.SideBName,
	}).Info("Betting pool opened")

	s.emitMatch(ctx, match, "", match.Status)
	return match, nil
}

// PlaceBet debits the backer and records the bet. The debit, the bet
// insert and the running-total update run under the ledger's exclusion
// token as one unit, so the match totals always equal the sum of recorded
// bets.
func (s *BettingService) PlaceBet(ctx context.Context, matchID, userID int64, side models.Side, amount int64) (*models.Bet, error) {
	if !side.Valid() {
		return nil, validationf("side must be A or B")
	}
	if amount <= 0 {
		return nil, validationf("bet amount must be positive")
	}

	var bet *models.Bet
	err := s.ledger.Exclusive(ctx, func(f *Funds) error {
		// Re-read under the token; totals written by concurrent bets must
		// be visible before this one adds to them.
		match, err := s.matches.Get(ctx, matchID)
		if err != nil {
			return storeErr("get match", err)
		}
		if match == nil {
			return validationf("betting pool not found")
		}
		if !match.AcceptsBets() {
			return conflictf("betting is closed on this pool")
		}

		if _, err := f.Debit(ctx, userID, amount); err != nil {
			return err
		}

		bet = &models.Bet{
			MatchID:   matchID,
			UserID:    userID,
			Side:      side,
			Amount:    amount,
			CreatedAt: s.clock.Now(),
		}
		if err := s.bets.Insert(ctx, bet); err != nil {
			s.refund(ctx, f, userID, amount, "bet insert failed")
			return storeErr("insert bet", err)
		}

		if side == models.SideA {
			match.TotalA += amount
		} else {
			match.TotalB += amount
		}
		if err := s.matches.UpdateWhereStatus(ctx, match, models.MatchStatusOpen); err != nil {
			s.refund(ctx, f, userID, amount, "pool closed during bet")
			if err == ErrStatusChanged {
				return conflictf("betting closed while your bet was processing")
			}
			return storeErr("update match totals", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Emit(ctx, events.BetPlacedEvent{
			MatchID: matchID,
			BetID:   bet.ID,
			UserID:  userID,
			Side:    side,
			Amount:  amount,
		})
	}
	return bet, nil
}

// CloseMatch stops further betting. Moderator-only.
func (s *BettingService) CloseMatch(ctx context.Context, matchID, moderatorID, guildID int64) (*models.Match, error) {
	if err := s.requireModerator(ctx, guildID, moderatorID); err != nil {
		return nil, err
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusOpen {
		return nil, validationf("betting pool is not open")
	}

	match.Status = models.MatchStatusClosed
	if err := s.matches.UpdateWhereStatus(ctx, match, models.MatchStatusOpen); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("betting pool changed state, try again")
		}
		return nil, storeErr("close match", err)
	}

	s.emitMatch(ctx, match, models.MatchStatusOpen, match.Status)
	return match, nil
}

// CancelMatch voids the pool and refunds every recorded bet. The pool
// first moves to cancelling, which stops new bets; refunds then run
// per-bet, so a crash mid-way leaves a resumable cancelling pool rather
// than silently kept stakes.
func (s *BettingService) CancelMatch(ctx context.Context, matchID, moderatorID, guildID int64) (*models.Match, error) {
	if err := s.requireModerator(ctx, guildID, moderatorID); err != nil {
		return nil, err
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	prev := match.Status
	switch prev {
	case models.MatchStatusOpen, models.MatchStatusClosed:
		match.Status = models.MatchStatusCancelling
		if err := s.matches.UpdateWhereStatus(ctx, match, prev); err != nil {
			if err == ErrStatusChanged {
				return nil, conflictf("betting pool changed state, try again")
			}
			return nil, storeErr("cancel match", err)
		}
	case models.MatchStatusCancelling:
		// Resuming an interrupted cancellation.
	default:
		return nil, validationf("betting pool is already finished")
	}

	allBets, err := s.bets.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, storeErr("list bets", err)
	}
	for _, bet := range allBets {
		if _, err := s.ledger.AddBalance(ctx, bet.UserID, bet.Amount); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"matchID": matchID,
				"betID":   bet.ID,
				"userID":  bet.UserID,
			}).Error("Bet refund failed, pool left in cancelling")
			return nil, err
		}
	}

	match.Status = models.MatchStatusCancelled
	if err := s.matches.UpdateWhereStatus(ctx, match, models.MatchStatusCancelling); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("betting pool changed state, try again")
		}
		return nil, storeErr("finish match cancellation", err)
	}

	log.WithFields(log.Fields{
		"matchID":  matchID,
		"refunded": len(allBets),
	}).Info("Betting pool cancelled")

	s.emitMatch(ctx, match, prev, match.Status)
	return match, nil
}

// SettleMatch resolves the pool: winning backers get their stakes back
// plus a proportional share of the losing pool after the burn. Closing
// first is optional; an open pool settles directly. The status flips to
// settled before any payout, so a crash mid-payout can never lead to a
// second settlement run.
func (s *BettingService) SettleMatch(ctx context.Context, matchID, moderatorID, guildID int64, winner models.Side) (*MatchSettlement, error) {
	if !winner.Valid() {
		return nil, validationf("winner must be side A or B")
	}
	if err := s.requireModerator(ctx, guildID, moderatorID); err != nil {
		return nil, err
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	prev := match.Status
	if prev != models.MatchStatusOpen && prev != models.MatchStatusClosed {
		return nil, validationf("betting pool is already finished")
	}

	winning, err := s.bets.ListByMatchSide(ctx, matchID, winner)
	if err != nil {
		return nil, storeErr("list winning bets", err)
	}

	losingTotal := match.Total(winner.Other())
	winningTotal := match.Total(winner)

	var distribute, burned int64
	if winningTotal == 0 {
		// Nobody backed the winner; the whole losing pool burns.
		distribute = 0
		burned = losingTotal
	} else {
		distribute = int64(math.Round(float64(losingTotal) * (1 - match.BurnRate)))
		burned = losingTotal - distribute
	}

	match.Status = models.MatchStatusSettled
	if err := s.matches.UpdateWhereStatus(ctx, match, prev); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("betting pool was already settled")
		}
		return nil, storeErr("settle match", err)
	}

	stakes := make([]int64, len(winning))
	for i, bet := range winning {
		stakes[i] = bet.Amount
	}
	shares := Apportion(stakes, distribute)

	payouts := make([]BetPayout, 0, len(winning))
	for i, bet := range winning {
		payout := bet.Amount + shares[i]
		if _, err := s.ledger.AddBalance(ctx, bet.UserID, payout); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"matchID": matchID,
				"betID":   bet.ID,
				"userID":  bet.UserID,
				"payout":  payout,
			}).Error("Bet payout failed")
			continue
		}
		payouts = append(payouts, BetPayout{UserID: bet.UserID, Stake: bet.Amount, Winnings: shares[i]})
	}

	log.WithFields(log.Fields{
		"matchID":     matchID,
		"winner":      winner,
		"distributed": distribute,
		"burned":      burned,
		"winners":     len(payouts),
	}).Info("Betting pool settled")

	s.emitMatch(ctx, match, prev, match.Status)
	return &MatchSettlement{
		Match:       match,
		Winner:      winner,
		Distributed: distribute,
		Burned:      burned,
		Payouts:     payouts,
	}, nil
}

// GetMatch retrieves a betting pool by ID.
func (s *BettingService) GetMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	return s.getMatch(ctx, matchID)
}

func (s *BettingService) getMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	match, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, storeErr("get match", err)
	}
	if match == nil {
		return nil, validationf("betting pool not found")
	}
	return match, nil
}

func (s *BettingService) refund(ctx context.Context, f *Funds, userID, amount int64, reason string) {
	if _, err := f.AddBalance(ctx, userID, amount); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userID": userID,
			"amount": amount,
			"reason": reason,
		}).Error("Refund failed")
	}
}

func (s *BettingService) requireModerator(ctx context.Context, guildID, userID int64) error {
	ok, err := s.mods.IsModerator(ctx, guildID, userID)
	if err != nil {
		return storeErr("check moderator", err)
	}
	if !ok {
		return validationf("moderator only")
	}
	return nil
}

func (s *BettingService) emitMatch(ctx context.Context, match *models.Match, from, to models.MatchStatus) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(ctx, events.MatchStateChangeEvent{
		MatchID:   match.ID,
		OldStatus: from,
		NewStatus: to,
		ChannelID: match.ChannelID,
	})
}
