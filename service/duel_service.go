package service

import (
	"context"

	"arenabot/events"
	"arenabot/models"

	log "github.com/sirupsen/logrus"
)

// DuelConfig carries the tunable duel rules.
type DuelConfig struct {
	MinStake int64
	MaxStake int64
	BurnRate float64
}

// DuelService drives the duel state machine: creation, invitation, public
// joining, cancellation, result submission, moderator settlement and
// auto-expiry. Stakes are escrowed through the ledger at commitment time
// and released at settlement or refund.
type DuelService struct {
	duels     DuelStore
	invites   DuelInviteStore
	teams     TeamStore
	ledger    *Ledger
	gate      *EligibilityGate
	mods      ModeratorStore
	bus       EventPublisher
	clock     Clock
	scheduler *ExpiryScheduler
	cfg       DuelConfig
}

// NewDuelService creates a new duel service
func NewDuelService(duels DuelStore, invites DuelInviteStore, teams TeamStore, ledger *Ledger, gate *EligibilityGate, mods ModeratorStore, bus EventPublisher, clock Clock, cfg DuelConfig) *DuelService {
	return &DuelService{
		duels:   duels,
		invites: invites,
		teams:   teams,
		ledger:  ledger,
		gate:    gate,
		mods:    mods,
		bus:     bus,
		clock:   clock,
		cfg:     cfg,
	}
}

// AttachScheduler wires the expiry scheduler. Done after construction
// because the scheduler's callback points back at this service.
func (s *DuelService) AttachScheduler(scheduler *ExpiryScheduler) {
	s.scheduler = scheduler
}

// CreateDuelParams describes a duel creation request. A nil OpponentID
// makes the duel public; for 5v5 the opponent is the opposing team's
// leader.
type CreateDuelParams struct {
	CreatorID  int64
	Kind       models.DuelKind
	Stake      int64
	OpponentID *int64
	GuildID    int64
	ChannelID  int64
}

// DuelSettlement describes the outcome of a settled duel.
type DuelSettlement struct {
	Duel     *models.Duel
	WinnerID int64
	Payout   int64
	Burned   int64
}

// CreateDuel creates a new duel with the creator's stake escrowed
// immediately. Private duels record a pending invite for the named
// opponent; public duels are armed with an auto-refund timer.
func (s *DuelService) CreateDuel(ctx context.Context, params CreateDuelParams) (*models.Duel, error) {
	if params.Kind != models.DuelKind1v1 && params.Kind != models.DuelKind5v5 {
		return nil, validationf("duel type must be 1v1 or 5v5")
	}
	if params.Stake < s.cfg.MinStake || params.Stake > s.cfg.MaxStake {
		return nil, validationf("stake must be between %d and %d points", s.cfg.MinStake, s.cfg.MaxStake)
	}
	if params.OpponentID != nil && *params.OpponentID == params.CreatorID {
		return nil, validationf("you cannot duel yourself")
	}

	if openID, err := s.gate.OpenDuel(ctx, params.CreatorID); err != nil {
		return nil, err
	} else if openID != 0 {
		return nil, validationf("you already have an open duel #%d", openID)
	}

	clear, err := s.gate.CheckCooldown(ctx, params.CreatorID)
	if err != nil {
		return nil, err
	}
	if !clear {
		return nil, validationf("you already dueled today")
	}

	duel := &models.Duel{
		Kind:      params.Kind,
		Public:    params.OpponentID == nil,
		CreatorID: params.CreatorID,
		Stake:     params.Stake,
		GuildID:   params.GuildID,
		ChannelID: params.ChannelID,
		CreatedAt: s.clock.Now(),
	}
	if duel.Public {
		duel.Status = models.DuelStatusPublic
	} else {
		duel.Status = models.DuelStatusWaiting
	}

	var inviteTarget int64
	switch params.Kind {
	case models.DuelKind1v1:
		creatorID := params.CreatorID
		duel.PlayerA = &creatorID
		if params.OpponentID != nil {
			if err := s.checkOpponent(ctx, *params.OpponentID, params.Stake); err != nil {
				return nil, err
			}
			duel.PlayerB = params.OpponentID
			inviteTarget = *params.OpponentID
		}
	case models.DuelKind5v5:
		team, err := s.leaderTeam(ctx, params.CreatorID)
		if err != nil {
			return nil, err
		}
		teamID := team.ID
		duel.TeamA = &teamID
		if params.OpponentID != nil {
			oppTeam, err := s.leaderTeam(ctx, *params.OpponentID)
			if err != nil {
				return nil, validationf("opponent must lead a full, confirmed team")
			}
			if oppTeam.ID == team.ID {
				return nil, validationf("you cannot duel your own team")
			}
			if err := s.checkOpponent(ctx, *params.OpponentID, params.Stake); err != nil {
				return nil, err
			}
			oppTeamID := oppTeam.ID
			duel.TeamB = &oppTeamID
			inviteTarget = *params.OpponentID
		}
	}

	// Escrow the creator's stake before the duel becomes visible.
	if _, err := s.ledger.Debit(ctx, params.CreatorID, params.Stake); err != nil {
		return nil, err
	}

	if err := s.duels.Insert(ctx, duel); err != nil {
		s.refund(ctx, params.CreatorID, params.Stake, "duel insert failed")
		return nil, storeErr("insert duel", err)
	}

	if inviteTarget != 0 {
		invite := &models.DuelInvite{
			DuelID:    duel.ID,
			UserID:    inviteTarget,
			Status:    models.InviteStatusPending,
			CreatedAt: s.clock.Now(),
		}
		if err := s.invites.Insert(ctx, invite); err != nil {
			s.refund(ctx, params.CreatorID, params.Stake, "duel invite insert failed")
			duel.Status = models.DuelStatusCancelled
			if uerr := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusWaiting); uerr != nil {
				log.WithError(uerr).WithField("duelID", duel.ID).Error("Failed to void duel after invite failure")
			}
			return nil, storeErr("insert duel invite", err)
		}
	}

	if duel.Public && s.scheduler != nil {
		s.scheduler.Schedule(duel.ID)
	}

	s.emitDuel(ctx, duel, "", duel.Status)
	return duel, nil
}

// AcceptInvite commits the invited side: stake escrowed, cooldown started
// for both representatives, duel activated.
func (s *DuelService) AcceptInvite(ctx context.Context, duelID, userID int64) (*models.Duel, error) {
	duel, _, err := s.pendingInvite(ctx, duelID, userID)
	if err != nil {
		return nil, err
	}
	if duel.Status != models.DuelStatusWaiting {
		return nil, conflictf("duel is no longer open")
	}

	clear, err := s.gate.CheckCooldown(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !clear {
		return nil, validationf("you already dueled today")
	}

	if _, err := s.ledger.Debit(ctx, userID, duel.Stake); err != nil {
		return nil, err
	}

	duel.Status = models.DuelStatusActive
	if err := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusWaiting); err != nil {
		s.refund(ctx, userID, duel.Stake, "invite accept lost race")
		if err == ErrStatusChanged {
			return nil, conflictf("duel already filled")
		}
		return nil, storeErr("activate duel", err)
	}

	if err := s.invites.SetStatus(ctx, duelID, userID, models.InviteStatusAccepted); err != nil {
		log.WithError(err).WithField("duelID", duelID).Error("Failed to mark duel invite accepted")
	}

	s.startCooldowns(ctx, duel)
	s.emitDuel(ctx, duel, models.DuelStatusWaiting, duel.Status)
	return duel, nil
}

// DeclineInvite cancels a private duel and refunds the creator's escrow.
func (s *DuelService) DeclineInvite(ctx context.Context, duelID, userID int64) (*models.Duel, error) {
	duel, _, err := s.pendingInvite(ctx, duelID, userID)
	if err != nil {
		return nil, err
	}
	if duel.Status != models.DuelStatusWaiting {
		return nil, conflictf("duel is no longer open")
	}

	duel.Status = models.DuelStatusCancelled
	if err := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusWaiting); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("duel is no longer open")
		}
		return nil, storeErr("cancel duel", err)
	}

	if err := s.invites.SetStatus(ctx, duelID, userID, models.InviteStatusDeclined); err != nil {
		log.WithError(err).WithField("duelID", duelID).Error("Failed to mark duel invite declined")
	}

	s.refund(ctx, duel.CreatorID, duel.Stake, "invite declined")
	s.emitDuel(ctx, duel, models.DuelStatusWaiting, duel.Status)
	return duel, nil
}

// JoinPublic fills the open side of a public duel. The status flip is the
// linearization point: of several concurrent joiners exactly one update
// succeeds and the rest observe a conflict.
func (s *DuelService) JoinPublic(ctx context.Context, duelID, userID int64) (*models.Duel, error) {
	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.Status != models.DuelStatusPublic {
		return nil, conflictf("duel is not open for joining")
	}

	var joinTeamID *int64
	switch duel.Kind {
	case models.DuelKind1v1:
		if duel.PlayerA != nil && *duel.PlayerA == userID {
			return nil, validationf("you are already in this duel")
		}
	case models.DuelKind5v5:
		team, err := s.leaderTeam(ctx, userID)
		if err != nil {
			return nil, err
		}
		if duel.TeamA != nil && *duel.TeamA == team.ID {
			return nil, validationf("you cannot join your own duel")
		}
		teamID := team.ID
		joinTeamID = &teamID
	}

	clear, err := s.gate.CheckCooldown(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !clear {
		return nil, validationf("you already dueled today")
	}

	if _, err := s.ledger.Debit(ctx, userID, duel.Stake); err != nil {
		return nil, err
	}

	if duel.Kind == models.DuelKind1v1 {
		joinerID := userID
		duel.PlayerB = &joinerID
	} else {
		duel.TeamB = joinTeamID
	}
	duel.Status = models.DuelStatusActive

	if err := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusPublic); err != nil {
		s.refund(ctx, userID, duel.Stake, "public join lost race")
		if err == ErrStatusChanged {
			return nil, conflictf("duel already filled")
		}
		return nil, storeErr("activate duel", err)
	}

	s.startCooldowns(ctx, duel)
	s.emitDuel(ctx, duel, models.DuelStatusPublic, duel.Status)
	return duel, nil
}

// CancelDuel lets the creator withdraw an unfilled duel and reclaim the
// escrowed stake.
func (s *DuelService) CancelDuel(ctx context.Context, duelID, userID int64) (*models.Duel, error) {
	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.CreatorID != userID {
		return nil, validationf("you can only cancel your own duel")
	}
	if !duel.IsOpen() {
		return nil, validationf("duel can no longer be cancelled")
	}

	prev := duel.Status
	duel.Status = models.DuelStatusCancelled
	if err := s.duels.UpdateWhereStatus(ctx, duel, prev); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("duel already filled")
		}
		return nil, storeErr("cancel duel", err)
	}

	if s.scheduler != nil {
		s.scheduler.Cancel(duelID)
	}
	s.refund(ctx, duel.CreatorID, duel.Stake, "creator cancelled")
	s.emitDuel(ctx, duel, prev, duel.Status)
	return duel, nil
}

// SubmitResult moves an active duel to result_pending, awaiting moderator
// adjudication. Any participant of either side may report.
func (s *DuelService) SubmitResult(ctx context.Context, duelID, userID int64) (*models.Duel, error) {
	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.Status != models.DuelStatusActive {
		return nil, validationf("duel is not in progress")
	}

	participant, err := s.isParticipant(ctx, duel, userID)
	if err != nil {
		return nil, err
	}
	if !participant {
		return nil, validationf("only duel participants can report a result")
	}

	duel.Status = models.DuelStatusResultPending
	if err := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusActive); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("result already reported")
		}
		return nil, storeErr("submit result", err)
	}

	s.emitDuel(ctx, duel, models.DuelStatusActive, duel.Status)
	return duel, nil
}

// SettleDuel pays the winning side's representative the pot minus burn.
// Moderator-only. The status write is verified with an immediate re-read;
// a mismatch aborts without payout and is never retried.
func (s *DuelService) SettleDuel(ctx context.Context, duelID, moderatorID, guildID int64, winner models.Side) (*DuelSettlement, error) {
	if !winner.Valid() {
		return nil, validationf("winner must be side A or B")
	}
	if err := s.requireModerator(ctx, guildID, moderatorID); err != nil {
		return nil, err
	}

	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if !duel.CanSettle() {
		return nil, validationf("duel is not awaiting settlement")
	}

	winnerID, err := s.representative(ctx, duel, winner)
	if err != nil {
		return nil, err
	}

	totalPot := duel.Stake * 2
	burned := int64(float64(totalPot) * s.cfg.BurnRate)
	payout := totalPot - burned

	prev := duel.Status
	now := s.clock.Now()
	duel.Status = models.DuelStatusSettled
	duel.WinnerSide = &winner
	duel.SettledAt = &now
	if err := s.duels.UpdateWhereStatus(ctx, duel, prev); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("duel was already settled")
		}
		return nil, storeErr("settle duel", err)
	}

	// The store is non-transactional; verify the write landed before any
	// points move. A mismatch means a lost update and paying on top of it
	// could double-pay.
	check, err := s.duels.Get(ctx, duelID)
	if err != nil {
		return nil, storeErr("verify settlement", err)
	}
	if check == nil || check.Status != models.DuelStatusSettled || check.WinnerSide == nil || *check.WinnerSide != winner {
		log.WithFields(log.Fields{
			"duelID": duelID,
			"winner": winner,
		}).Error("Settlement verification mismatch, payout withheld")
		return nil, invariantf("settlement write did not take effect for duel #%d", duelID)
	}

	if _, err := s.ledger.AddBalance(ctx, winnerID, payout); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"duelID":   duelID,
			"winnerID": winnerID,
			"payout":   payout,
		}).Error("Failed to credit duel payout")
		return nil, err
	}

	log.WithFields(log.Fields{
		"duelID":   duelID,
		"winner":   winner,
		"winnerID": winnerID,
		"totalPot": totalPot,
		"burned":   burned,
		"payout":   payout,
	}).Info("Duel settled")

	s.emitDuel(ctx, duel, prev, duel.Status)
	return &DuelSettlement{Duel: duel, WinnerID: winnerID, Payout: payout, Burned: burned}, nil
}

// CancelResult voids a submitted result. Terminal: no payout, no refund,
// no further action on the duel.
func (s *DuelService) CancelResult(ctx context.Context, duelID, moderatorID, guildID int64) (*models.Duel, error) {
	if err := s.requireModerator(ctx, guildID, moderatorID); err != nil {
		return nil, err
	}

	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.Status != models.DuelStatusResultPending {
		return nil, validationf("duel has no pending result")
	}

	duel.Status = models.DuelStatusResultVoided
	if err := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusResultPending); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("duel was already settled")
		}
		return nil, storeErr("cancel result", err)
	}

	s.emitDuel(ctx, duel, models.DuelStatusResultPending, duel.Status)
	return duel, nil
}

// CancelByModerator aborts a duel in any non-terminal state, refunding the
// escrowed stake to every side that committed one.
func (s *DuelService) CancelByModerator(ctx context.Context, duelID, moderatorID, guildID int64) (*models.Duel, error) {
	if err := s.requireModerator(ctx, guildID, moderatorID); err != nil {
		return nil, err
	}

	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.IsTerminal() {
		return nil, validationf("duel is already finished")
	}

	prev := duel.Status
	duel.Status = models.DuelStatusCancelled
	if err := s.duels.UpdateWhereStatus(ctx, duel, prev); err != nil {
		if err == ErrStatusChanged {
			return nil, conflictf("duel changed state, try again")
		}
		return nil, storeErr("cancel duel", err)
	}

	if s.scheduler != nil {
		s.scheduler.Cancel(duelID)
	}

	repA, err := s.representative(ctx, duel, models.SideA)
	if err == nil {
		s.refund(ctx, repA, duel.Stake, "moderator cancelled")
	}
	// Side B is named at offer time for private duels but escrows nothing
	// until the duel leaves waiting/public; refunding an uncommitted offer
	// would mint points.
	committed := prev != models.DuelStatusWaiting && prev != models.DuelStatusPublic
	if committed && duel.SideFilled(models.SideB) {
		repB, err := s.representative(ctx, duel, models.SideB)
		if err == nil {
			s.refund(ctx, repB, duel.Stake, "moderator cancelled")
		}
	}

	s.emitDuel(ctx, duel, prev, duel.Status)
	return duel, nil
}

// ExpireDuel is the auto-refund callback. It re-checks status at fire
// time: a duel that progressed past public is left alone.
func (s *DuelService) ExpireDuel(ctx context.Context, duelID int64) {
	duel, err := s.duels.Get(ctx, duelID)
	if err != nil {
		log.WithError(err).WithField("duelID", duelID).Error("Expiry check failed")
		return
	}
	if duel == nil || duel.Status != models.DuelStatusPublic {
		log.WithField("duelID", duelID).Debug("Expiry skipped, duel already progressed")
		return
	}

	duel.Status = models.DuelStatusCancelled
	if err := s.duels.UpdateWhereStatus(ctx, duel, models.DuelStatusPublic); err != nil {
		// Lost to a concurrent join or cancel; nothing to do.
		if err != ErrStatusChanged {
			log.WithError(err).WithField("duelID", duelID).Error("Expiry cancel failed")
		}
		return
	}

	// Refund only; the creator's cooldown was never consumed by an
	// unfilled offer.
	s.refund(ctx, duel.CreatorID, duel.Stake, "public duel expired")
	log.WithFields(log.Fields{
		"duelID": duelID,
		"stake":  duel.Stake,
	}).Info("Public duel expired and refunded")

	if s.bus != nil {
		s.bus.Emit(ctx, events.DuelStateChangeEvent{
			DuelID:    duel.ID,
			OldStatus: models.DuelStatusPublic,
			NewStatus: duel.Status,
			ChannelID: duel.ChannelID,
			Expired:   true,
		})
	}
}

// GetDuel retrieves a duel by ID.
func (s *DuelService) GetDuel(ctx context.Context, duelID int64) (*models.Duel, error) {
	return s.getDuel(ctx, duelID)
}

func (s *DuelService) getDuel(ctx context.Context, duelID int64) (*models.Duel, error) {
	duel, err := s.duels.Get(ctx, duelID)
	if err != nil {
		return nil, storeErr("get duel", err)
	}
	if duel == nil {
		return nil, validationf("duel not found")
	}
	return duel, nil
}

func (s *DuelService) pendingInvite(ctx context.Context, duelID, userID int64) (*models.Duel, *models.DuelInvite, error) {
	duel, err := s.getDuel(ctx, duelID)
	if err != nil {
		return nil, nil, err
	}
	invite, err := s.invites.Get(ctx, duelID, userID)
	if err != nil {
		return nil, nil, storeErr("get duel invite", err)
	}
	if invite == nil || invite.Status != models.InviteStatusPending {
		return nil, nil, validationf("you have no pending invite for this duel")
	}
	return duel, invite, nil
}

// checkOpponent validates a named opponent at offer time: no open duel,
// cooldown clear, balance covers the stake.
func (s *DuelService) checkOpponent(ctx context.Context, opponentID, stake int64) error {
	if openID, err := s.gate.OpenDuel(ctx, opponentID); err != nil {
		return err
	} else if openID != 0 {
		return validationf("opponent already has an open duel #%d", openID)
	}

	clear, err := s.gate.CheckCooldown(ctx, opponentID)
	if err != nil {
		return err
	}
	if !clear {
		return validationf("opponent already dueled today")
	}

	balance, err := s.ledger.GetBalance(ctx, opponentID)
	if err != nil {
		return err
	}
	if balance < stake {
		return validationf("opponent has insufficient points: %d", balance)
	}
	return nil
}

// leaderTeam returns the full, confirmed team the user leads.
func (s *DuelService) leaderTeam(ctx context.Context, userID int64) (*models.Team, error) {
	team, err := s.teams.GetByMember(ctx, userID)
	if err != nil {
		return nil, storeErr("get team", err)
	}
	if team == nil || team.LeaderID != userID {
		return nil, validationf("you must lead a team to field a 5v5 duel")
	}
	if !team.EligibleForDuel() {
		return nil, validationf("your team must be full and confirmed")
	}
	return team, nil
}

// representative resolves the player who carries a side's stake: the
// player for 1v1, the team leader for 5v5.
func (s *DuelService) representative(ctx context.Context, duel *models.Duel, side models.Side) (int64, error) {
	if duel.Kind == models.DuelKind1v1 {
		p := duel.PlayerA
		if side == models.SideB {
			p = duel.PlayerB
		}
		if p == nil {
			return 0, validationf("side %s is not filled", side)
		}
		return *p, nil
	}

	t := duel.TeamA
	if side == models.SideB {
		t = duel.TeamB
	}
	if t == nil {
		return 0, validationf("side %s is not filled", side)
	}
	team, err := s.teams.Get(ctx, *t)
	if err != nil {
		return 0, storeErr("get team", err)
	}
	if team == nil {
		return 0, validationf("team for side %s no longer exists", side)
	}
	return team.LeaderID, nil
}

func (s *DuelService) isParticipant(ctx context.Context, duel *models.Duel, userID int64) (bool, error) {
	if duel.Kind == models.DuelKind1v1 {
		return duel.IsParticipant(userID), nil
	}
	for _, teamID := range []*int64{duel.TeamA, duel.TeamB} {
		if teamID == nil {
			continue
		}
		team, err := s.teams.Get(ctx, *teamID)
		if err != nil {
			return false, storeErr("get team", err)
		}
		if team != nil && team.HasMember(userID) {
			return true, nil
		}
	}
	return false, nil
}

// startCooldowns marks both representatives as committed. Failures are
// logged, not surfaced: the duel is already active and cooldown is a
// fairness rule, not a financial one.
func (s *DuelService) startCooldowns(ctx context.Context, duel *models.Duel) {
	for _, side := range []models.Side{models.SideA, models.SideB} {
		rep, err := s.representative(ctx, duel, side)
		if err != nil {
			log.WithError(err).WithField("duelID", duel.ID).Error("Failed to resolve representative for cooldown")
			continue
		}
		if err := s.gate.StartCooldown(ctx, rep); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"duelID": duel.ID,
				"userID": rep,
			}).Error("Failed to start cooldown")
		}
	}
}

// refund is best-effort: a failed refund is logged loudly but cannot be
// rolled into the caller's error path without risking double handling.
func (s *DuelService) refund(ctx context.Context, userID, amount int64, reason string) {
	if _, err := s.ledger.AddBalance(ctx, userID, amount); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userID": userID,
			"amount": amount,
			"reason": reason,
		}).Error("Refund failed")
	}
}

func (s *DuelService) requireModerator(ctx context.Context, guildID, userID int64) error {
	ok, err := s.mods.IsModerator(ctx, guildID, userID)
	if err != nil {
		return storeErr("check moderator", err)
	}
	if !ok {
		return validationf("moderator only")
	}
	return nil
}

func (s *DuelService) emitDuel(ctx context.Context, duel *models.Duel, from, to models.DuelStatus) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(ctx, events.DuelStateChangeEvent{
		DuelID:    duel.ID,
		OldStatus: from,
		NewStatus: to,
		ChannelID: duel.ChannelID,
	})
}
