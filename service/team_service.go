package service

import (
	"context"

	"arenabot/events"
	"arenabot/models"

	log "github.com/sirupsen/logrus"
)

// TeamService manages invite-assembled 5v5 rosters. A team is confirmed
// only while all five slots are filled; any vacancy reverts it to pending
// and it must refill before it can field a duel again.
type TeamService struct {
	teams   TeamStore
	invites TeamInviteStore
	duels   DuelStore
	bus     EventPublisher
	clock   Clock
}

// NewTeamService creates a new team service
func NewTeamService(teams TeamStore, invites TeamInviteStore, duels DuelStore, bus EventPublisher, clock Clock) *TeamService {
	return &TeamService{
		teams:   teams,
		invites: invites,
		duels:   duels,
		bus:     bus,
		clock:   clock,
	}
}

// CreateTeam creates a new team with the creator as leader in slot 1.
func (s *TeamService) CreateTeam(ctx context.Context, name string, leaderID, guildID int64, public bool) (*models.Team, error) {
	if name == "" {
		return nil, validationf("team name is required")
	}

	existing, err := s.teams.GetByMember(ctx, leaderID)
	if err != nil {
		return nil, storeErr("get team", err)
	}
	if existing != nil {
		return nil, validationf("you are already on team %q", existing.Name)
	}

	leader := leaderID
	team := &models.Team{
		Name:      name,
		LeaderID:  leaderID,
		Public:    public,
		Status:    models.TeamStatusPending,
		GuildID:   guildID,
		CreatedAt: s.clock.Now(),
	}
	team.Slots[0] = &leader

	if err := s.teams.Insert(ctx, team); err != nil {
		return nil, storeErr("insert team", err)
	}

	log.WithFields(log.Fields{
		"teamID":   team.ID,
		"name":     name,
		"leaderID": leaderID,
	}).Info("Team created")

	s.emitTeam(ctx, team, "", team.Status)
	return team, nil
}

// InviteMembers records pending invites for the given users. A stale
// declined or left invite for the same user is superseded in place so the
// user can be re-invited.
func (s *TeamService) InviteMembers(ctx context.Context, teamID, leaderID int64, userIDs []int64) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.LeaderID != leaderID {
		return validationf("only the team leader can invite members")
	}

	for _, userID := range userIDs {
		if userID == leaderID {
			return validationf("you cannot invite yourself")
		}
		if team.HasMember(userID) {
			return validationf("user is already on the team")
		}
	}

	now := s.clock.Now()
	for _, userID := range userIDs {
		invite, err := s.invites.Get(ctx, teamID, userID)
		if err != nil {
			return storeErr("get team invite", err)
		}
		if invite != nil {
			if invite.Status.Live() {
				continue
			}
			invite.Status = models.InviteStatusPending
			invite.CreatedAt = now
			if err := s.invites.Update(ctx, invite); err != nil {
				return storeErr("update team invite", err)
			}
			continue
		}
		if err := s.invites.Insert(ctx, &models.TeamInvite{
			TeamID:    teamID,
			UserID:    userID,
			Status:    models.InviteStatusPending,
			CreatedAt: now,
		}); err != nil {
			return storeErr("insert team invite", err)
		}
	}
	return nil
}

// AcceptInvite fills the first free slot with the invitee. Filling the
// last slot confirms the team.
func (s *TeamService) AcceptInvite(ctx context.Context, teamID, userID int64) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	invite, err := s.invites.Get(ctx, teamID, userID)
	if err != nil {
		return nil, storeErr("get team invite", err)
	}
	if invite == nil || invite.Status != models.InviteStatusPending {
		return nil, validationf("you have no pending invite for this team")
	}

	if err := s.checkJoinable(ctx, team, userID); err != nil {
		return nil, err
	}

	invite.Status = models.InviteStatusAccepted
	if err := s.invites.Update(ctx, invite); err != nil {
		return nil, storeErr("update team invite", err)
	}

	return s.fillSlot(ctx, team, userID)
}

// DeclineInvite marks the invite declined. The user may be re-invited
// later.
func (s *TeamService) DeclineInvite(ctx context.Context, teamID, userID int64) error {
	invite, err := s.invites.Get(ctx, teamID, userID)
	if err != nil {
		return storeErr("get team invite", err)
	}
	if invite == nil || invite.Status != models.InviteStatusPending {
		return validationf("you have no pending invite for this team")
	}

	invite.Status = models.InviteStatusDeclined
	if err := s.invites.Update(ctx, invite); err != nil {
		return storeErr("update team invite", err)
	}
	return nil
}

// JoinPublic lets any user take a free slot on a public team, no invite
// required. An accepted invite row is recorded so later vacancy accounting
// treats joiners and invitees alike.
func (s *TeamService) JoinPublic(ctx context.Context, teamID, userID int64) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.Public {
		return nil, validationf("this team is invite-only")
	}

	if err := s.checkJoinable(ctx, team, userID); err != nil {
		return nil, err
	}

	invite, err := s.invites.Get(ctx, teamID, userID)
	if err != nil {
		return nil, storeErr("get team invite", err)
	}
	if invite != nil {
		invite.Status = models.InviteStatusAccepted
		if err := s.invites.Update(ctx, invite); err != nil {
			return nil, storeErr("update team invite", err)
		}
	} else {
		if err := s.invites.Insert(ctx, &models.TeamInvite{
			TeamID:    teamID,
			UserID:    userID,
			Status:    models.InviteStatusAccepted,
			CreatedAt: s.clock.Now(),
		}); err != nil {
			return nil, storeErr("insert team invite", err)
		}
	}

	return s.fillSlot(ctx, team, userID)
}

// Leave vacates the member's slot, reverting a confirmed team to pending.
// The leader cannot leave; they disband instead.
func (s *TeamService) Leave(ctx context.Context, teamID, userID int64) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID == userID {
		return nil, validationf("the leader cannot leave; disband the team instead")
	}
	if !team.HasMember(userID) {
		return nil, validationf("you are not on this team")
	}
	if err := s.requireNoOpenDuel(ctx, team); err != nil {
		return nil, err
	}

	invite, err := s.invites.Get(ctx, teamID, userID)
	if err != nil {
		return nil, storeErr("get team invite", err)
	}
	if invite != nil {
		invite.Status = models.InviteStatusLeft
		if err := s.invites.Update(ctx, invite); err != nil {
			return nil, storeErr("update team invite", err)
		}
	}

	return s.vacateSlot(ctx, team, userID)
}

// Kick removes a member from the roster. Leader-only; the vacated team
// reverts to pending.
func (s *TeamService) Kick(ctx context.Context, teamID, leaderID, userID int64) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != leaderID {
		return nil, validationf("only the team leader can kick members")
	}
	if userID == leaderID {
		return nil, validationf("you cannot kick yourself")
	}
	if !team.HasMember(userID) {
		return nil, validationf("user is not on this team")
	}
	if err := s.requireNoOpenDuel(ctx, team); err != nil {
		return nil, err
	}

	invite, err := s.invites.Get(ctx, teamID, userID)
	if err != nil {
		return nil, storeErr("get team invite", err)
	}
	if invite != nil {
		invite.Status = models.InviteStatusLeft
		if err := s.invites.Update(ctx, invite); err != nil {
			return nil, storeErr("update team invite", err)
		}
	}

	return s.vacateSlot(ctx, team, userID)
}

// Disband deletes the team and every invite attached to it. Leader-only.
func (s *TeamService) Disband(ctx context.Context, teamID, leaderID int64) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.LeaderID != leaderID {
		return validationf("only the team leader can disband the team")
	}
	if err := s.requireNoOpenDuel(ctx, team); err != nil {
		return err
	}

	if err := s.invites.DeleteByTeam(ctx, teamID); err != nil {
		return storeErr("delete team invites", err)
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return storeErr("delete team", err)
	}

	log.WithFields(log.Fields{
		"teamID": teamID,
		"name":   team.Name,
	}).Info("Team disbanded")

	s.emitTeam(ctx, team, team.Status, "")
	return nil
}

// GetTeam retrieves a team by ID.
func (s *TeamService) GetTeam(ctx context.Context, teamID int64) (*models.Team, error) {
	return s.getTeam(ctx, teamID)
}

// GetTeamByMember returns the team the user is on, or nil.
func (s *TeamService) GetTeamByMember(ctx context.Context, userID int64) (*models.Team, error) {
	team, err := s.teams.GetByMember(ctx, userID)
	if err != nil {
		return nil, storeErr("get team", err)
	}
	return team, nil
}

func (s *TeamService) getTeam(ctx context.Context, teamID int64) (*models.Team, error) {
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return nil, storeErr("get team", err)
	}
	if team == nil {
		return nil, validationf("team not found")
	}
	return team, nil
}

func (s *TeamService) checkJoinable(ctx context.Context, team *models.Team, userID int64) error {
	if team.HasMember(userID) {
		return validationf("you are already on this team")
	}
	if team.IsFull() {
		return conflictf("team is already full")
	}
	other, err := s.teams.GetByMember(ctx, userID)
	if err != nil {
		return storeErr("get team", err)
	}
	if other != nil {
		return validationf("you are already on team %q", other.Name)
	}
	return nil
}

func (s *TeamService) fillSlot(ctx context.Context, team *models.Team, userID int64) (*models.Team, error) {
	slot := team.FirstFreeSlot()
	if slot < 0 {
		return nil, conflictf("team is already full")
	}
	member := userID
	team.Slots[slot] = &member

	prev := team.Status
	if team.IsFull() {
		team.Status = models.TeamStatusConfirmed
	}

	if err := s.teams.Update(ctx, team); err != nil {
		return nil, storeErr("update team", err)
	}

	if team.Status != prev {
		log.WithFields(log.Fields{
			"teamID": team.ID,
			"name":   team.Name,
		}).Info("Team confirmed")
	}

	s.emitTeam(ctx, team, prev, team.Status)
	return team, nil
}

func (s *TeamService) vacateSlot(ctx context.Context, team *models.Team, userID int64) (*models.Team, error) {
	if !team.RemoveMember(userID) {
		return nil, validationf("user is not on this team")
	}

	prev := team.Status
	team.Status = models.TeamStatusPending

	if err := s.teams.Update(ctx, team); err != nil {
		return nil, storeErr("update team", err)
	}

	s.emitTeam(ctx, team, prev, team.Status)
	return team, nil
}

// requireNoOpenDuel blocks roster changes while the team has a duel on
// offer; the fielded roster must stay what opponents saw.
func (s *TeamService) requireNoOpenDuel(ctx context.Context, team *models.Team) error {
	duel, err := s.duels.FindOpenByTeam(ctx, team.ID)
	if err != nil {
		return storeErr("find open team duel", err)
	}
	if duel != nil {
		return validationf("team has an open duel #%d; cancel it first", duel.ID)
	}
	return nil
}

func (s *TeamService) emitTeam(ctx context.Context, team *models.Team, from, to models.TeamStatus) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(ctx, events.TeamStateChangeEvent{
		TeamID:    team.ID,
		Name:      team.Name,
		OldStatus: from,
		NewStatus: to,
	})
}
