package bot

import (
	"context"
	"fmt"

	"arenabot/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleTeamCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)
	userID := interactionUserID(i)
	guildID := interactionGuildID(i)

	switch sub.Name {
	case "create":
		public := false
		if opt, ok := opts["public"]; ok {
			public = opt.BoolValue()
		}
		team, err := b.teamService.CreateTeam(ctx, opts["name"].StringValue(), userID, guildID, public)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Team %q created (#%d) with %s as leader. Invite four more players to confirm it.",
			team.Name, team.ID, mention(userID)))

	case "invite":
		target := optionUserID(s, opts["user"])
		if err := b.teamService.InviteMembers(ctx, opts["id"].IntValue(), userID, []int64{target}); err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s was invited to team #%d.", mention(target), opts["id"].IntValue()))

	case "accept":
		team, err := b.teamService.AcceptInvite(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		if team.Status == models.TeamStatusConfirmed {
			announce(s, i, fmt.Sprintf("%s joined team %q; the roster is full and the team is confirmed!", mention(userID), team.Name))
		} else {
			announce(s, i, fmt.Sprintf("%s joined team %q (%d/%d).", mention(userID), team.Name, team.MemberCount(), models.TeamSize))
		}

	case "decline":
		if err := b.teamService.DeclineInvite(ctx, opts["id"].IntValue(), userID); err != nil {
			respondError(s, i, err)
			return
		}
		respond(s, i, "Invite declined.")

	case "join":
		team, err := b.teamService.JoinPublic(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s joined team %q (%d/%d).", mention(userID), team.Name, team.MemberCount(), models.TeamSize))

	case "leave":
		team, err := b.teamService.Leave(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s left team %q; the team needs a replacement before it can duel again.", mention(userID), team.Name))

	case "kick":
		target := optionUserID(s, opts["user"])
		team, err := b.teamService.Kick(ctx, opts["id"].IntValue(), userID, target)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s was removed from team %q.", mention(target), team.Name))

	case "disband":
		if err := b.teamService.Disband(ctx, opts["id"].IntValue(), userID); err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Team #%d was disbanded.", opts["id"].IntValue()))
	}
}
