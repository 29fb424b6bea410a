package bot

import (
	"context"
	"fmt"

	"arenabot/models"
	"arenabot/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleDuelCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)
	userID := interactionUserID(i)
	guildID := interactionGuildID(i)

	switch sub.Name {
	case "create":
		params := service.CreateDuelParams{
			CreatorID: userID,
			Kind:      models.DuelKind(opts["type"].StringValue()),
			Stake:     opts["stake"].IntValue(),
			GuildID:   guildID,
			ChannelID: interactionChannelID(i),
		}
		if opt, ok := opts["opponent"]; ok {
			opponentID := optionUserID(s, opt)
			params.OpponentID = &opponentID
		}

		duel, err := b.duelService.CreateDuel(ctx, params)
		if err != nil {
			respondError(s, i, err)
			return
		}
		if duel.Public {
			announce(s, i, fmt.Sprintf("%s opened duel #%d (%s, %d points a side). Use /duel join to take it on!",
				mention(userID), duel.ID, duel.Kind, duel.Stake))
		} else {
			announce(s, i, fmt.Sprintf("%s challenged %s to duel #%d (%s, %d points a side).",
				mention(userID), mention(*params.OpponentID), duel.ID, duel.Kind, duel.Stake))
		}

	case "accept":
		duel, err := b.duelService.AcceptInvite(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Duel #%d is on! Both stakes are locked in.", duel.ID))

	case "decline":
		duel, err := b.duelService.DeclineInvite(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Duel #%d was declined; the stake was refunded.", duel.ID))

	case "join":
		duel, err := b.duelService.JoinPublic(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s joined duel #%d. Fight!", mention(userID), duel.ID))

	case "cancel":
		duel, err := b.duelService.CancelDuel(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Duel #%d was cancelled; the stake was refunded.", duel.ID))

	case "result":
		duel, err := b.duelService.SubmitResult(ctx, opts["id"].IntValue(), userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Duel #%d finished; awaiting a moderator to settle it.", duel.ID))

	case "settle":
		winner, ok := parseSide(opts["winner"].StringValue())
		if !ok {
			respond(s, i, "winner must be side A or B")
			return
		}
		settlement, err := b.duelService.SettleDuel(ctx, opts["id"].IntValue(), userID, guildID, winner)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Duel #%d settled: side %s wins. %s collects %d points (%d burned).",
			settlement.Duel.ID, winner, mention(settlement.WinnerID), settlement.Payout, settlement.Burned))

	case "voidresult":
		duel, err := b.duelService.CancelResult(ctx, opts["id"].IntValue(), userID, guildID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("The reported result of duel #%d was voided.", duel.ID))

	case "abort":
		duel, err := b.duelService.CancelByModerator(ctx, opts["id"].IntValue(), userID, guildID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Duel #%d was aborted; all stakes were refunded.", duel.ID))
	}
}
