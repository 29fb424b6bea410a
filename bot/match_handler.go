package bot

import (
	"context"
	"fmt"
	"strings"

	"arenabot/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleMatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)
	userID := interactionUserID(i)
	guildID := interactionGuildID(i)

	switch sub.Name {
	case "create":
		params := service.CreateMatchParams{
			SideAName: opts["side_a"].StringValue(),
			SideBName: opts["side_b"].StringValue(),
			GuildID:   guildID,
			ChannelID: interactionChannelID(i),
		}
		if opt, ok := opts["burn_rate"]; ok {
			params.BurnRate = opt.FloatValue()
		}
		match, err := b.bettingService.CreateMatch(ctx, userID, params)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Betting pool #%d opened: %s (A) vs %s (B). Place your bets with /match bet!",
			match.ID, match.SideAName, match.SideBName))

	case "bet":
		side, ok := parseSide(opts["side"].StringValue())
		if !ok {
			respond(s, i, "side must be A or B")
			return
		}
		bet, err := b.bettingService.PlaceBet(ctx, opts["id"].IntValue(), userID, side, opts["amount"].IntValue())
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s put %d points on side %s of pool #%d.", mention(userID), bet.Amount, side, bet.MatchID))

	case "close":
		match, err := b.bettingService.CloseMatch(ctx, opts["id"].IntValue(), userID, guildID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Betting closed on pool #%d. Totals: %s %d, %s %d.",
			match.ID, match.SideAName, match.TotalA, match.SideBName, match.TotalB))

	case "cancel":
		match, err := b.bettingService.CancelMatch(ctx, opts["id"].IntValue(), userID, guildID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("Pool #%d was cancelled and every bet refunded.", match.ID))

	case "settle":
		winner, ok := parseSide(opts["winner"].StringValue())
		if !ok {
			respond(s, i, "winner must be side A or B")
			return
		}
		settlement, err := b.bettingService.SettleMatch(ctx, opts["id"].IntValue(), userID, guildID, winner)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, formatSettlement(settlement))
	}
}

func formatSettlement(settlement *service.MatchSettlement) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pool #%d settled: %s wins! %d points distributed, %d burned.",
		settlement.Match.ID, settlement.Match.SideName(settlement.Winner), settlement.Distributed, settlement.Burned)
	for _, payout := range settlement.Payouts {
		fmt.Fprintf(&sb, "\n%s gets back %d and wins %d", mention(payout.UserID), payout.Stake, payout.Winnings)
	}
	return sb.String()
}
