package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handlePointsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)
	userID := interactionUserID(i)
	guildID := interactionGuildID(i)

	switch sub.Name {
	case "balance":
		balance, err := b.economyService.GetBalance(ctx, userID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		respond(s, i, fmt.Sprintf("You have %d points.", balance))

	case "leaderboard":
		accounts, err := b.economyService.Leaderboard(ctx, 10)
		if err != nil {
			respondError(s, i, err)
			return
		}
		if len(accounts) == 0 {
			respond(s, i, "Nobody has any points yet.")
			return
		}
		var sb strings.Builder
		sb.WriteString("**Leaderboard**")
		for rank, account := range accounts {
			fmt.Fprintf(&sb, "\n%d. %s: %d points", rank+1, mention(account.UserID), account.Balance)
		}
		announce(s, i, sb.String())

	case "grant":
		target := optionUserID(s, opts["user"])
		amount := opts["amount"].IntValue()
		newBalance, err := b.economyService.Grant(ctx, guildID, userID, target, amount)
		if err != nil {
			respondError(s, i, err)
			return
		}
		announce(s, i, fmt.Sprintf("%s granted %d points to %s (new balance: %d).",
			mention(userID), amount, mention(target), newBalance))
	}
}

func (b *Bot) handleModeratorCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)
	guildID := interactionGuildID(i)

	switch sub.Name {
	case "add":
		target := optionUserID(s, opts["user"])
		if err := b.economyService.AddModerator(ctx, guildID, target); err != nil {
			respondError(s, i, err)
			return
		}
		respond(s, i, fmt.Sprintf("%s is now a moderator.", mention(target)))

	case "remove":
		target := optionUserID(s, opts["user"])
		if err := b.economyService.RemoveModerator(ctx, guildID, target); err != nil {
			respondError(s, i, err)
			return
		}
		respond(s, i, fmt.Sprintf("%s is no longer a moderator.", mention(target)))

	case "list":
		ids, err := b.economyService.ListModerators(ctx, guildID)
		if err != nil {
			respondError(s, i, err)
			return
		}
		if len(ids) == 0 {
			respond(s, i, "No moderators configured.")
			return
		}
		mentions := make([]string, len(ids))
		for idx, id := range ids {
			mentions[idx] = mention(id)
		}
		respond(s, i, "Moderators: "+strings.Join(mentions, ", "))
	}
}
