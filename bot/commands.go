package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func sideChoices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "A", Value: "A"},
		{Name: "B", Value: "B"},
	}
}

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: description,
		Required:    true,
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "points",
			Description: "Check and manage points",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "balance",
					Description: "Check your current balance",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the top balances",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "grant",
					Description: "Grant points to a player (moderators only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Player to grant points to",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount of points (negative to deduct)",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "duel",
			Description: "Create and manage duels",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a duel; omit opponent to open it to anyone",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "Duel format",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "1v1", Value: "1v1"},
								{Name: "5v5", Value: "5v5"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "stake",
							Description: "Points at stake per side",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "opponent",
							Description: "Opponent to challenge (team leader for 5v5)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "accept",
					Description: "Accept a duel you were challenged to",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "decline",
					Description: "Decline a duel you were challenged to",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Join an open public duel",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Cancel your open duel",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "result",
					Description: "Report that your duel has finished",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settle",
					Description: "Settle a finished duel (moderators only)",
					Options: []*discordgo.ApplicationCommandOption{
						idOption("Duel ID"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "winner",
							Description: "Winning side",
							Required:    true,
							Choices:     sideChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "voidresult",
					Description: "Void a reported result (moderators only)",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "abort",
					Description: "Abort a duel and refund stakes (moderators only)",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Duel ID")},
				},
			},
		},
		{
			Name:        "team",
			Description: "Create and manage 5v5 teams",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a team with you as leader",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Team name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "public",
							Description: "Allow anyone to join without an invite",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "invite",
					Description: "Invite a player to your team",
					Options: []*discordgo.ApplicationCommandOption{
						idOption("Team ID"),
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Player to invite",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "accept",
					Description: "Accept a team invite",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Team ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "decline",
					Description: "Decline a team invite",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Team ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Join a public team",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Team ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave your current team",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Team ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "kick",
					Description: "Remove a player from your team (leader only)",
					Options: []*discordgo.ApplicationCommandOption{
						idOption("Team ID"),
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Player to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "disband",
					Description: "Disband your team (leader only)",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Team ID")},
				},
			},
		},
		{
			Name:        "match",
			Description: "Run betting pools on matches",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Open a betting pool (moderators only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "side_a",
							Description: "Name of side A",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "side_b",
							Description: "Name of side B",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "burn_rate",
							Description: "Share of the losing pool to burn (default 0.25)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "bet",
					Description: "Bet on a side",
					Options: []*discordgo.ApplicationCommandOption{
						idOption("Match ID"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "side",
							Description: "Side to back",
							Required:    true,
							Choices:     sideChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Points to bet",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Stop further betting (moderators only)",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Match ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Void the pool and refund all bets (moderators only)",
					Options:     []*discordgo.ApplicationCommandOption{idOption("Match ID")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settle",
					Description: "Settle the pool (moderators only)",
					Options: []*discordgo.ApplicationCommandOption{
						idOption("Match ID"),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "winner",
							Description: "Winning side",
							Required:    true,
							Choices:     sideChoices(),
						},
					},
				},
			},
		},
		{
			Name:                     "moderator",
			Description:              "Manage the moderator roster",
			DefaultMemberPermissions: adminPermission(),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a moderator",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to add",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a moderator",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List moderators",
				},
			},
		},
	}

	for _, command := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, command); err != nil {
			return fmt.Errorf("failed to register command %s: %w", command.Name, err)
		}
	}
	return nil
}

func adminPermission() *int64 {
	perm := int64(discordgo.PermissionAdministrator)
	return &perm
}
