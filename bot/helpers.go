package bot

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"arenabot/models"
	"arenabot/service"

	"github.com/bwmarrin/discordgo"
)

// respond sends an ephemeral reply to an interaction.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to interaction")
	}
}

// announce sends a public reply to an interaction.
func announce(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to interaction")
	}
}

// respondError maps a service error to a short user-facing message.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	respond(s, i, service.UserMessage(err))
}

// interactionUserID returns the invoking user's ID.
func interactionUserID(i *discordgo.InteractionCreate) int64 {
	var user *discordgo.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		user = i.User
	}
	id, _ := strconv.ParseInt(user.ID, 10, 64)
	return id
}

// interactionGuildID returns the guild the interaction came from.
func interactionGuildID(i *discordgo.InteractionCreate) int64 {
	id, _ := strconv.ParseInt(i.GuildID, 10, 64)
	return id
}

// interactionChannelID returns the channel the interaction came from.
func interactionChannelID(i *discordgo.InteractionCreate) int64 {
	id, _ := strconv.ParseInt(i.ChannelID, 10, 64)
	return id
}

// optionMap indexes subcommand options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// optionUserID extracts a user option as an int64 ID.
func optionUserID(s *discordgo.Session, opt *discordgo.ApplicationCommandInteractionDataOption) int64 {
	user := opt.UserValue(s)
	if user == nil {
		return 0
	}
	id, _ := strconv.ParseInt(user.ID, 10, 64)
	return id
}

// parseSide converts a command option value to a duel side.
func parseSide(value string) (models.Side, bool) {
	side := models.Side(value)
	return side, side.Valid()
}

// mention formats a user ID as a Discord mention.
func mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}
