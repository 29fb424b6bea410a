package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"arenabot/events"
	"arenabot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config         Config
	session        *discordgo.Session
	duelService    *service.DuelService
	teamService    *service.TeamService
	bettingService *service.BettingService
	economyService *service.EconomyService
	eventBus       *events.Bus
}

func New(config Config, duelService *service.DuelService, teamService *service.TeamService, bettingService *service.BettingService, economyService *service.EconomyService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:         config,
		session:        dg,
		duelService:    duelService,
		teamService:    teamService,
		bettingService: bettingService,
		economyService: economyService,
		eventBus:       eventBus,
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Auto-expiry fires without an interaction to answer, so refund
	// announcements ride the event bus into the channel.
	eventBus.Subscribe(events.EventTypeDuelStateChange, func(ctx context.Context, event events.Event) {
		bot.announceDuelChange(event)
	})

	log.Info("Bot connected and commands registered")
	return bot, nil
}

// Close shuts down the Discord session.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) announceDuelChange(event events.Event) {
	change, ok := event.(events.DuelStateChangeEvent)
	if !ok || change.ChannelID == 0 {
		return
	}
	// Only the expiry transition happens without a user interaction to
	// answer; everything else is announced from its handler.
	if !change.Expired {
		return
	}

	content := fmt.Sprintf("Duel #%d expired with no challenger; the stake was refunded.", change.DuelID)
	if _, err := b.session.ChannelMessageSend(strconv.FormatInt(change.ChannelID, 10), content); err != nil {
		log.WithError(err).WithField("duelID", change.DuelID).Error("Failed to announce duel expiry")
	}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "points":
		b.handlePointsCommand(s, i)
	case "duel":
		b.handleDuelCommand(s, i)
	case "team":
		b.handleTeamCommand(s, i)
	case "match":
		b.handleMatchCommand(s, i)
	case "moderator":
		b.handleModeratorCommand(s, i)
	}
}
