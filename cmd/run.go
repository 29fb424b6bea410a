package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"arenabot/bot"
	"arenabot/config"
	"arenabot/database"
	"arenabot/events"
	"arenabot/repository"
	"arenabot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting arena bot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	clock := service.SystemClock()

	accountRepo := repository.NewAccountRepository(db)
	duelRepo := repository.NewDuelRepository(db)
	duelInviteRepo := repository.NewDuelInviteRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	teamInviteRepo := repository.NewTeamInviteRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	betRepo := repository.NewBetRepository(db)
	moderatorRepo := repository.NewModeratorRepository(db)

	ledger := service.NewLedger(accountRepo, eventBus, clock, cfg.StartingBalance)
	gate := service.NewEligibilityGate(accountRepo, duelRepo, teamRepo, clock, cfg.DuelCooldown)

	duelService := service.NewDuelService(duelRepo, duelInviteRepo, teamRepo, ledger, gate, moderatorRepo, eventBus, clock, service.DuelConfig{
		MinStake: cfg.MinStake,
		MaxStake: cfg.MaxStake,
		BurnRate: cfg.BurnRate,
	})
	scheduler := service.NewExpiryScheduler(cfg.AutoRefundDelay, duelService.ExpireDuel)
	duelService.AttachScheduler(scheduler)
	defer scheduler.Stop()

	teamService := service.NewTeamService(teamRepo, teamInviteRepo, duelRepo, eventBus, clock)
	bettingService := service.NewBettingService(matchRepo, betRepo, ledger, moderatorRepo, eventBus, clock, cfg.BurnRate)
	economyService := service.NewEconomyService(accountRepo, ledger, moderatorRepo)

	log.Info("Services initialized, connecting to Discord...")
	arenaBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}, duelService, teamService, bettingService, economyService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}
	defer arenaBot.Close()

	log.Info("Bot is running. Press CTRL-C to exit.")
	<-ctx.Done()

	log.Info("Shutting down...")
	return nil
}
