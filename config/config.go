package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL      string
	DatabaseMaxConns int32 // zero keeps the driver default

	// Economy settings
	StartingBalance int64
	BurnRate        float64 // share of the losing pot destroyed at settlement
	MinStake        int64
	MaxStake        int64

	// Timing
	DuelCooldown    time.Duration // per-user wait between committed duels
	AutoRefundDelay time.Duration // how long a public duel stays on offer

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		StartingBalance: 1000,
		BurnRate:        0.25,
		MinStake:        50,
		MaxStake:        200,
		DuelCooldown:    24 * time.Hour,
		AutoRefundDelay: time.Hour,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if rate := os.Getenv("BURN_RATE"); rate != "" {
		parsed, err := strconv.ParseFloat(rate, 64)
		if err != nil || parsed < 0 || parsed > 0.9 {
			return nil, fmt.Errorf("BURN_RATE must be a number between 0 and 0.9")
		}
		config.BurnRate = parsed
	}
	if conns := os.Getenv("DATABASE_MAX_CONNS"); conns != "" {
		parsed, err := strconv.ParseInt(conns, 10, 32)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("DATABASE_MAX_CONNS must be a non-negative integer")
		}
		config.DatabaseMaxConns = int32(parsed)
	}
	if stake := os.Getenv("MIN_STAKE"); stake != "" {
		if parsed, err := strconv.ParseInt(stake, 10, 64); err == nil {
			config.MinStake = parsed
		}
	}
	if stake := os.Getenv("MAX_STAKE"); stake != "" {
		if parsed, err := strconv.ParseInt(stake, 10, 64); err == nil {
			config.MaxStake = parsed
		}
	}
	if cooldown := os.Getenv("DUEL_COOLDOWN"); cooldown != "" {
		parsed, err := time.ParseDuration(cooldown)
		if err != nil {
			return nil, fmt.Errorf("invalid DUEL_COOLDOWN: %w", err)
		}
		config.DuelCooldown = parsed
	}
	if delay := os.Getenv("AUTO_REFUND_DELAY"); delay != "" {
		parsed, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_REFUND_DELAY: %w", err)
		}
		config.AutoRefundDelay = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	if config.MinStake <= 0 || config.MaxStake < config.MinStake {
		return nil, fmt.Errorf("stake bounds must satisfy 0 < MIN_STAKE <= MAX_STAKE")
	}

	return config, nil
}
