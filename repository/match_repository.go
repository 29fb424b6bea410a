package repository

import (
	"context"
	"fmt"

	"arenabot/database"
	"arenabot/models"
	"arenabot/service"

	"github.com/jackc/pgx/v5"
)

// MatchRepository implements the MatchStore interface
type MatchRepository struct {
	q queryable
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{q: db.Pool}
}

// Insert creates a new match and assigns its ID
func (r *MatchRepository) Insert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (side_a_name, side_b_name, burn_rate, status, guild_id, channel_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		match.SideAName,
		match.SideBName,
		match.BurnRate,
		match.Status,
		match.GuildID,
		match.ChannelID,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

// Get retrieves a match by ID, or nil if not found
func (r *MatchRepository) Get(ctx context.Context, id int64) (*models.Match, error) {
	query := `
		SELECT id, side_a_name, side_b_name, burn_rate, total_a, total_b, status, guild_id, channel_id, created_at
		FROM matches
		WHERE id = $1
	`

	var match models.Match
	err := r.q.QueryRow(ctx, query, id).Scan(
		&match.ID,
		&match.SideAName,
		&match.SideBName,
		&match.BurnRate,
		&match.TotalA,
		&match.TotalB,
		&match.Status,
		&match.GuildID,
		&match.ChannelID,
		&match.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return &match, nil
}

// UpdateWhereStatus writes the match row only if its stored status still
// equals expect; returns ErrStatusChanged otherwise
func (r *MatchRepository) UpdateWhereStatus(ctx context.Context, match *models.Match, expect models.MatchStatus) error {
	query := `
		UPDATE matches
		SET total_a = $2, total_b = $3, status = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := r.q.Exec(ctx, query, match.ID, match.TotalA, match.TotalB, match.Status, expect)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrStatusChanged
	}
	return nil
}
