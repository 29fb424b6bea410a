package repository

import (
	"context"
	"fmt"

	"arenabot/database"
	"arenabot/models"
	"arenabot/service"

	"github.com/jackc/pgx/v5"
)

// DuelRepository implements the DuelStore interface
type DuelRepository struct {
	q queryable
}

// NewDuelRepository creates a new duel repository
func NewDuelRepository(db *database.DB) *DuelRepository {
	return &DuelRepository{q: db.Pool}
}

const duelColumns = `id, kind, is_public, creator_id, player_a, player_b, team_a, team_b, stake, status, winner_side, guild_id, channel_id, created_at, settled_at`

func scanDuel(row pgx.Row) (*models.Duel, error) {
	var duel models.Duel
	err := row.Scan(
		&duel.ID,
		&duel.Kind,
		&duel.Public,
		&duel.CreatorID,
		&duel.PlayerA,
		&duel.PlayerB,
		&duel.TeamA,
		&duel.TeamB,
		&duel.Stake,
		&duel.Status,
		&duel.WinnerSide,
		&duel.GuildID,
		&duel.ChannelID,
		&duel.CreatedAt,
		&duel.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan duel: %w", err)
	}
	return &duel, nil
}

// Insert creates a new duel and assigns its ID
func (r *DuelRepository) Insert(ctx context.Context, duel *models.Duel) error {
	query := `
		INSERT INTO duels (kind, is_public, creator_id, player_a, player_b, team_a, team_b, stake, status, guild_id, channel_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		duel.Kind,
		duel.Public,
		duel.CreatorID,
		duel.PlayerA,
		duel.PlayerB,
		duel.TeamA,
		duel.TeamB,
		duel.Stake,
		duel.Status,
		duel.GuildID,
		duel.ChannelID,
	).Scan(&duel.ID, &duel.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert duel: %w", err)
	}
	return nil
}

// Get retrieves a duel by ID, or nil if not found
func (r *DuelRepository) Get(ctx context.Context, id int64) (*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE id = $1`
	return scanDuel(r.q.QueryRow(ctx, query, id))
}

// UpdateWhereStatus writes the duel row only if its stored status still
// equals expect. The WHERE status guard makes the flip away from an open
// state a single atomic step; the loser of a race sees ErrStatusChanged.
func (r *DuelRepository) UpdateWhereStatus(ctx context.Context, duel *models.Duel, expect models.DuelStatus) error {
	query := `
		UPDATE duels
		SET player_a = $2, player_b = $3, team_a = $4, team_b = $5, status = $6, winner_side = $7, settled_at = $8
		WHERE id = $1 AND status = $9
	`

	tag, err := r.q.Exec(ctx, query,
		duel.ID,
		duel.PlayerA,
		duel.PlayerB,
		duel.TeamA,
		duel.TeamB,
		duel.Status,
		duel.WinnerSide,
		duel.SettledAt,
		expect,
	)
	if err != nil {
		return fmt.Errorf("failed to update duel %d: %w", duel.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrStatusChanged
	}
	return nil
}

// FindOpenByCreator returns the creator's duel in waiting or public, or nil
func (r *DuelRepository) FindOpenByCreator(ctx context.Context, userID int64) (*models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels
		WHERE creator_id = $1 AND status IN ('waiting', 'public')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanDuel(r.q.QueryRow(ctx, query, userID))
}

// FindOpenByTeam returns the team's duel in waiting or public, or nil
func (r *DuelRepository) FindOpenByTeam(ctx context.Context, teamID int64) (*models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels
		WHERE team_a = $1 AND status IN ('waiting', 'public')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanDuel(r.q.QueryRow(ctx, query, teamID))
}
