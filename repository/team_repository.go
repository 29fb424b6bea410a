package repository

import (
	"context"
	"fmt"

	"arenabot/database"
	"arenabot/models"

	"github.com/jackc/pgx/v5"
)

// TeamRepository implements the TeamStore interface
type TeamRepository struct {
	q queryable
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.DB) *TeamRepository {
	return &TeamRepository{q: db.Pool}
}

const teamColumns = `id, name, leader_id, slot1, slot2, slot3, slot4, slot5, is_public, status, guild_id, created_at`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.LeaderID,
		&team.Slots[0],
		&team.Slots[1],
		&team.Slots[2],
		&team.Slots[3],
		&team.Slots[4],
		&team.Public,
		&team.Status,
		&team.GuildID,
		&team.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	return &team, nil
}

// Insert creates a new team and assigns its ID
func (r *TeamRepository) Insert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, leader_id, slot1, slot2, slot3, slot4, slot5, is_public, status, guild_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		team.Name,
		team.LeaderID,
		team.Slots[0],
		team.Slots[1],
		team.Slots[2],
		team.Slots[3],
		team.Slots[4],
		team.Public,
		team.Status,
		team.GuildID,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// Get retrieves a team by ID, or nil if not found
func (r *TeamRepository) Get(ctx context.Context, id int64) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.q.QueryRow(ctx, query, id))
}

// Update writes the team row; slots and status change together
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $2, slot1 = $3, slot2 = $4, slot3 = $5, slot4 = $6, slot5 = $7, is_public = $8, status = $9
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		team.ID,
		team.Name,
		team.Slots[0],
		team.Slots[1],
		team.Slots[2],
		team.Slots[3],
		team.Slots[4],
		team.Public,
		team.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update team %d: %w", team.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team %d not found", team.ID)
	}
	return nil
}

// Delete removes the team row
func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team %d not found", id)
	}
	return nil
}

// GetByMember returns the team whose roster contains the user, or nil
func (r *TeamRepository) GetByMember(ctx context.Context, userID int64) (*models.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE $1 IN (slot1, slot2, slot3, slot4, slot5)
		LIMIT 1
	`
	return scanTeam(r.q.QueryRow(ctx, query, userID))
}
