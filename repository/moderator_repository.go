package repository

import (
	"context"
	"fmt"

	"arenabot/database"
)

// ModeratorRepository implements the ModeratorStore interface
type ModeratorRepository struct {
	q queryable
}

// NewModeratorRepository creates a new moderator repository
func NewModeratorRepository(db *database.DB) *ModeratorRepository {
	return &ModeratorRepository{q: db.Pool}
}

// IsModerator reports whether the user moderates the guild
func (r *ModeratorRepository) IsModerator(ctx context.Context, guildID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM moderators WHERE guild_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, guildID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check moderator: %w", err)
	}
	return exists, nil
}

// Add records a moderator for the guild
func (r *ModeratorRepository) Add(ctx context.Context, guildID, userID int64) error {
	query := `
		INSERT INTO moderators (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to add moderator: %w", err)
	}
	return nil
}

// Remove deletes a moderator from the guild
func (r *ModeratorRepository) Remove(ctx context.Context, guildID, userID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM moderators WHERE guild_id = $1 AND user_id = $2`, guildID, userID); err != nil {
		return fmt.Errorf("failed to remove moderator: %w", err)
	}
	return nil
}

// List returns the guild's moderator IDs
func (r *ModeratorRepository) List(ctx context.Context, guildID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id FROM moderators WHERE guild_id = $1 ORDER BY user_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderators: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan moderator: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
