package repository

import (
	"context"
	"fmt"

	"arenabot/database"
	"arenabot/models"

	"github.com/jackc/pgx/v5"
)

// TeamInviteRepository implements the TeamInviteStore interface
type TeamInviteRepository struct {
	q queryable
}

// NewTeamInviteRepository creates a new team invite repository
func NewTeamInviteRepository(db *database.DB) *TeamInviteRepository {
	return &TeamInviteRepository{q: db.Pool}
}

// Insert creates a new team invite
func (r *TeamInviteRepository) Insert(ctx context.Context, invite *models.TeamInvite) error {
	query := `
		INSERT INTO team_invites (team_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, invite.TeamID, invite.UserID, invite.Status).Scan(
		&invite.ID,
		&invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert team invite: %w", err)
	}
	return nil
}

// Get retrieves the invite for a (team, user) pair, or nil
func (r *TeamInviteRepository) Get(ctx context.Context, teamID, userID int64) (*models.TeamInvite, error) {
	query := `
		SELECT id, team_id, user_id, status, created_at
		FROM team_invites
		WHERE team_id = $1 AND user_id = $2
	`

	var invite models.TeamInvite
	err := r.q.QueryRow(ctx, query, teamID, userID).Scan(
		&invite.ID,
		&invite.TeamID,
		&invite.UserID,
		&invite.Status,
		&invite.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team invite: %w", err)
	}
	return &invite, nil
}

// Update writes the invite's status and timestamp
func (r *TeamInviteRepository) Update(ctx context.Context, invite *models.TeamInvite) error {
	query := `
		UPDATE team_invites
		SET status = $2, created_at = $3
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, invite.ID, invite.Status, invite.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update team invite %d: %w", invite.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team invite %d not found", invite.ID)
	}
	return nil
}

// ListByTeam returns all invites recorded for the team
func (r *TeamInviteRepository) ListByTeam(ctx context.Context, teamID int64) ([]*models.TeamInvite, error) {
	query := `
		SELECT id, team_id, user_id, status, created_at
		FROM team_invites
		WHERE team_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.TeamInvite
	for rows.Next() {
		var invite models.TeamInvite
		if err := rows.Scan(
			&invite.ID,
			&invite.TeamID,
			&invite.UserID,
			&invite.Status,
			&invite.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team invite: %w", err)
		}
		invites = append(invites, &invite)
	}
	return invites, rows.Err()
}

// DeleteByTeam removes all invites for a disbanded team
func (r *TeamInviteRepository) DeleteByTeam(ctx context.Context, teamID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM team_invites WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to delete team invites for team %d: %w", teamID, err)
	}
	return nil
}
