package repository

import (
	"context"
	"fmt"

	"arenabot/database"
	"arenabot/models"

	"github.com/jackc/pgx/v5"
)

// DuelInviteRepository implements the DuelInviteStore interface
type DuelInviteRepository struct {
	q queryable
}

// NewDuelInviteRepository creates a new duel invite repository
func NewDuelInviteRepository(db *database.DB) *DuelInviteRepository {
	return &DuelInviteRepository{q: db.Pool}
}

// Insert creates a new duel invite
func (r *DuelInviteRepository) Insert(ctx context.Context, invite *models.DuelInvite) error {
	query := `
		INSERT INTO duel_invites (duel_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, invite.DuelID, invite.UserID, invite.Status).Scan(
		&invite.ID,
		&invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert duel invite: %w", err)
	}
	return nil
}

// Get retrieves the invite for a (duel, user) pair, or nil
func (r *DuelInviteRepository) Get(ctx context.Context, duelID, userID int64) (*models.DuelInvite, error) {
	query := `
		SELECT id, duel_id, user_id, status, created_at
		FROM duel_invites
		WHERE duel_id = $1 AND user_id = $2
	`

	var invite models.DuelInvite
	err := r.q.QueryRow(ctx, query, duelID, userID).Scan(
		&invite.ID,
		&invite.DuelID,
		&invite.UserID,
		&invite.Status,
		&invite.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duel invite: %w", err)
	}
	return &invite, nil
}

// SetStatus updates the invite's status
func (r *DuelInviteRepository) SetStatus(ctx context.Context, duelID, userID int64, status models.InviteStatus) error {
	query := `
		UPDATE duel_invites
		SET status = $3
		WHERE duel_id = $1 AND user_id = $2
	`

	tag, err := r.q.Exec(ctx, query, duelID, userID, status)
	if err != nil {
		return fmt.Errorf("failed to update duel invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("duel invite for duel %d user %d not found", duelID, userID)
	}
	return nil
}
