package repository

import (
	"context"
	"fmt"

	"arenabot/database"
	"arenabot/models"
)

// BetRepository implements the BetStore interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// Insert records a new bet and assigns its ID
func (r *BetRepository) Insert(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (match_id, user_id, side, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, bet.MatchID, bet.UserID, bet.Side, bet.Amount).Scan(
		&bet.ID,
		&bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bet: %w", err)
	}
	return nil
}

// ListByMatch returns all bets recorded for the match
func (r *BetRepository) ListByMatch(ctx context.Context, matchID int64) ([]*models.Bet, error) {
	query := `
		SELECT id, match_id, user_id, side, amount, created_at
		FROM bets
		WHERE match_id = $1
		ORDER BY id
	`
	return r.listBets(ctx, query, matchID)
}

// ListByMatchSide returns the match's bets on one side
func (r *BetRepository) ListByMatchSide(ctx context.Context, matchID int64, side models.Side) ([]*models.Bet, error) {
	query := `
		SELECT id, match_id, user_id, side, amount, created_at
		FROM bets
		WHERE match_id = $1 AND side = $2
		ORDER BY id
	`
	return r.listBets(ctx, query, matchID, side)
}

func (r *BetRepository) listBets(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		if err := rows.Scan(
			&bet.ID,
			&bet.MatchID,
			&bet.UserID,
			&bet.Side,
			&bet.Amount,
			&bet.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}
	return bets, rows.Err()
}
