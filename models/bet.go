package models

import (
	"time"
)

// Bet represents a single stake placed on one side of a betting pool. Bets
// are immutable once recorded except through a whole-match cancel or settle
// pass.
type Bet struct {
	ID        int64     `db:"id"`
	MatchID   int64     `db:"match_id"`
	UserID    int64     `db:"user_id"`
	Side      Side      `db:"side"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}
