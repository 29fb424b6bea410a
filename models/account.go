package models

import (
	"time"
)

// Account holds a user's point balance and wager cooldown marker.
// Accounts are created lazily on first reference and their balance is
// mutated only through the ledger.
type Account struct {
	UserID        int64      `db:"user_id"`
	Balance       int64      `db:"balance"`
	LastWagerTime *time.Time `db:"last_wager_time"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// CooldownClear reports whether the account's wager cooldown has elapsed.
// An account that never entered a committed wager is always clear.
func (a *Account) CooldownClear(now time.Time, cooldown time.Duration) bool {
	if a.LastWagerTime == nil {
		return true
	}
	return now.Sub(*a.LastWagerTime) >= cooldown
}
