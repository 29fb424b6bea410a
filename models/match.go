package models

import (
	"time"
)

// MatchStatus represents the state of a betting pool
type MatchStatus string

const (
	MatchStatusOpen       MatchStatus = "open"
	MatchStatusClosed     MatchStatus = "closed"
	MatchStatusCancelling MatchStatus = "cancelling"
	MatchStatusCancelled  MatchStatus = "cancelled"
	MatchStatusSettled    MatchStatus = "settled"
)

// Match represents an externally adjudicated parimutuel betting pool.
// TotalA and TotalB cache the sum of recorded bet amounts per side; the
// cached values must always equal those sums.
type Match struct {
	ID        int64       `db:"id"`
	SideAName string      `db:"side_a_name"`
	SideBName string      `db:"side_b_name"`
	BurnRate  float64     `db:"burn_rate"`
	TotalA    int64       `db:"total_a"`
	TotalB    int64       `db:"total_b"`
	Status    MatchStatus `db:"status"`
	GuildID   int64       `db:"guild_id"`
	ChannelID int64       `db:"channel_id"`
	CreatedAt time.Time   `db:"created_at"`
}

// AcceptsBets reports whether new bets may be placed.
func (m *Match) AcceptsBets() bool {
	return m.Status == MatchStatusOpen
}

// IsTerminal reports whether the pool has been settled or cancelled. A pool
// mid-cancellation counts as terminal for the purpose of rejecting further
// moderator actions.
func (m *Match) IsTerminal() bool {
	return m.Status == MatchStatusSettled || m.Status == MatchStatusCancelled || m.Status == MatchStatusCancelling
}

// Total returns the cached bet total for the given side.
func (m *Match) Total(side Side) int64 {
	if side == SideA {
		return m.TotalA
	}
	return m.TotalB
}

// SideName returns the display name for the given side.
func (m *Match) SideName(side Side) string {
	if side == SideA {
		return m.SideAName
	}
	return m.SideBName
}
