package models

import (
	"time"
)

// DuelStatus represents the state of a duel
type DuelStatus string

const (
	DuelStatusWaiting       DuelStatus = "waiting"
	DuelStatusPublic        DuelStatus = "public"
	DuelStatusActive        DuelStatus = "active"
	DuelStatusProcessing    DuelStatus = "processing"
	DuelStatusResultPending DuelStatus = "result_pending"
	DuelStatusSettled       DuelStatus = "settled"
	DuelStatusCancelled     DuelStatus = "cancelled"
	DuelStatusResultVoided  DuelStatus = "result_canceled"
)

// DuelKind distinguishes solo duels from team duels
type DuelKind string

const (
	DuelKind1v1 DuelKind = "1v1"
	DuelKind5v5 DuelKind = "5v5"
)

// Side identifies one of the two sides of a duel or betting pool
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Valid reports whether the side is one of the two recognized values.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Duel represents a head-to-head wager between two sides. For 1v1 duels the
// sides are player IDs; for 5v5 duels they are team IDs and the stake is
// carried by each team's leader. At most one side may be unfilled, and only
// while the duel is still open.
type Duel struct {
	ID         int64      `db:"id"`
	Kind       DuelKind   `db:"kind"`
	Public     bool       `db:"is_public"`
	CreatorID  int64      `db:"creator_id"`
	PlayerA    *int64     `db:"player_a"`
	PlayerB    *int64     `db:"player_b"`
	TeamA      *int64     `db:"team_a"`
	TeamB      *int64     `db:"team_b"`
	Stake      int64      `db:"stake"`
	Status     DuelStatus `db:"status"`
	WinnerSide *Side      `db:"winner_side"`
	GuildID    int64      `db:"guild_id"`
	ChannelID  int64      `db:"channel_id"`
	CreatedAt  time.Time  `db:"created_at"`
	SettledAt  *time.Time `db:"settled_at"`
}

// IsOpen reports whether the duel is still awaiting an opponent.
func (d *Duel) IsOpen() bool {
	return d.Status == DuelStatusWaiting || d.Status == DuelStatusPublic
}

// IsTerminal reports whether the duel has reached a final state.
func (d *Duel) IsTerminal() bool {
	return d.Status == DuelStatusSettled || d.Status == DuelStatusCancelled || d.Status == DuelStatusResultVoided
}

// CanSettle reports whether a moderator may settle the duel.
func (d *Duel) CanSettle() bool {
	return d.Status == DuelStatusProcessing || d.Status == DuelStatusResultPending
}

// CanBeCancelledBy checks if the duel can be cancelled by the given user.
func (d *Duel) CanBeCancelledBy(userID int64) bool {
	return d.IsOpen() && d.CreatorID == userID
}

// SideFilled reports whether the given side has an occupant.
func (d *Duel) SideFilled(side Side) bool {
	if d.Kind == DuelKind1v1 {
		if side == SideA {
			return d.PlayerA != nil
		}
		return d.PlayerB != nil
	}
	if side == SideA {
		return d.TeamA != nil
	}
	return d.TeamB != nil
}

// BothSidesFilled reports whether both sides have occupants.
func (d *Duel) BothSidesFilled() bool {
	return d.SideFilled(SideA) && d.SideFilled(SideB)
}

// IsParticipant checks if a player occupies one of the duel's sides
// directly. Team membership is resolved by the caller.
func (d *Duel) IsParticipant(userID int64) bool {
	if d.PlayerA != nil && *d.PlayerA == userID {
		return true
	}
	if d.PlayerB != nil && *d.PlayerB == userID {
		return true
	}
	return false
}
