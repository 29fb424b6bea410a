package models

import (
	"time"
)

// InviteStatus represents the state of a team or duel invite
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusLeft     InviteStatus = "left"
)

// Live reports whether the invite still binds its target. Non-live invites
// are superseded in place when the same user is invited again.
func (s InviteStatus) Live() bool {
	return s == InviteStatusPending || s == InviteStatusAccepted
}

// TeamInvite records a user's standing with respect to a team roster. One
// row exists per (team, user) pair; re-invites update the existing row.
type TeamInvite struct {
	ID        int64        `db:"id"`
	TeamID    int64        `db:"team_id"`
	UserID    int64        `db:"user_id"`
	Status    InviteStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
}

// DuelInvite records the named opponent's standing on a private duel.
type DuelInvite struct {
	ID        int64        `db:"id"`
	DuelID    int64        `db:"duel_id"`
	UserID    int64        `db:"user_id"`
	Status    InviteStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
}
