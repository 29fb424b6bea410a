package models

import (
	"time"
)

// TeamStatus represents the state of a team roster
type TeamStatus string

const (
	TeamStatusPending   TeamStatus = "pending"
	TeamStatusConfirmed TeamStatus = "confirmed"
)

// TeamSize is the fixed roster size for 5v5 duels.
const TeamSize = 5

// Team represents an invite-assembled roster. The leader occupies slot 1.
// A team is confirmed only while all five slots are filled and every
// occupant's invite is accepted; any vacancy reverts it to pending.
type Team struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	LeaderID  int64      `db:"leader_id"`
	Slots     [TeamSize]*int64
	Public    bool       `db:"is_public"`
	Status    TeamStatus `db:"status"`
	GuildID   int64      `db:"guild_id"`
	CreatedAt time.Time  `db:"created_at"`
}

// MemberCount returns the number of occupied slots.
func (t *Team) MemberCount() int {
	count := 0
	for _, slot := range t.Slots {
		if slot != nil {
			count++
		}
	}
	return count
}

// HasMember checks if a user occupies one of the team's slots.
func (t *Team) HasMember(userID int64) bool {
	for _, slot := range t.Slots {
		if slot != nil && *slot == userID {
			return true
		}
	}
	return false
}

// FirstFreeSlot returns the index of the first unoccupied slot, or -1 if
// the roster is full.
func (t *Team) FirstFreeSlot() int {
	for i, slot := range t.Slots {
		if slot == nil {
			return i
		}
	}
	return -1
}

// RemoveMember vacates the slot occupied by the given user and reports
// whether a slot was freed. The leader's slot cannot be vacated this way.
func (t *Team) RemoveMember(userID int64) bool {
	for i, slot := range t.Slots {
		if slot != nil && *slot == userID {
			t.Slots[i] = nil
			return true
		}
	}
	return false
}

// IsFull reports whether all slots are occupied.
func (t *Team) IsFull() bool {
	return t.MemberCount() == TeamSize
}

// EligibleForDuel reports whether the team may field a 5v5 duel.
func (t *Team) EligibleForDuel() bool {
	return t.Status == TeamStatusConfirmed && t.IsFull()
}
