package events

import (
	"context"
	"sync"

	"arenabot/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeDuelStateChange  EventType = "duel_state_change"
	EventTypeTeamStateChange  EventType = "team_state_change"
	EventTypeMatchStateChange EventType = "match_state_change"
	EventTypeBetPlaced        EventType = "bet_placed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
	Delta      int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// DuelStateChangeEvent represents a duel state transition. Expired marks
// a cancellation driven by the auto-refund timer rather than a user.
type DuelStateChangeEvent struct {
	DuelID    int64
	OldStatus models.DuelStatus
	NewStatus models.DuelStatus
	ChannelID int64
	Expired   bool
}

func (e DuelStateChangeEvent) Type() EventType {
	return EventTypeDuelStateChange
}

// TeamStateChangeEvent represents a team roster or status change
type TeamStateChangeEvent struct {
	TeamID    int64
	Name      string
	OldStatus models.TeamStatus
	NewStatus models.TeamStatus
}

func (e TeamStateChangeEvent) Type() EventType {
	return EventTypeTeamStateChange
}

// MatchStateChangeEvent represents a betting pool state transition
type MatchStateChangeEvent struct {
	MatchID   int64
	OldStatus models.MatchStatus
	NewStatus models.MatchStatus
	ChannelID int64
}

func (e MatchStateChangeEvent) Type() EventType {
	return EventTypeMatchStateChange
}

// BetPlacedEvent represents a bet recorded on a betting pool
type BetPlacedEvent struct {
	MatchID int64
	BetID   int64
	UserID  int64
	Side    models.Side
	Amount  int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously; a panicking handler cannot take down the caller.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
