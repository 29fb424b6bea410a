package service

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ExpiryFunc is invoked when a scheduled duel expiry fires. Implementations
// must re-check the duel's current status: the timer is advisory and may
// fire after the duel has already progressed.
type ExpiryFunc func(ctx context.Context, duelID int64)

// ExpiryScheduler holds one cancellable timer per open public duel.
// Cancellation is best-effort; correctness comes from the status guard in
// the expiry callback, not from the timer being stopped in time.
type ExpiryScheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	delay  time.Duration
	expire ExpiryFunc
}

// NewExpiryScheduler creates a scheduler firing expire after delay
func NewExpiryScheduler(delay time.Duration, expire ExpiryFunc) *ExpiryScheduler {
	return &ExpiryScheduler{
		timers: make(map[int64]*time.Timer),
		delay:  delay,
		expire: expire,
	}
}

// Schedule arms the expiry timer for a duel. Re-scheduling an already
// scheduled duel resets its timer.
func (s *ExpiryScheduler) Schedule(duelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[duelID]; ok {
		t.Stop()
	}
	s.timers[duelID] = time.AfterFunc(s.delay, func() {
		s.fire(duelID)
	})

	log.WithFields(log.Fields{
		"duelID": duelID,
		"delay":  s.delay,
	}).Info("Scheduled duel expiry")
}

// Cancel disarms the timer for a duel if one is still pending.
func (s *ExpiryScheduler) Cancel(duelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[duelID]; ok {
		t.Stop()
		delete(s.timers, duelID)
	}
}

// Stop disarms every pending timer, for shutdown.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *ExpiryScheduler) fire(duelID int64) {
	s.mu.Lock()
	delete(s.timers, duelID)
	s.mu.Unlock()

	s.expire(context.Background(), duelID)
}
