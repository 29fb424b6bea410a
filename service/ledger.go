package service

import (
	"context"
	"sync"

	"arenabot/events"
	"arenabot/models"

	log "github.com/sirupsen/logrus"
)

// Ledger owns all Account balance mutation. Every balance change in the
// process runs under one mutex, held across the read-modify-write-persist
// sequence. Coarse-grained on purpose: with a store that offers no
// transactions, a single exclusion token gives a no-lost-update guarantee
// without per-account bookkeeping, and money movement is rare relative to
// reads.
type Ledger struct {
	mu              sync.Mutex
	accounts        AccountStore
	bus             EventPublisher
	clock           Clock
	startingBalance int64
}

// NewLedger creates a new ledger over the accounts collection
func NewLedger(accounts AccountStore, bus EventPublisher, clock Clock, startingBalance int64) *Ledger {
	return &Ledger{
		accounts:        accounts,
		bus:             bus,
		clock:           clock,
		startingBalance: startingBalance,
	}
}

// Funds exposes balance mutation to a caller already holding the ledger's
// exclusion token. Obtained only through Exclusive.
type Funds struct {
	l *Ledger
}

// GetBalance returns the user's balance, creating the account lazily.
func (l *Ledger) GetBalance(ctx context.Context, userID int64) (int64, error) {
	account, err := l.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// AddBalance applies delta to the user's balance and returns the new
// balance. Delta may be negative; the caller is responsible for any prior
// sufficiency check. Refund and payout paths rely on this never rejecting.
func (l *Ledger) AddBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addLocked(ctx, userID, delta)
}

// Debit removes amount from the user's balance, rejecting the operation if
// the balance is insufficient. The check and the deduction happen under the
// same critical section, so a concurrent debit cannot slip between them.
func (l *Ledger) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, validationf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debitLocked(ctx, userID, amount)
}

// Exclusive runs fn while holding the ledger's exclusion token, for
// multi-step financial sequences that must not interleave with other money
// movement (betting-pool placement debits, inserts and total updates as
// one unit).
func (l *Ledger) Exclusive(ctx context.Context, fn func(f *Funds) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(&Funds{l: l})
}

// AddBalance applies delta without re-acquiring the exclusion token.
func (f *Funds) AddBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	return f.l.addLocked(ctx, userID, delta)
}

// Debit removes amount, rejecting on insufficient balance, without
// re-acquiring the exclusion token.
func (f *Funds) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, validationf("amount must be positive")
	}
	return f.l.debitLocked(ctx, userID, amount)
}

// Balance reads the user's balance without re-acquiring the token.
func (f *Funds) Balance(ctx context.Context, userID int64) (int64, error) {
	account, err := f.l.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (l *Ledger) addLocked(ctx context.Context, userID int64, delta int64) (int64, error) {
	account, err := l.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}

	newBalance := account.Balance + delta
	if err := l.accounts.SetBalance(ctx, userID, newBalance); err != nil {
		return 0, storeErr("persist balance", err)
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"oldBalance": account.Balance,
		"newBalance": newBalance,
	}).Info("Balance updated")

	if l.bus != nil {
		l.bus.Emit(ctx, events.BalanceChangeEvent{
			UserID:     userID,
			OldBalance: account.Balance,
			NewBalance: newBalance,
			Delta:      delta,
		})
	}

	return newBalance, nil
}

func (l *Ledger) debitLocked(ctx context.Context, userID int64, amount int64) (int64, error) {
	account, err := l.getOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if account.Balance < amount {
		return 0, validationf("insufficient points: you have %d, need %d", account.Balance, amount)
	}
	return l.addLocked(ctx, userID, -amount)
}

// getOrCreate fetches the account, creating it with the starting balance on
// first reference.
func (l *Ledger) getOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return nil, storeErr("get account", err)
	}
	if account != nil {
		return account, nil
	}

	account = &models.Account{
		UserID:  userID,
		Balance: l.startingBalance,
	}
	if err := l.accounts.Create(ctx, account); err != nil {
		return nil, storeErr("create account", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"balance": account.Balance,
	}).Info("Account created")

	return account, nil
}
