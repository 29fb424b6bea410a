package repository

import (
	"context"
	"fmt"
	"time"

	"arenabot/database"
	"arenabot/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountStore interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// Get retrieves an account by user ID, or nil if none exists yet
func (r *AccountRepository) Get(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT user_id, balance, last_wager_time, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.LastWagerTime,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}

	return &account, nil
}

// Create inserts a new account row
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, account.UserID, account.Balance).Scan(
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account %d: %w", account.UserID, err)
	}
	return nil
}

// SetBalance persists a new balance for the account
func (r *AccountRepository) SetBalance(ctx context.Context, userID int64, balance int64) error {
	query := `
		UPDATE accounts
		SET balance = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.q.Exec(ctx, query, userID, balance)
	if err != nil {
		return fmt.Errorf("failed to set balance for account %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", userID)
	}
	return nil
}

// SetLastWagerTime persists the cooldown marker for the account
func (r *AccountRepository) SetLastWagerTime(ctx context.Context, userID int64, t time.Time) error {
	query := `
		UPDATE accounts
		SET last_wager_time = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.q.Exec(ctx, query, userID, t)
	if err != nil {
		return fmt.Errorf("failed to set last wager time for account %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", userID)
	}
	return nil
}

// ListByBalance returns up to limit accounts ordered by balance descending
func (r *AccountRepository) ListByBalance(ctx context.Context, limit int) ([]*models.Account, error) {
	query := `
		SELECT user_id, balance, last_wager_time, created_at, updated_at
		FROM accounts
		ORDER BY balance DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.UserID,
			&account.Balance,
			&account.LastWagerTime,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	return accounts, rows.Err()
}
