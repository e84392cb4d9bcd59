package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/osoko/rosca/internal/models"
)

// Deposit credits an account, creating it at zero if needed.
func (s *SQLiteStore) Deposit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit must be positive, got %d", models.ErrInvalidAmount, amount)
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO accounts (account, balance) VALUES (?, ?)
		 ON CONFLICT(account) DO UPDATE SET balance = balance + excluded.balance`,
		account, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	return nil
}

// Balance returns an account's balance. Unknown accounts are zero.
func (s *SQLiteStore) Balance(ctx context.Context, account string) (int64, error) {
	var balance int64
	err := s.q.QueryRowContext(ctx,
		"SELECT balance FROM accounts WHERE account = ?", account,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Transfer debits from and credits to. The debit statement's balance guard
// makes an insufficient balance fail with zero rows affected rather than a
// negative balance, and the surrounding transaction keeps the two legs
// atomic.
func (s *SQLiteStore) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive, got %d", models.ErrPayoutFailed, amount)
	}

	res, err := s.q.ExecContext(ctx,
		"UPDATE accounts SET balance = balance - ? WHERE account = ? AND balance >= ?",
		amount, from, amount,
	)
	if err != nil {
		return fmt.Errorf("%w: debit: %v", models.ErrPayoutFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check debit result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: insufficient balance in %s for %d", models.ErrPayoutFailed, from, amount)
	}

	_, err = s.q.ExecContext(ctx,
		`INSERT INTO accounts (account, balance) VALUES (?, ?)
		 ON CONFLICT(account) DO UPDATE SET balance = balance + excluded.balance`,
		to, amount,
	)
	if err != nil {
		return fmt.Errorf("%w: credit: %v", models.ErrPayoutFailed, err)
	}
	return nil
}
