package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/osoko/rosca/internal/models"
)

// RecordPayout writes the full payout record and the recipient index.
// Both inserts run on the same querier, so inside a transaction they commit
// or roll back together.
func (s *SQLiteStore) RecordPayout(ctx context.Context, record *models.PayoutRecord) error {
	if !record.Validate() {
		return fmt.Errorf("%w: payout record failed validation", models.ErrInternal)
	}

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO payouts (group_id, cycle, recipient, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		record.GroupID, record.Cycle, record.Recipient, record.Amount, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payout record: %w", err)
	}

	_, err = s.q.ExecContext(ctx,
		"INSERT INTO payout_recipients (group_id, cycle, recipient) VALUES (?, ?, ?)",
		record.GroupID, record.Cycle, record.Recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payout recipient index: %w", err)
	}
	return nil
}

// HasPayout reports whether a payout exists for (group, cycle).
func (s *SQLiteStore) HasPayout(ctx context.Context, groupID uint64, cycle uint32) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx,
		"SELECT 1 FROM payout_recipients WHERE group_id = ? AND cycle = ?",
		groupID, cycle,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check payout existence: %w", err)
	}
	return true, nil
}

// PayoutRecipient returns the recorded recipient for (group, cycle), or ""
// if no payout exists.
func (s *SQLiteStore) PayoutRecipient(ctx context.Context, groupID uint64, cycle uint32) (string, error) {
	var recipient string
	err := s.q.QueryRowContext(ctx,
		"SELECT recipient FROM payout_recipients WHERE group_id = ? AND cycle = ?",
		groupID, cycle,
	).Scan(&recipient)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get payout recipient: %w", err)
	}
	return recipient, nil
}

// GetPayout retrieves the full record for (group, cycle).
func (s *SQLiteStore) GetPayout(ctx context.Context, groupID uint64, cycle uint32) (*models.PayoutRecord, bool, error) {
	record := &models.PayoutRecord{}
	err := s.q.QueryRowContext(ctx,
		"SELECT group_id, cycle, recipient, amount, created_at FROM payouts WHERE group_id = ? AND cycle = ?",
		groupID, cycle,
	).Scan(&record.GroupID, &record.Cycle, &record.Recipient, &record.Amount, &record.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get payout record: %w", err)
	}
	return record, true, nil
}
