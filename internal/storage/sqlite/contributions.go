package sqlite

import (
	"context"
	"fmt"

	"github.com/osoko/rosca/internal/models"
)

// RecordContribution persists one contribution. The (group, cycle, member)
// primary key turns a double contribution into a constraint violation.
func (s *SQLiteStore) RecordContribution(ctx context.Context, c *models.Contribution) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO contributions (group_id, cycle, member, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		c.GroupID, c.Cycle, c.Member, c.Amount, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s in group %d cycle %d", models.ErrDuplicateContribution, c.Member, c.GroupID, c.Cycle)
		}
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}

// CycleTotals returns the contribution sum and contributor count for a
// group cycle.
func (s *SQLiteStore) CycleTotals(ctx context.Context, groupID uint64, cycle uint32) (int64, uint32, error) {
	var total int64
	var count uint32
	err := s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM contributions WHERE group_id = ? AND cycle = ?",
		groupID, cycle,
	).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate contributions: %w", err)
	}
	return total, count, nil
}
