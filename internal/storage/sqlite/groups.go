package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/osoko/rosca/internal/models"
)

const groupIDCounter = "group_id"

// NextGroupID atomically increments the group id counter and returns the
// new value. The counter starts at 0, so the first group id is 1.
func (s *SQLiteStore) NextGroupID(ctx context.Context) (uint64, error) {
	var current int64
	err := s.q.QueryRowContext(ctx,
		"SELECT value FROM counters WHERE name = ?", groupIDCounter,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		current = 0
	} else if err != nil {
		return 0, fmt.Errorf("failed to read group id counter: %w", err)
	}

	if current == math.MaxInt64 {
		return 0, fmt.Errorf("%w: group id counter exhausted", models.ErrOverflow)
	}
	next := current + 1

	_, err = s.q.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		groupIDCounter, next,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update group id counter: %w", err)
	}
	return uint64(next), nil
}

// CreateGroup persists a new group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO groups
		 (id, creator, contribution_amount, cycle_interval_secs, member_count, min_members, current_cycle, status, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Creator, group.ContributionAmount, group.CycleIntervalSecs,
		group.MemberCount, group.MinMembers, group.CurrentCycle, string(group.Status),
		group.IsActive, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by id.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID uint64) (*models.Group, error) {
	group := &models.Group{}
	var status string
	err := s.q.QueryRowContext(ctx,
		`SELECT id, creator, contribution_amount, cycle_interval_secs, member_count, min_members, current_cycle, status, is_active, created_at
		 FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Creator, &group.ContributionAmount, &group.CycleIntervalSecs,
		&group.MemberCount, &group.MinMembers, &group.CurrentCycle, &status,
		&group.IsActive, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", models.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Status = models.GroupStatus(status)
	return group, nil
}

// UpdateGroup persists the mutable state of a group.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE groups SET current_cycle = ?, status = ?, is_active = ? WHERE id = ?",
		group.CurrentCycle, string(group.Status), group.IsActive, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", models.ErrGroupNotFound, group.ID)
	}
	return nil
}
