package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/osoko/rosca/internal/models"
)

// AddMember persists a new member profile.
func (s *SQLiteStore) AddMember(ctx context.Context, profile *models.MemberProfile) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO members (group_id, member, payout_position, joined_at) VALUES (?, ?, ?, ?)",
		profile.GroupID, profile.Member, profile.PayoutPosition, profile.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s in group %d", models.ErrAlreadyMember, profile.Member, profile.GroupID)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves the profile for (group, member).
func (s *SQLiteStore) GetMember(ctx context.Context, groupID uint64, member string) (*models.MemberProfile, error) {
	profile := &models.MemberProfile{}
	err := s.q.QueryRowContext(ctx,
		"SELECT group_id, member, payout_position, joined_at FROM members WHERE group_id = ? AND member = ?",
		groupID, member,
	).Scan(&profile.GroupID, &profile.Member, &profile.PayoutPosition, &profile.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s in group %d", models.ErrNotMember, member, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return profile, nil
}

// ListMembers returns every profile of the group in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID uint64) ([]*models.MemberProfile, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT group_id, member, payout_position, joined_at FROM members WHERE group_id = ? ORDER BY joined_at, member",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var profiles []*models.MemberProfile
	for rows.Next() {
		profile := &models.MemberProfile{}
		if err := rows.Scan(&profile.GroupID, &profile.Member, &profile.PayoutPosition, &profile.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return profiles, nil
}

// CountMembers returns the number of enrolled members.
func (s *SQLiteStore) CountMembers(ctx context.Context, groupID uint64) (uint32, error) {
	var count uint32
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members WHERE group_id = ?", groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
