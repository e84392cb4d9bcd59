// Package pool computes per-cycle contribution totals and decides whether a
// cycle is ready for payout.
package pool

import (
	"context"
	"fmt"

	"github.com/osoko/rosca/internal/models"
	"github.com/osoko/rosca/internal/storage"
)

// PoolInfo is a derived snapshot of one group cycle. It is computed on
// demand and never stored.
type PoolInfo struct {
	GroupID uint64 `json:"group_id"`
	Cycle   uint32 `json:"cycle"`

	MemberCount        uint32 `json:"member_count"`
	ContributionAmount int64  `json:"contribution_amount"`

	// TotalPoolAmount is ContributionAmount * MemberCount.
	TotalPoolAmount int64 `json:"total_pool_amount"`

	// CurrentContributions is the sum of contributions recorded for the
	// cycle so far.
	CurrentContributions int64 `json:"current_contributions"`

	// ContributorsCount is the number of members who have contributed.
	ContributorsCount uint32 `json:"contributors_count"`

	// IsCycleComplete is true once every member has contributed and the
	// collected total covers the expected pool.
	IsCycleComplete bool `json:"is_cycle_complete"`
}

// Calculator aggregates group configuration and the contribution ledger.
// It is cheap to construct and is typically built per transaction so reads
// observe a consistent snapshot.
type Calculator struct {
	groups        storage.GroupStore
	contributions storage.ContributionStore
}

// NewCalculator returns a Calculator reading through the given stores.
func NewCalculator(groups storage.GroupStore, contributions storage.ContributionStore) *Calculator {
	return &Calculator{groups: groups, contributions: contributions}
}

// PoolInfo computes the pool snapshot for a group cycle.
// Returns ErrGroupNotFound if the group's configuration is missing.
func (c *Calculator) PoolInfo(ctx context.Context, groupID uint64, cycle uint32) (*PoolInfo, error) {
	group, err := c.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	total, count, err := c.contributions.CycleTotals(ctx, groupID, cycle)
	if err != nil {
		return nil, fmt.Errorf("%w: cycle totals: %v", models.ErrInternal, err)
	}

	expected, err := checkedMul(group.ContributionAmount, int64(group.MemberCount))
	if err != nil {
		return nil, err
	}

	return &PoolInfo{
		GroupID:              groupID,
		Cycle:                cycle,
		MemberCount:          group.MemberCount,
		ContributionAmount:   group.ContributionAmount,
		TotalPoolAmount:      expected,
		CurrentContributions: total,
		ContributorsCount:    count,
		IsCycleComplete:      count >= group.MemberCount && total >= expected,
	}, nil
}

// ValidateReadyForPayout decides whether a cycle may be paid out.
//
// Over-collection is rejected as firmly as under-collection: the ledger is
// expected to hold exactly member_count contributions of the configured
// amount, and anything else is a data problem, not a bonus.
func ValidateReadyForPayout(info *PoolInfo) error {
	if info.ContributorsCount < info.MemberCount {
		return fmt.Errorf("%w: %d of %d contributions recorded for group %d cycle %d",
			models.ErrCycleNotComplete, info.ContributorsCount, info.MemberCount, info.GroupID, info.Cycle)
	}
	if info.CurrentContributions != info.TotalPoolAmount {
		return fmt.Errorf("%w: collected %d, expected %d for group %d cycle %d",
			models.ErrInvalidAmount, info.CurrentContributions, info.TotalPoolAmount, info.GroupID, info.Cycle)
	}
	return nil
}

// PayoutAmount computes the net payout from the total pool. The fee is
// currently always zero, so the payout equals the pool; the subtraction is
// still checked so a future fee schedule cannot silently underflow.
func PayoutAmount(totalPool int64) (int64, error) {
	const fee int64 = 0
	return checkedSub(totalPool, fee)
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	res := a * b
	if res/b != a {
		return 0, fmt.Errorf("%w: %d * %d", models.ErrOverflow, a, b)
	}
	return res, nil
}

func checkedSub(a, b int64) (int64, error) {
	res := a - b
	if (b > 0 && res > a) || (b < 0 && res < a) {
		return 0, fmt.Errorf("%w: %d - %d", models.ErrOverflow, a, b)
	}
	return res, nil
}
