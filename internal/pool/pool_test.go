package pool

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/osoko/rosca/internal/models"
)

// fakeStores implements just enough of the storage interfaces for the
// Calculator.
type fakeStores struct {
	group *models.Group
	total int64
	count uint32
}

func (f *fakeStores) NextGroupID(context.Context) (uint64, error) { return 0, nil }
func (f *fakeStores) CreateGroup(context.Context, *models.Group) error {
	return nil
}
func (f *fakeStores) GetGroup(_ context.Context, id uint64) (*models.Group, error) {
	if f.group == nil || f.group.ID != id {
		return nil, models.ErrGroupNotFound
	}
	return f.group, nil
}
func (f *fakeStores) UpdateGroup(context.Context, *models.Group) error { return nil }
func (f *fakeStores) RecordContribution(context.Context, *models.Contribution) error {
	return nil
}
func (f *fakeStores) CycleTotals(context.Context, uint64, uint32) (int64, uint32, error) {
	return f.total, f.count, nil
}

func validInfo() *PoolInfo {
	return &PoolInfo{
		GroupID:              1,
		Cycle:                0,
		MemberCount:          5,
		ContributionAmount:   1_000_000,
		TotalPoolAmount:      5_000_000,
		CurrentContributions: 5_000_000,
		ContributorsCount:    5,
		IsCycleComplete:      true,
	}
}

func TestPoolInfo(t *testing.T) {
	group := models.NewGroup(1, "creator", 1_000_000, 604800, 3, 2, 0)
	stores := &fakeStores{group: group, total: 2_000_000, count: 2}

	info, err := NewCalculator(stores, stores).PoolInfo(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("PoolInfo failed: %v", err)
	}

	if info.TotalPoolAmount != 3_000_000 {
		t.Errorf("total pool: expected 3000000, got %d", info.TotalPoolAmount)
	}
	if info.CurrentContributions != 2_000_000 {
		t.Errorf("contributions: expected 2000000, got %d", info.CurrentContributions)
	}
	if info.ContributorsCount != 2 {
		t.Errorf("contributors: expected 2, got %d", info.ContributorsCount)
	}
	if info.IsCycleComplete {
		t.Error("cycle should not be complete with 2 of 3 contributions")
	}
}

func TestPoolInfoGroupNotFound(t *testing.T) {
	stores := &fakeStores{}
	_, err := NewCalculator(stores, stores).PoolInfo(context.Background(), 42, 0)
	if !errors.Is(err, models.ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestPoolInfoComplete(t *testing.T) {
	group := models.NewGroup(1, "creator", 1_000_000, 604800, 3, 2, 0)
	stores := &fakeStores{group: group, total: 3_000_000, count: 3}

	info, err := NewCalculator(stores, stores).PoolInfo(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("PoolInfo failed: %v", err)
	}
	if !info.IsCycleComplete {
		t.Error("expected complete cycle")
	}
}

func TestPoolInfoOverflow(t *testing.T) {
	group := models.NewGroup(1, "creator", math.MaxInt64, 604800, 3, 2, 0)
	stores := &fakeStores{group: group}

	_, err := NewCalculator(stores, stores).PoolInfo(context.Background(), 1, 0)
	if !errors.Is(err, models.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestValidateReadyForPayout(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		if err := ValidateReadyForPayout(validInfo()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing contributors", func(t *testing.T) {
		info := validInfo()
		info.ContributorsCount = 4
		info.CurrentContributions = 4_000_000
		err := ValidateReadyForPayout(info)
		if !errors.Is(err, models.ErrCycleNotComplete) {
			t.Errorf("expected ErrCycleNotComplete, got %v", err)
		}
	})

	t.Run("under-collection", func(t *testing.T) {
		info := validInfo()
		info.CurrentContributions = 4_999_999
		err := ValidateReadyForPayout(info)
		if !errors.Is(err, models.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("over-collection", func(t *testing.T) {
		info := validInfo()
		info.CurrentContributions = 5_000_001
		err := ValidateReadyForPayout(info)
		if !errors.Is(err, models.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestPayoutAmount(t *testing.T) {
	tests := []struct {
		name string
		pool int64
		want int64
	}{
		{"typical", 5_000_000, 5_000_000},
		{"zero", 0, 0},
		{"large", 10_000_000_000, 10_000_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PayoutAmount(tt.pool)
			if err != nil {
				t.Fatalf("PayoutAmount failed: %v", err)
			}
			// Fees are zero, so the payout equals the pool.
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCheckedMul(t *testing.T) {
	if _, err := checkedMul(math.MaxInt64, 2); !errors.Is(err, models.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
	got, err := checkedMul(0, math.MaxInt64)
	if err != nil || got != 0 {
		t.Errorf("expected 0, got %d (%v)", got, err)
	}
}
