// Package executor implements the payout execution protocol: the
// all-or-nothing sequence that verifies a cycle is payable, identifies and
// validates the recipient, disburses the pool, records the disbursement and
// advances the group lifecycle.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/osoko/rosca/internal/events"
	"github.com/osoko/rosca/internal/models"
	"github.com/osoko/rosca/internal/pool"
	"github.com/osoko/rosca/internal/storage"
)

// CustodyAccount is the treasury account holding a group's pooled funds.
func CustodyAccount(groupID uint64) string {
	return fmt.Sprintf("group:%d:pool", groupID)
}

// Executor orchestrates payout execution. It holds no long-lived group
// state: every attempt re-reads what it needs inside one transaction and
// writes back before returning.
type Executor struct {
	store   storage.Store
	clock   clockwork.Clock
	emitter events.Emitter
	logger  *slog.Logger

	// locks serializes attempts per group. The database transaction already
	// keeps the commit unit atomic; the mutex additionally guarantees that
	// the loser of a same-group race observes the already-paid check rather
	// than a driver-level conflict.
	locks sync.Map // map[uint64]*sync.Mutex
}

// Config carries the Executor's dependencies. Clock and Emitter are
// optional; Logger defaults to slog.Default.
type Config struct {
	Store   storage.Store
	Clock   clockwork.Clock
	Emitter events.Emitter
	Logger  *slog.Logger
}

// New creates an Executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.Discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Executor{
		store:   cfg.Store,
		clock:   cfg.Clock,
		emitter: cfg.Emitter,
		logger:  cfg.Logger,
	}, nil
}

// Result describes what a successful payout attempt did. It is filled
// inside the transaction and returned to the caller, so the caller reports
// the attempt it triggered rather than whatever a later attempt left
// behind.
type Result struct {
	Recipient      string
	Amount         int64
	Cycle          uint32
	Timestamp      int64
	GroupCompleted bool
}

// ExecutePayout runs one payout attempt for the group. Permissionless: any
// caller may invoke it, eligibility is decided entirely by group state.
//
// Validation (load, status, already-paid, pool readiness, recipient
// identity and eligibility, amount, balance) mutates nothing; the commit
// unit (transfer, record, member re-check, cycle advance) runs inside a
// single transaction and rolls back whole on any failure. Notifications are
// emitted after commit and their failure never surfaces.
func (e *Executor) ExecutePayout(ctx context.Context, groupID uint64) (*Result, error) {
	mu := e.groupLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	var res Result
	err := e.store.Tx(ctx, func(tx storage.Store) error {
		return e.executePayoutTx(ctx, tx, groupID, &res)
	})
	if err != nil {
		e.logger.WarnContext(ctx, "payout attempt failed", "group_id", groupID, "error", err)
		return nil, err
	}

	e.logger.InfoContext(ctx, "payout executed",
		"group_id", groupID,
		"cycle", res.Cycle,
		"recipient", res.Recipient,
		"amount", res.Amount,
		"group_completed", res.GroupCompleted,
	)

	// Best-effort notifications; failures stay inside the emitter.
	e.emitter.Emit(ctx, events.Event{
		Type:      events.TypePayoutExecuted,
		GroupID:   groupID,
		Cycle:     res.Cycle,
		Member:    res.Recipient,
		Amount:    res.Amount,
		Timestamp: res.Timestamp,
	})
	if res.GroupCompleted {
		e.emitter.Emit(ctx, events.Event{
			Type:      events.TypeGroupCompleted,
			GroupID:   groupID,
			Timestamp: res.Timestamp,
		})
	}
	return &res, nil
}

func (e *Executor) executePayoutTx(ctx context.Context, tx storage.Store, groupID uint64, res *Result) error {
	// Step 1: load the group.
	group, err := tx.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	// Step 2: only Active groups pay out.
	if group.Status != models.StatusActive {
		return fmt.Errorf("%w: group %d is %s", models.ErrInvalidState, groupID, group.Status)
	}

	// Step 3: reject a cycle that is already paid. A second invocation for
	// the same cycle fails here deterministically.
	cycle := group.CurrentCycle
	paid, err := tx.HasPayout(ctx, groupID, cycle)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInternal, err)
	}
	if paid {
		return fmt.Errorf("%w: cycle %d of group %d already paid", models.ErrInvalidState, cycle, groupID)
	}

	// Step 4: the cycle must be fully collected.
	calc := pool.NewCalculator(tx, tx)
	info, err := calc.PoolInfo(ctx, groupID, cycle)
	if err != nil {
		return err
	}
	if err := pool.ValidateReadyForPayout(info); err != nil {
		return err
	}

	// Step 5: identify the recipient by payout position.
	recipient, err := identifyRecipient(ctx, tx, group, cycle)
	if err != nil {
		return err
	}

	// Step 6: verify eligibility.
	if err := verifyEligibility(ctx, tx, groupID, recipient, cycle); err != nil {
		return err
	}

	// Step 7: compute the net payout.
	amount, err := pool.PayoutAmount(info.TotalPoolAmount)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: computed payout %d", models.ErrInvalidAmount, amount)
	}

	// Step 8: the custodial balance must cover the payout. The transfer
	// itself re-verifies this; the pre-check keeps the failure in the
	// validation phase where possible.
	custody := CustodyAccount(groupID)
	balance, err := tx.Balance(ctx, custody)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInternal, err)
	}
	if balance < amount {
		return fmt.Errorf("%w: custody holds %d, payout needs %d", models.ErrPayoutFailed, balance, amount)
	}

	// Commit phase. Everything above is pure validation; everything below
	// mutates and rolls back together.

	// Step 9: disburse.
	if err := tx.Transfer(ctx, custody, recipient, amount); err != nil {
		return err
	}

	// Step 10: record the disbursement and the recipient index.
	timestamp := e.clock.Now().Unix()
	record := models.NewPayoutRecord(recipient, groupID, cycle, amount, timestamp)
	if err := tx.RecordPayout(ctx, record); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInternal, err)
	}

	// Step 11: the recipient's profile must still exist. It was read during
	// validation, so a miss here is a consistency failure.
	if _, err := tx.GetMember(ctx, groupID, recipient); err != nil {
		return fmt.Errorf("%w: recipient profile vanished: %v", models.ErrInternal, err)
	}

	// Step 13: advance the cycle, completing the group on the last one.
	// (Step 12, notification, runs outside the transaction.)
	completed := group.AdvanceCycle()
	if err := tx.UpdateGroup(ctx, group); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInternal, err)
	}

	*res = Result{
		Recipient:      recipient,
		Amount:         amount,
		Cycle:          cycle,
		Timestamp:      timestamp,
		GroupCompleted: completed,
	}
	return nil
}

// identifyRecipient scans every member profile for the one whose payout
// position matches the cycle. Zero or multiple matches is a data-integrity
// violation, never resolved by picking one.
func identifyRecipient(ctx context.Context, tx storage.Store, group *models.Group, cycle uint32) (string, error) {
	profiles, err := tx.ListMembers(ctx, group.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInternal, err)
	}
	if uint32(len(profiles)) != group.MemberCount {
		return "", fmt.Errorf("%w: group %d has %d profiles, expected %d",
			models.ErrInvalidState, group.ID, len(profiles), group.MemberCount)
	}

	var recipient string
	matches := 0
	for _, p := range profiles {
		if p.PayoutPosition == cycle {
			recipient = p.Member
			matches++
		}
	}
	switch matches {
	case 0:
		return "", fmt.Errorf("%w: no member holds payout position %d in group %d",
			models.ErrInvalidState, cycle, group.ID)
	case 1:
		return recipient, nil
	default:
		return "", fmt.Errorf("%w: %d members hold payout position %d in group %d",
			models.ErrInvalidState, matches, cycle, group.ID)
	}
}

// verifyEligibility checks the recipient is still enrolled and has not been
// paid in any cycle up to and including the current one. The history scan
// is the sole mechanism preventing a double payout to one member even if
// the position-uniqueness invariant were ever violated.
func verifyEligibility(ctx context.Context, tx storage.Store, groupID uint64, recipient string, cycle uint32) error {
	if _, err := tx.GetMember(ctx, groupID, recipient); err != nil {
		return err
	}

	for c := uint32(0); c <= cycle; c++ {
		past, err := tx.PayoutRecipient(ctx, groupID, c)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrInternal, err)
		}
		if past == recipient {
			return fmt.Errorf("%w: %s already paid in cycle %d of group %d",
				models.ErrInvalidRecipient, recipient, c, groupID)
		}
	}
	return nil
}

func (e *Executor) groupLock(groupID uint64) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(groupID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
