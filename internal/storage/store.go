// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/osoko/rosca/internal/models"
)

// GroupStore persists group configuration and lifecycle state.
type GroupStore interface {
	// NextGroupID atomically increments and returns the monotonic group id
	// counter. IDs start at 1, are never reused, and exhausting the counter
	// returns models.ErrOverflow.
	NextGroupID(ctx context.Context) (uint64, error)

	// CreateGroup persists a new group. The ID must already be assigned.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by id.
	// Returns models.ErrGroupNotFound if absent.
	GetGroup(ctx context.Context, groupID uint64) (*models.Group, error)

	// UpdateGroup persists the mutable state (cycle, status) of a group.
	// Returns models.ErrGroupNotFound if absent.
	UpdateGroup(ctx context.Context, group *models.Group) error
}

// MemberStore persists member enrollment profiles.
type MemberStore interface {
	// AddMember persists a new member profile.
	AddMember(ctx context.Context, profile *models.MemberProfile) error

	// GetMember retrieves the profile for (group, member).
	// Returns models.ErrNotMember if absent.
	GetMember(ctx context.Context, groupID uint64, member string) (*models.MemberProfile, error)

	// ListMembers returns every profile of the group in join order.
	ListMembers(ctx context.Context, groupID uint64) ([]*models.MemberProfile, error)

	// CountMembers returns the number of enrolled members.
	CountMembers(ctx context.Context, groupID uint64) (uint32, error)
}

// ContributionStore is the per-cycle contribution ledger.
type ContributionStore interface {
	// RecordContribution persists one contribution. A second contribution
	// by the same member for the same cycle returns
	// models.ErrDuplicateContribution.
	RecordContribution(ctx context.Context, c *models.Contribution) error

	// CycleTotals returns the contribution sum and contributor count for a
	// group cycle.
	CycleTotals(ctx context.Context, groupID uint64, cycle uint32) (total int64, count uint32, err error)
}

// PayoutStore is the append-only disbursement ledger. The full record and
// the (group, cycle) -> recipient index are always written together in the
// surrounding transaction.
type PayoutStore interface {
	// RecordPayout writes the full record and the recipient index.
	RecordPayout(ctx context.Context, record *models.PayoutRecord) error

	// HasPayout reports whether a payout exists for (group, cycle), via the
	// recipient index.
	HasPayout(ctx context.Context, groupID uint64, cycle uint32) (bool, error)

	// PayoutRecipient returns the recorded recipient for (group, cycle),
	// or "" if no payout exists.
	PayoutRecipient(ctx context.Context, groupID uint64, cycle uint32) (string, error)

	// GetPayout retrieves the full record for (group, cycle).
	// The second return is false if no payout exists.
	GetPayout(ctx context.Context, groupID uint64, cycle uint32) (*models.PayoutRecord, bool, error)
}

// TreasuryStore is the custodial account ledger: the value-transfer
// primitive the executor calls with validated parameters.
type TreasuryStore interface {
	// Deposit credits an account, creating it at zero if needed.
	Deposit(ctx context.Context, account string, amount int64) error

	// Balance returns an account's balance. Unknown accounts are zero.
	Balance(ctx context.Context, account string) (int64, error)

	// Transfer atomically debits from and credits to. Fails whole with
	// models.ErrPayoutFailed if the source balance does not cover amount.
	Transfer(ctx context.Context, from, to string, amount int64) error
}

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser persists a new user. Generates ID and CreatedAt if unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is the full persistence surface.
//
// Tx runs fn within a single database transaction: every mutation made
// through the Store passed to fn commits together or not at all. This is
// what gives the payout executor its all-or-nothing commit unit. Nested Tx
// calls are not supported.
type Store interface {
	GroupStore
	MemberStore
	ContributionStore
	PayoutStore
	TreasuryStore
	UserStore

	Tx(ctx context.Context, fn func(tx Store) error) error

	// Close releases any resources held by the store.
	Close() error
}
