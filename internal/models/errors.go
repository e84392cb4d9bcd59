package models

import "errors"

// Domain errors returned by the payout protocol and its collaborators.
// Callers classify failures with errors.Is; components wrap these with
// context via fmt.Errorf("...: %w", err).
var (
	// ErrGroupNotFound means the referenced group id has no configuration.
	ErrGroupNotFound = errors.New("group not found")

	// ErrInvalidState means the group is not Active, the cycle is already
	// paid, or a data-integrity check failed (zero or multiple members
	// holding the current payout position).
	ErrInvalidState = errors.New("invalid group state")

	// ErrCycleNotComplete means fewer contributors than members for the
	// current cycle.
	ErrCycleNotComplete = errors.New("cycle not complete")

	// ErrInvalidAmount means the contribution total does not match the
	// expected pool, or a computed payout is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotMember means the identified recipient is not (or no longer) an
	// enrolled member of the group.
	ErrNotMember = errors.New("not a group member")

	// ErrInvalidRecipient means the recipient already received a payout in a
	// prior cycle of this group.
	ErrInvalidRecipient = errors.New("recipient already paid")

	// ErrPayoutFailed means the custodial balance does not cover the payout
	// or the transfer itself failed.
	ErrPayoutFailed = errors.New("payout failed")

	// ErrInternal means a storage or consistency failure after validation
	// passed.
	ErrInternal = errors.New("internal error")

	// ErrOverflow means an arithmetic overflow in an amount or counter
	// computation.
	ErrOverflow = errors.New("arithmetic overflow")
)

// Enrollment and contribution errors.
var (
	ErrAlreadyMember         = errors.New("already a group member")
	ErrGroupFull             = errors.New("group is full")
	ErrDuplicateContribution = errors.New("already contributed this cycle")
)
