package models

import "fmt"

// GroupStatus is the lifecycle state of a group.
type GroupStatus string

const (
	// StatusForming means the group is still enrolling members. No
	// contributions or payouts are accepted.
	StatusForming GroupStatus = "forming"

	// StatusActive means the group is running cycles: accepting
	// contributions and eligible for payouts.
	StatusActive GroupStatus = "active"

	// StatusCompleted is terminal: every member has received a payout and
	// the group never mutates again.
	StatusCompleted GroupStatus = "completed"
)

// Group represents one rotating savings group.
//
// Configuration fields are immutable after creation. CurrentCycle, Status
// and IsActive are owned by the state machine: only AdvanceCycle and the
// enrollment flow may change them.
type Group struct {
	// ID is assigned from a monotonic counter at creation. Never zero,
	// never reused.
	ID uint64

	// Creator is the user ID of the member who created the group.
	Creator string

	// ContributionAmount is the fixed amount each member pays per cycle,
	// in minor units.
	ContributionAmount int64

	// CycleIntervalSecs is the nominal length of one cycle in seconds.
	CycleIntervalSecs int64

	// MemberCount is the fixed number of members (and therefore cycles).
	MemberCount uint32

	// MinMembers is the minimum viable member count.
	MinMembers uint32

	// CurrentCycle is the 0-based cycle currently collecting contributions.
	// Never exceeds MemberCount; equality means the group is Completed.
	CurrentCycle uint32

	Status   GroupStatus
	IsActive bool

	// CreatedAt is the Unix timestamp of group creation.
	CreatedAt int64
}

// NewGroup creates a group in the Forming state with cycle 0.
func NewGroup(id uint64, creator string, contributionAmount, cycleIntervalSecs int64, memberCount, minMembers uint32, createdAt int64) *Group {
	return &Group{
		ID:                 id,
		Creator:            creator,
		ContributionAmount: contributionAmount,
		CycleIntervalSecs:  cycleIntervalSecs,
		MemberCount:        memberCount,
		MinMembers:         minMembers,
		CurrentCycle:       0,
		Status:             StatusForming,
		IsActive:           false,
		CreatedAt:          createdAt,
	}
}

// Validate checks the immutable configuration.
func (g *Group) Validate() error {
	if g.ContributionAmount <= 0 {
		return fmt.Errorf("%w: contribution amount must be positive", ErrInvalidAmount)
	}
	if g.MemberCount < 2 {
		return fmt.Errorf("%w: member count must be at least 2", ErrInvalidState)
	}
	if g.MinMembers < 2 || g.MinMembers > g.MemberCount {
		return fmt.Errorf("%w: min members must be in [2, member count]", ErrInvalidState)
	}
	if g.CycleIntervalSecs <= 0 {
		return fmt.Errorf("%w: cycle interval must be positive", ErrInvalidState)
	}
	return nil
}

// IsComplete reports whether every cycle has been paid out.
func (g *Group) IsComplete() bool {
	return g.CurrentCycle >= g.MemberCount
}

// Activate transitions a fully enrolled group from Forming to Active.
func (g *Group) Activate() error {
	if g.Status != StatusForming {
		return fmt.Errorf("%w: cannot activate group in status %q", ErrInvalidState, g.Status)
	}
	g.Status = StatusActive
	g.IsActive = true
	return nil
}

// AdvanceCycle increments CurrentCycle by exactly one. If the new value
// reaches MemberCount the group transitions to Completed and is permanently
// deactivated; the return value reports that transition so the caller can
// emit the completion event.
//
// Calling AdvanceCycle on a Completed group panics: the payout executor
// checks status before invoking it, so reaching this state means an
// invariant broke elsewhere.
func (g *Group) AdvanceCycle() (completed bool) {
	if g.Status == StatusCompleted || g.IsComplete() {
		panic(fmt.Sprintf("group %d is already complete", g.ID))
	}
	g.CurrentCycle++
	if g.IsComplete() {
		g.Status = StatusCompleted
		g.IsActive = false
		return true
	}
	return false
}
