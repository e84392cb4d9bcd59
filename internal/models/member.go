package models

// MemberProfile records one member's enrollment in a group.
// There is exactly one profile per (group, member) pair.
type MemberProfile struct {
	// GroupID is the group this profile belongs to.
	GroupID uint64

	// Member is the user ID of the enrolled member.
	Member string

	// PayoutPosition is the cycle index at which this member receives the
	// pool. Assigned at enrollment (join order) and never changed. Exactly
	// one member holds each position in [0, MemberCount); the executor
	// re-verifies this at payout time rather than trusting enrollment.
	PayoutPosition uint32

	// JoinedAt is the Unix timestamp of enrollment.
	JoinedAt int64
}

// Contribution is one member's payment into a cycle's pool.
type Contribution struct {
	GroupID uint64
	Cycle   uint32
	Member  string
	Amount  int64

	// CreatedAt is the Unix timestamp the contribution was recorded.
	CreatedAt int64
}
