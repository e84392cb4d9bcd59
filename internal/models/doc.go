// Package models defines the core domain models for the ROSCA service.
//
// # Models
//
//   - Group: A rotating savings group with a fixed member count, a fixed
//     per-cycle contribution, and a lifecycle (Forming -> Active -> Completed)
//   - MemberProfile: One member's enrollment in a group, carrying the payout
//     position that decides which cycle pays them
//   - Contribution: One member's payment into a cycle's pool
//   - PayoutRecord: An immutable record of a completed disbursement
//   - User: A registered account; user IDs double as member identities
//
// # Design Principles
//
//  1. Amounts are int64 minor units. Arithmetic on them is checked; overflow
//     surfaces ErrOverflow rather than wrapping.
//  2. Group configuration is immutable after creation. Only CurrentCycle,
//     Status and IsActive ever change, and only through AdvanceCycle or the
//     enrollment flow.
//  3. Constructing a PayoutRecord with a non-positive amount, or advancing a
//     Completed group, means an invariant broke elsewhere in the system.
//     Both panic instead of returning an error.
package models
