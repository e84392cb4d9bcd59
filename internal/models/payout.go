package models

import "fmt"

// PayoutRecord is an immutable record of one completed disbursement.
// Created exactly once per (group, cycle) after a successful transfer;
// never updated or deleted.
type PayoutRecord struct {
	// Recipient is the user ID the pool was disbursed to.
	Recipient string

	GroupID uint64
	Cycle   uint32

	// Amount is the disbursed amount in minor units. Always positive.
	Amount int64

	// Timestamp is the Unix timestamp of the disbursement.
	Timestamp int64
}

// NewPayoutRecord constructs a payout record.
//
// Amount must be positive: the executor validates the payout amount before
// the transfer, so a non-positive amount here is a programming-contract
// violation and panics.
func NewPayoutRecord(recipient string, groupID uint64, cycle uint32, amount, timestamp int64) *PayoutRecord {
	if amount <= 0 {
		panic(fmt.Sprintf("payout record amount must be greater than 0, got %d", amount))
	}
	return &PayoutRecord{
		Recipient: recipient,
		GroupID:   groupID,
		Cycle:     cycle,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// Validate reports whether the record satisfies its invariants.
func (r *PayoutRecord) Validate() bool {
	return r.Amount > 0 && r.Recipient != ""
}
