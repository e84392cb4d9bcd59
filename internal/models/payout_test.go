package models

import "testing"

func TestNewPayoutRecord(t *testing.T) {
	r := NewPayoutRecord("alice", 1, 0, 3_000_000, 1234567890)

	if r.Recipient != "alice" {
		t.Errorf("recipient: expected alice, got %s", r.Recipient)
	}
	if r.GroupID != 1 || r.Cycle != 0 {
		t.Errorf("unexpected key: group=%d cycle=%d", r.GroupID, r.Cycle)
	}
	if r.Amount != 3_000_000 {
		t.Errorf("amount: expected 3000000, got %d", r.Amount)
	}
	if !r.Validate() {
		t.Error("expected record to validate")
	}
}

func TestNewPayoutRecordZeroAmountPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for zero amount")
		}
	}()
	NewPayoutRecord("alice", 1, 0, 0, 1234567890)
}

func TestNewPayoutRecordNegativeAmountPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for negative amount")
		}
	}()
	NewPayoutRecord("alice", 1, 0, -1, 1234567890)
}

func TestPayoutRecordValidate(t *testing.T) {
	r := &PayoutRecord{Recipient: "", GroupID: 1, Cycle: 0, Amount: 100, Timestamp: 1}
	if r.Validate() {
		t.Error("record with empty recipient should not validate")
	}
}
