// Package events defines the notification events the service emits and the
// sink they are delivered to.
//
// Delivery is strictly best-effort: an Emitter never returns a result, and
// nothing in the payout protocol's control flow depends on one. A failed or
// slow sink must never fail a payout.
package events

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeGroupCreated         = "group.created"
	TypeMemberJoined         = "group.member_joined"
	TypeGroupActivated       = "group.activated"
	TypeContributionRecorded = "group.contribution_recorded"
	TypePayoutExecuted       = "group.payout_executed"
	TypeGroupCompleted       = "group.completed"
)

// Event is one notification. ID is assigned at emission time.
type Event struct {
	ID        string
	Type      string
	GroupID   uint64
	Cycle     uint32
	Member    string
	Amount    int64
	Timestamp int64
}

// Emitter delivers events. Implementations must be non-blocking from the
// caller's point of view and must swallow their own failures.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// LogEmitter writes events to a structured logger.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter returns an Emitter backed by the given logger, or the
// default logger if nil.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Emit logs the event.
func (e *LogEmitter) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	e.logger.InfoContext(ctx, "event emitted",
		"event_id", event.ID,
		"type", event.Type,
		"group_id", event.GroupID,
		"cycle", event.Cycle,
		"member", event.Member,
		"amount", event.Amount,
		"timestamp", event.Timestamp,
	)
}

// Discard is an Emitter that drops every event.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(context.Context, Event) {}
