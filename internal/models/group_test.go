package models

import "testing"

func newTestGroup(memberCount uint32) *Group {
	return NewGroup(1, "creator", 1_000_000, 604800, memberCount, 2, 1234567890)
}

func TestNewGroup(t *testing.T) {
	g := newTestGroup(3)

	if g.CurrentCycle != 0 {
		t.Errorf("expected cycle 0, got %d", g.CurrentCycle)
	}
	if g.Status != StatusForming {
		t.Errorf("expected forming status, got %s", g.Status)
	}
	if g.IsActive {
		t.Error("new group should not be active")
	}
	if g.IsComplete() {
		t.Error("new group should not be complete")
	}
}

func TestGroupValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Group)
		wantErr bool
	}{
		{"valid", func(*Group) {}, false},
		{"zero contribution", func(g *Group) { g.ContributionAmount = 0 }, true},
		{"negative contribution", func(g *Group) { g.ContributionAmount = -1 }, true},
		{"one member", func(g *Group) { g.MemberCount = 1 }, true},
		{"min members above count", func(g *Group) { g.MinMembers = 5 }, true},
		{"zero interval", func(g *Group) { g.CycleIntervalSecs = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGroup(3)
			tt.mutate(g)
			err := g.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGroupActivate(t *testing.T) {
	g := newTestGroup(3)

	if err := g.Activate(); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if g.Status != StatusActive || !g.IsActive {
		t.Errorf("expected active group, got status=%s is_active=%v", g.Status, g.IsActive)
	}

	// A second activation is invalid.
	if err := g.Activate(); err == nil {
		t.Error("expected error activating an active group")
	}
}

func TestAdvanceCycle(t *testing.T) {
	g := newTestGroup(3)
	if err := g.Activate(); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	// Cycles 0 -> 1 -> 2 stay active.
	for want := uint32(1); want <= 2; want++ {
		completed := g.AdvanceCycle()
		if completed {
			t.Fatalf("group completed early at cycle %d", g.CurrentCycle)
		}
		if g.CurrentCycle != want {
			t.Errorf("expected cycle %d, got %d", want, g.CurrentCycle)
		}
		if g.Status != StatusActive {
			t.Errorf("expected active, got %s", g.Status)
		}
	}

	// The final advance completes the group.
	completed := g.AdvanceCycle()
	if !completed {
		t.Error("expected completion on final advance")
	}
	if g.CurrentCycle != 3 {
		t.Errorf("expected cycle 3, got %d", g.CurrentCycle)
	}
	if g.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", g.Status)
	}
	if g.IsActive {
		t.Error("completed group must not be active")
	}
	if !g.IsComplete() {
		t.Error("expected IsComplete")
	}
}

func TestAdvanceCycleTwoMemberGroup(t *testing.T) {
	g := newTestGroup(2)
	if err := g.Activate(); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if completed := g.AdvanceCycle(); completed {
		t.Error("2-member group completed after one cycle")
	}
	if completed := g.AdvanceCycle(); !completed {
		t.Error("2-member group should complete after two cycles")
	}
}

func TestAdvanceCycleCompletedPanics(t *testing.T) {
	g := newTestGroup(2)
	g.CurrentCycle = 2
	g.Status = StatusCompleted
	g.IsActive = false

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic advancing a completed group")
		}
	}()
	g.AdvanceCycle()
}
