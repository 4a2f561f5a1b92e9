package v1

import (
	"testing"
)

func TestLockableResourceState(t *testing.T) {
	tests := []struct {
		name     string
		status   LockableResourceStatus
		free     bool
		queued   bool
		reserved bool
		locked   bool
	}{
		{
			name: "free resource",
			free: true,
		},
		{
			name:   "queued resource",
			status: LockableResourceStatus{QueueItemID: 7, QueueItemProject: "project-a"},
			queued: true,
		},
		{
			name:     "reserved resource",
			status:   LockableResourceStatus{ReservedBy: "operator"},
			reserved: true,
		},
		{
			name:   "locked resource",
			status: LockableResourceStatus{LockedBy: "ci/build-1"},
			locked: true,
		},
		{
			name:   "queued while transitioning to locked",
			status: LockableResourceStatus{QueueItemID: 3, QueueItemProject: "project-a", LockedBy: "ci/build-1"},
			queued: true,
			locked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &LockableResource{Status: tt.status}
			if r.IsFree() != tt.free {
				t.Errorf("IsFree() = %v, expected %v", r.IsFree(), tt.free)
			}
			if r.IsQueued() != tt.queued {
				t.Errorf("IsQueued() = %v, expected %v", r.IsQueued(), tt.queued)
			}
			if r.IsReserved() != tt.reserved {
				t.Errorf("IsReserved() = %v, expected %v", r.IsReserved(), tt.reserved)
			}
			if r.IsLocked() != tt.locked {
				t.Errorf("IsLocked() = %v, expected %v", r.IsLocked(), tt.locked)
			}
		})
	}
}

func TestIsQueuedBy(t *testing.T) {
	r := &LockableResource{Status: LockableResourceStatus{QueueItemID: 42, QueueItemProject: "project-a"}}
	if !r.IsQueuedBy(42) {
		t.Errorf("expected resource to be queued by 42")
	}
	if r.IsQueuedBy(43) {
		t.Errorf("expected resource not to be queued by 43")
	}

	free := &LockableResource{}
	if free.IsQueuedBy(NotQueued) {
		t.Errorf("a free resource must not report being queued by the zero id")
	}
}

func TestHasLabel(t *testing.T) {
	r := &LockableResource{Spec: LockableResourceSpec{Labels: []string{"site1", "gpu"}}}
	if !r.HasLabel("gpu") {
		t.Errorf("expected label gpu")
	}
	if r.HasLabel("site2") {
		t.Errorf("did not expect label site2")
	}
}

func TestSelectionPolicy(t *testing.T) {
	spec := ResourceManagerConfigSpec{}
	if spec.SelectionPolicy() != RESOURCE_SELECTION_POLICY_FIRST {
		t.Errorf("expected first policy by default, got %s", spec.SelectionPolicy())
	}
	spec.UseResourcesEvenly = true
	if spec.SelectionPolicy() != RESOURCE_SELECTION_POLICY_RANDOM {
		t.Errorf("expected random policy, got %s", spec.SelectionPolicy())
	}
}
