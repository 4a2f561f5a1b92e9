package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	LockableResourceKind = "LockableResource"

	// NotQueued is the queue item id of a resource that is not queued.
	NotQueued int64 = 0
)

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// LockableResource is a single named, labeled unit (a test rig, a license, an
// environment) that pipelines lock exclusively.
// +k8s:openapi-gen=true
// +kubebuilder:object:root=true
// +kubebuilder:scope=Cluster
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Labels",type=string,JSONPath=`.spec.labels`
// +kubebuilder:printcolumn:name="Locked-By",type=string,JSONPath=`.status.lockedBy`
// +kubebuilder:printcolumn:name="Reserved-By",type=string,JSONPath=`.status.reservedBy`
type LockableResource struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec LockableResourceSpec `json:"spec"`
	// +optional
	Status LockableResourceStatus `json:"status,omitempty"`
}

// LockableResourceSpec defines the specification for a lockable resource
type LockableResourceSpec struct {
	// Description is free text shown to operators.
	// +optional
	Description string `json:"description,omitempty"`
	// Labels are used both to select the resource from a requirement and to
	// place it into a load-balancing group.
	// +optional
	Labels []string `json:"labels,omitempty"`
}

// LockableResourceStatus defines the occupancy of a lockable resource
type LockableResourceStatus struct {
	// QueueItemID is the id of the queue item which tentatively selected this resource.
	// +optional
	QueueItemID int64 `json:"queueItemId,omitempty"`
	// QueueItemProject is the project owning the queue item.
	// +optional
	QueueItemProject string `json:"queueItemProject,omitempty"`
	// QueuedAt is the time the resource was queued.
	// +optional
	QueuedAt *metav1.Time `json:"queuedAt,omitempty"`

	// ReservedBy is the user holding an administrative reservation.
	// +optional
	ReservedBy string `json:"reservedBy,omitempty"`
	// +optional
	ReservedAt *metav1.Time `json:"reservedAt,omitempty"`

	// LockedBy is the build reference currently holding the resource.
	// +optional
	LockedBy string `json:"lockedBy,omitempty"`
	// +optional
	LockedAt *metav1.Time `json:"lockedAt,omitempty"`
}

// IsQueued returns true if any queue item has tentatively selected the resource.
func (r *LockableResource) IsQueued() bool {
	return r.Status.QueueItemID != NotQueued
}

// IsQueuedBy returns true if the resource is queued by the given queue item.
func (r *LockableResource) IsQueuedBy(queueItemID int64) bool {
	return r.IsQueued() && r.Status.QueueItemID == queueItemID
}

// IsReserved returns true if an operator reserved the resource.
func (r *LockableResource) IsReserved() bool {
	return len(r.Status.ReservedBy) > 0
}

// IsLocked returns true if a build holds the resource.
func (r *LockableResource) IsLocked() bool {
	return len(r.Status.LockedBy) > 0
}

// IsFree returns true if the resource is neither queued, reserved nor locked.
func (r *LockableResource) IsFree() bool {
	return !r.IsQueued() && !r.IsReserved() && !r.IsLocked()
}

// HasLabel returns true if the resource carries the label.
func (r *LockableResource) HasLabel(label string) bool {
	for _, l := range r.Spec.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// LockableResourceList is a list of lockable resources
type LockableResourceList struct {
	metav1.TypeMeta `json:",inline"`
	// +optional
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []LockableResource `json:"items"`
}

type LockableResources []*LockableResource

// Names returns the names of the resources in order.
func (l LockableResources) Names() []string {
	names := make([]string, 0, len(l))
	for _, r := range l {
		names = append(names, r.Name)
	}
	return names
}
