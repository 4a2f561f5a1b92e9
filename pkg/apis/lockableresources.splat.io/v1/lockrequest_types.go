package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	LockRequestKind      = "LockRequest"
	LockRequestFinalizer = "lockableresources.splat.io/lock-request-finalizer"
)

type Phase string

const (
	PHASE_PENDING = Phase("Pending")
	PHASE_LOCKED  = Phase("Locked")
	PHASE_FAILED  = Phase("Failed")
)

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// LockRequest is a pipeline's request for exclusive access to a set of resources.
// +k8s:openapi-gen=true
// +kubebuilder:object:root=true
// +kubebuilder:scope=Namespaced
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Resources",type=string,JSONPath=`.spec.resources`
// +kubebuilder:printcolumn:name="Count",type=integer,JSONPath=`.spec.count`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
type LockRequest struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec LockRequestSpec `json:"spec"`
	// +optional
	Status LockRequestStatus `json:"status"`
}

// LockRequestSpec defines the requirement of a lock request
type LockRequestSpec struct {
	// Resources is a whitespace separated list of resource names and labels.
	Resources string `json:"resources"`
	// Variable is the environment variable that receives the locked resource names.
	// +optional
	Variable string `json:"variable,omitempty"`
	// Count is the number of resources required. 0 means all matching resources.
	// +kubebuilder:validation:Minimum=0
	// +optional
	Count int `json:"count,omitempty"`
	// Project owns the request. Only one request per project is admitted at a time.
	// Defaults to the namespace of the request.
	// +optional
	Project string `json:"project,omitempty"`
}

// LockedResource records a resource held by a request
type LockedResource struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// LockRequestStatus defines the status for a lock request
type LockRequestStatus struct {
	// Phase is the current phase of the request
	// +optional
	Phase Phase `json:"phase,omitempty"`

	// QueueItemID is the queue item id used when queueing resources for this request.
	// +optional
	QueueItemID int64 `json:"queueItemId,omitempty"`

	// Resources are the names of the resources locked for this request.
	// +optional
	Resources []string `json:"resources,omitempty"`

	// LockedResources describes the resources locked for this request.
	// +optional
	LockedResources []LockedResource `json:"lockedResources,omitempty"`

	// EnvVars a freeform string which contains bash which is to be sourced
	// by the holder of the lock.
	// +optional
	EnvVars string `json:"envVars,omitempty"`

	// +optional
	LockedAt *metav1.Time `json:"lockedAt,omitempty"`

	// conditions defines the current state of the request
	// +listType=map
	// +listMapKey=type
	Conditions []Condition `json:"conditions,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type LockRequestList struct {
	metav1.TypeMeta `json:",inline"`
	// +optional
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []LockRequest `json:"items"`
}
