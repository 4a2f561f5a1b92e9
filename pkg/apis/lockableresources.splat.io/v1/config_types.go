package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	ResourceManagerConfigKind = "ResourceManagerConfig"
)

// SelectionPolicy picks which member of a candidate list is used.
type SelectionPolicy string

const (
	// RESOURCE_SELECTION_POLICY_FIRST always picks the first candidate.
	RESOURCE_SELECTION_POLICY_FIRST = SelectionPolicy("first")
	// RESOURCE_SELECTION_POLICY_RANDOM picks a candidate uniformly at random.
	RESOURCE_SELECTION_POLICY_RANDOM = SelectionPolicy("random")
)

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// ResourceManagerConfig is the persisted configuration state of the manager:
// the resources, the load-balancing labels and the selection policy.
// +kubebuilder:object:root=true
type ResourceManagerConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ResourceManagerConfigSpec `json:"spec"`
}

// ResourceManagerConfigSpec defines the resources and allocation settings
type ResourceManagerConfigSpec struct {
	// LoadBalancingLabels partition resources into usage-tracked groups. A resource
	// belongs to the group of the first label in this list that it carries.
	// +optional
	LoadBalancingLabels []string `json:"loadBalancingLabels,omitempty"`
	// UseResourcesEvenly when true, resources are selected at random rather than
	// in declaration order.
	// +optional
	UseResourcesEvenly bool `json:"useResourcesEvenly,omitempty"`
	// Resources is the ordered list of resources known to the manager.
	// +optional
	Resources []LockableResource `json:"resources,omitempty"`
}

// SelectionPolicy returns the selection policy configured by UseResourcesEvenly.
func (s *ResourceManagerConfigSpec) SelectionPolicy() SelectionPolicy {
	if s.UseResourcesEvenly {
		return RESOURCE_SELECTION_POLICY_RANDOM
	}
	return RESOURCE_SELECTION_POLICY_FIRST
}
