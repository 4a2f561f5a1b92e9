// Package v1 contains the API types of the lockable resource manager.
// +kubebuilder:object:generate=true
// +groupName=lockableresources.splat.io
package v1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

const (
	APIGroupName = "lockableresources.splat.io"
)

var (
	// GroupVersion is the group version used to register these objects.
	GroupVersion = schema.GroupVersion{Group: APIGroupName, Version: "v1"}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// Install adds the types in this group-version to the given scheme.
	Install = SchemeBuilder.AddToScheme
)

func init() {
	SchemeBuilder.Register(
		&LockableResource{}, &LockableResourceList{},
		&LockRequest{}, &LockRequestList{},
		&ResourceManagerConfig{},
	)
}
