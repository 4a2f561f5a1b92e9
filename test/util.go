package test

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

const (
	configNamespace = "lockable-resources"
	configName      = "config"
)

// getConfig returns a configuration of rigs spread over two sites
func getConfig() *v1.ResourceManagerConfig {
	config := &v1.ResourceManagerConfig{
		ObjectMeta: metav1.ObjectMeta{
			Name: "rigs",
		},
		Spec: v1.ResourceManagerConfigSpec{
			LoadBalancingLabels: []string{"site1", "site2"},
		},
	}
	for idx := 0; idx < 4; idx++ {
		site := fmt.Sprintf("site%d", idx%2+1)
		config.Spec.Resources = append(config.Spec.Resources, v1.LockableResource{
			ObjectMeta: metav1.ObjectMeta{
				Name: fmt.Sprintf("rig-%d", idx),
			},
			Spec: v1.LockableResourceSpec{
				Description: fmt.Sprintf("test rig %d in %s", idx, site),
				Labels:      []string{"rigs", site},
			},
		})
	}
	return config
}

// getLockRequest returns a lock request for count resources matching names
func getLockRequest(namespace, name, names string, count int) *v1.LockRequest {
	return &v1.LockRequest{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			UID:       types.UID(fmt.Sprintf("%s-%s-uid", namespace, name)),
		},
		Spec: v1.LockRequestSpec{
			Resources: names,
			Count:     count,
		},
	}
}
