package resources

import (
	"context"
	"sync"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

type memoryStore struct {
	mu     sync.Mutex
	config *v1.ResourceManagerConfig
	saves  int
	err    error
}

func (s *memoryStore) Load(context.Context) (*v1.ResourceManagerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return &v1.ResourceManagerConfig{}, nil
	}
	return s.config.DeepCopy(), nil
}

func (s *memoryStore) Save(_ context.Context, config *v1.ResourceManagerConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.config = config.DeepCopy()
	return nil
}

func constructTestResource(name string, labels ...string) v1.LockableResource {
	return v1.LockableResource{
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
		Spec: v1.LockableResourceSpec{
			Description: "resource " + name,
			Labels:      labels,
		},
	}
}

func constructTestConfig(loadBalancingLabels []string, resources ...v1.LockableResource) *v1.ResourceManagerConfig {
	return &v1.ResourceManagerConfig{
		ObjectMeta: metav1.ObjectMeta{
			Name: "test",
		},
		Spec: v1.ResourceManagerConfigSpec{
			LoadBalancingLabels: loadBalancingLabels,
			Resources:           resources,
		},
	}
}

func constructTestManager(t *testing.T, config *v1.ResourceManagerConfig, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(nil, opts...)
	if err := m.Configure(context.TODO(), config); err != nil {
		t.Fatalf("unable to configure manager: %v", err)
	}
	return m
}

func mustResolve(t *testing.T, m *Manager, names string, count int) *Requirement {
	t.Helper()
	requirement, err := m.Resolve(RequirementSpec{Names: names, Count: count})
	if err != nil {
		t.Fatalf("unable to resolve %q: %v", names, err)
	}
	return requirement
}

func mustGet(t *testing.T, m *Manager, name string) *v1.LockableResource {
	t.Helper()
	r, ok := m.Get(name)
	if !ok {
		t.Fatalf("resource %s not found", name)
	}
	return r
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
