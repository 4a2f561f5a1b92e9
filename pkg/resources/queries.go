package resources

import (
	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// Queries take the read lock and return copies. The live state may change as
// soon as they return.

// Get returns the resource with the given name.
func (m *Manager) Get(name string) (*v1.LockableResource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.index.byName[name]
	if !ok {
		return nil, false
	}
	return r.DeepCopy(), true
}

// Resources returns all resources in configuration order.
func (m *Manager) Resources() v1.LockableResources {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return v1.LockableResources(m.resources).DeepCopy()
}

// ResourcesWithLabel returns the resources carrying the label.
func (m *Manager) ResourcesWithLabel(label string) v1.LockableResources {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return v1.LockableResources(m.index.labels[label]).DeepCopy()
}

// ResourcesFromProject returns the resources queued for the project.
func (m *Manager) ResourcesFromProject(project string) v1.LockableResources {
	return m.filter(func(r *v1.LockableResource) bool {
		return r.IsQueued() && r.Status.QueueItemProject == project
	})
}

// ResourcesFromBuild returns the resources locked by the build.
func (m *Manager) ResourcesFromBuild(build string) v1.LockableResources {
	return m.filter(func(r *v1.LockableResource) bool {
		return r.IsLocked() && r.Status.LockedBy == build
	})
}

func (m *Manager) filter(match func(r *v1.LockableResource) bool) v1.LockableResources {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches v1.LockableResources
	for _, r := range m.resources {
		if match(r) {
			matches = append(matches, r.DeepCopy())
		}
	}
	return matches
}

// FreeResourceAmount returns the number of free resources carrying the label.
func (m *Manager) FreeResourceAmount(label string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.index.freeCount(label)
}

// AllLabels returns every label carried by a resource, sorted.
func (m *Manager) AllLabels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.index.labelNames...)
}

// IsValidLabel returns true if at least one resource carries the label.
func (m *Manager) IsValidLabel(label string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.index.labels[label]
	return ok
}

// LoadBalancingLabels returns the configured load-balancing labels in order.
func (m *Manager) LoadBalancingLabels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.loadBalancingLabels...)
}

// UseResourcesEvenly reports whether resources are picked at random.
func (m *Manager) UseResourcesEvenly() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.useResourcesEvenly
}

// LoadBalancingUsage returns the usage ratio of every load-balancing group. The
// group of resources carrying no load-balancing label is keyed by "".
func (m *Manager) LoadBalancingUsage() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	usage := make(map[string]float64, len(m.index.bucketOrder))
	if len(m.loadBalancingLabels) == 0 {
		return usage
	}
	for _, bucket := range m.index.bucketOrder {
		usage[bucket] = m.index.usage(bucket)
	}
	return usage
}

// Configuration returns the persistable configuration.
func (m *Manager) Configuration() *v1.ResourceManagerConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.configurationLocked()
}
