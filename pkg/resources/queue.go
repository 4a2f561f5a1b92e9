package resources

import (
	"context"
	"slices"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/sets"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

const (
	admissionAdmitted   = "admitted"
	admissionBailedOut  = "bailed_out"
	admissionRolledBack = "rolled_back"
)

// selection is an insertion ordered set of resources.
type selection struct {
	items []*v1.LockableResource
	names sets.Set[string]
}

func newSelection() *selection {
	return &selection{names: sets.New[string]()}
}

func (s *selection) add(r *v1.LockableResource) {
	if s.names.Has(r.Name) {
		return
	}
	s.names.Insert(r.Name)
	s.items = append(s.items, r)
}

func (s *selection) len() int {
	return len(s.items)
}

// Queue tries to admit the requirement for the queue item. When admitted, the
// selected resources are queued for the item and their names are returned
// sorted. When not admitted, the caller is expected to poll again later.
//
// Only one queue item per project is admitted at a time: as long as another
// item of the project has resources queued, the request is not admitted.
func (m *Manager) Queue(ctx context.Context, requirement *Requirement, item QueueItem) ([]string, bool) {
	logger := m.loggerFor(ctx).WithValues("project", item.Project, "queueItem", item.ID)
	if item.ID == v1.NotQueued {
		logger.Info("refusing to queue resources without a queue item id")
		return nil, false
	}
	if requirement == nil {
		requirement = &Requirement{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	m.expireQueueEntriesLocked(logger)
	now := m.now()

	selected := newSelection()
	for _, r := range m.resources {
		if r.Status.QueueItemProject != item.Project || !r.IsQueued() {
			continue
		}
		if !r.IsQueuedBy(item.ID) {
			logger.V(1).Info("project has another queue item waiting for resources", "resource", r.Name, "otherQueueItem", r.Status.QueueItemID)
			admissionsTotal.WithLabelValues(admissionBailedOut).Inc()
			return nil, false
		}
		selected.add(r)
	}

	candidates := m.candidatesLocked(requirement, logger)
	target := requirement.Count
	if target == 0 {
		target = len(candidates)
	}

	switch {
	case selected.len() >= target:
		logger.V(1).Info("resources already queued", "resources", selected.names.UnsortedList())
	case target < len(candidates):
		var available []*v1.LockableResource
		for _, r := range candidates {
			if r.IsFree() {
				available = append(available, r)
			}
		}
		if len(m.loadBalancingLabels) > 0 {
			m.selectBalancedLocked(available, selected, target, item, now)
		} else {
			for selected.len() < target && len(available) > 0 {
				i := m.strategy.pick(available)
				selected.add(available[i])
				available = slices.Delete(available, i, i+1)
			}
		}
	default:
		for _, r := range candidates {
			selected.add(r)
		}
	}

	if selected.len() != target {
		var released []string
		for _, r := range m.resources {
			if r.IsQueued() && r.Status.QueueItemProject == item.Project {
				unqueue(r)
				released = append(released, r.Name)
			}
		}
		logger.V(1).Info("not enough resources available", "requirement", requirement.String(), "selected", selected.len(), "target", target, "released", released)
		admissionsTotal.WithLabelValues(admissionRolledBack).Inc()
		return nil, false
	}

	for _, r := range selected.items {
		setQueued(r, item, now)
	}
	names := sets.List(selected.names)
	logger.Info("queued resources", "resources", names)
	admissionsTotal.WithLabelValues(admissionAdmitted).Inc()
	return names, true
}

// selectBalancedLocked fills the selection from the load-balancing group with
// the lowest usage ratio, one resource at a time. Picked resources are queued
// immediately so that the next usage computation accounts for them.
func (m *Manager) selectBalancedLocked(available []*v1.LockableResource, selected *selection, target int, item QueueItem, now metav1.Time) {
	groups := make(map[string][]*v1.LockableResource)
	for _, r := range available {
		bucket := m.index.bucket(r)
		groups[bucket] = append(groups[bucket], r)
	}

	for selected.len() < target {
		lowest := 2.0
		lowestBucket := defaultBucket
		found := false
		for _, bucket := range m.index.bucketOrder {
			if len(groups[bucket]) == 0 {
				continue
			}
			if usage := m.index.usage(bucket); usage < lowest {
				lowest = usage
				lowestBucket = bucket
				found = true
			}
		}
		if !found {
			return
		}

		group := groups[lowestBucket]
		i := m.strategy.pick(group)
		r := group[i]
		groups[lowestBucket] = slices.Delete(group, i, i+1)
		selected.add(r)
		setQueued(r, item, now)
	}
}

// candidatesLocked maps the requirement to live resources. Names that are no
// longer configured are skipped.
func (m *Manager) candidatesLocked(requirement *Requirement, logger logr.Logger) []*v1.LockableResource {
	candidates := make([]*v1.LockableResource, 0, len(requirement.Resources))
	for _, name := range requirement.Resources {
		r, ok := m.index.byName[name]
		if !ok {
			logger.V(1).Info("skipping resource which is no longer configured", "resource", name)
			continue
		}
		candidates = append(candidates, r)
	}
	return candidates
}

// Unqueue releases the resources queued by the queue item and returns their names.
func (m *Manager) Unqueue(ctx context.Context, item QueueItem) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	var released []string
	for _, r := range m.resources {
		if r.Status.QueueItemProject == item.Project && r.IsQueuedBy(item.ID) {
			unqueue(r)
			released = append(released, r.Name)
		}
	}
	if len(released) > 0 {
		m.loggerFor(ctx).Info("unqueued resources", "project", item.Project, "queueItem", item.ID, "resources", released)
	}
	return released
}

// expireQueueEntriesLocked releases resources which stayed queued longer than
// the queue timeout.
func (m *Manager) expireQueueEntriesLocked(logger logr.Logger) {
	if m.queueTimeout <= 0 {
		return
	}
	for _, r := range m.resources {
		if !r.IsQueued() || r.Status.QueuedAt == nil {
			continue
		}
		if m.clock.Since(r.Status.QueuedAt.Time) > m.queueTimeout {
			logger.Info("queue entry expired", "resource", r.Name, "expiredProject", r.Status.QueueItemProject, "expiredQueueItem", r.Status.QueueItemID)
			unqueue(r)
		}
	}
}
