package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// ValidateConfiguration checks that resource names are present, unique and
// qualified names, and that labels are usable in a requirement. Resource names
// are exported into shell variables, so anything beyond alphanumerics, '-',
// '_', '.' and a DNS subdomain prefix is rejected.
func ValidateConfiguration(config *v1.ResourceManagerConfig) field.ErrorList {
	var errs field.ErrorList
	specPath := field.NewPath("spec")

	names := sets.New[string]()
	for i, r := range config.Spec.Resources {
		resourcePath := specPath.Child("resources").Index(i)
		namePath := resourcePath.Child("metadata", "name")
		nameErrs := validation.IsQualifiedName(r.Name)
		switch {
		case len(r.Name) == 0:
			errs = append(errs, field.Required(namePath, "resource name is required"))
		case len(nameErrs) > 0:
			errs = append(errs, field.Invalid(namePath, r.Name, strings.Join(nameErrs, "; ")))
		case names.Has(r.Name):
			errs = append(errs, field.Duplicate(namePath, r.Name))
		default:
			names.Insert(r.Name)
		}
		for j, label := range r.Spec.Labels {
			if len(label) == 0 || containsSpace(label) {
				errs = append(errs, field.Invalid(resourcePath.Child("spec", "labels").Index(j), label, "must be non-empty and must not contain whitespace"))
			}
		}
	}

	lbLabels := sets.New[string]()
	for i, label := range config.Spec.LoadBalancingLabels {
		labelPath := specPath.Child("loadBalancingLabels").Index(i)
		switch {
		case len(label) == 0 || containsSpace(label):
			errs = append(errs, field.Invalid(labelPath, label, "must be non-empty and must not contain whitespace"))
		case lbLabels.Has(label):
			errs = append(errs, field.Duplicate(labelPath, label))
		default:
			lbLabels.Insert(label)
		}
	}
	return errs
}

func containsSpace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}

func invalidConfiguration(config *v1.ResourceManagerConfig, errs field.ErrorList) error {
	return apierrors.NewInvalid(schema.GroupKind{Group: v1.APIGroupName, Kind: v1.ResourceManagerConfigKind}, config.Name, errs)
}

// Configure replaces the configured resources and load-balancing settings. The
// occupancy of resources which are configured before and after the change is
// kept. The new configuration is persisted.
func (m *Manager) Configure(ctx context.Context, config *v1.ResourceManagerConfig) error {
	if config == nil {
		return errors.New("configuration is required")
	}
	if errs := ValidateConfiguration(config); len(errs) > 0 {
		return invalidConfiguration(config, errs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	m.applyLocked(config)
	m.loggerFor(ctx).Info("configuration updated", "resources", len(m.resources), "loadBalancingLabels", m.loadBalancingLabels, "policy", m.strategy.policy())
	return m.saveLocked(ctx)
}

// Load reads the configuration from the store and applies it. Occupancy of
// resources which are already known is kept, so Load also serves to pick up
// configuration changed behind the manager's back.
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	config, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	if errs := ValidateConfiguration(config); len(errs) > 0 {
		return invalidConfiguration(config, errs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	m.applyLocked(config)
	m.loggerFor(ctx).Info("configuration loaded", "resources", len(m.resources), "loadBalancingLabels", m.loadBalancingLabels, "policy", m.strategy.policy())
	return nil
}

// applyLocked swaps in the configured resources. A resource known before keeps
// its queue and lock state and takes its reservation from the configuration.
// A new resource keeps the configured lock and reservation, queue state is
// never taken from a configuration.
func (m *Manager) applyLocked(config *v1.ResourceManagerConfig) {
	next := make([]*v1.LockableResource, 0, len(config.Spec.Resources))
	for i := range config.Spec.Resources {
		r := config.Spec.Resources[i].DeepCopy()
		r.TypeMeta.Kind = v1.LockableResourceKind
		r.TypeMeta.APIVersion = v1.GroupVersion.String()

		if live, ok := m.index.byName[r.Name]; ok {
			r.Status.QueueItemID = live.Status.QueueItemID
			r.Status.QueueItemProject = live.Status.QueueItemProject
			r.Status.QueuedAt = live.Status.QueuedAt.DeepCopy()
			r.Status.LockedBy = live.Status.LockedBy
			r.Status.LockedAt = live.Status.LockedAt.DeepCopy()
		} else {
			unqueue(r)
		}
		next = append(next, r)
	}

	m.name = config.Name
	m.resources = next
	m.loadBalancingLabels = append([]string(nil), config.Spec.LoadBalancingLabels...)
	m.useResourcesEvenly = config.Spec.UseResourcesEvenly
	m.strategy = newSelectionStrategy(config.Spec.SelectionPolicy(), m.rand)
	m.rebuildIndexLocked()
}

func (m *Manager) rebuildIndexLocked() {
	m.index = buildIndex(m.resources, m.loadBalancingLabels)
	m.requirements.purge()
}

// configurationLocked returns the persistable configuration. Queue state is
// per process and is not part of it.
func (m *Manager) configurationLocked() *v1.ResourceManagerConfig {
	config := &v1.ResourceManagerConfig{
		Spec: v1.ResourceManagerConfigSpec{
			LoadBalancingLabels: append([]string(nil), m.loadBalancingLabels...),
			UseResourcesEvenly:  m.useResourcesEvenly,
			Resources:           make([]v1.LockableResource, 0, len(m.resources)),
		},
	}
	config.Kind = v1.ResourceManagerConfigKind
	config.APIVersion = v1.GroupVersion.String()
	config.Name = m.name
	for _, r := range m.resources {
		c := r.DeepCopy()
		unqueue(c)
		config.Spec.Resources = append(config.Spec.Resources, *c)
	}
	return config
}

func (m *Manager) saveLocked(ctx context.Context) error {
	defer m.rebuildIndexLocked()
	if m.store == nil {
		return nil
	}
	if err := m.store.Save(ctx, m.configurationLocked()); err != nil {
		return fmt.Errorf("unable to save configuration: %w", err)
	}
	return nil
}
