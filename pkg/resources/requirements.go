package resources

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// RequirementSpec is a requirement as declared by a pipeline.
type RequirementSpec struct {
	// Names is a whitespace separated list of resource names and labels.
	Names string
	// Variable receives the selected resource names in the caller's environment.
	Variable string
	// Count is the number of resources required. 0 requires every candidate.
	Count int
}

// ParseRequirement builds a RequirementSpec from its textual form. An empty
// count requires every candidate.
func ParseRequirement(names, variable, count string) (RequirementSpec, error) {
	spec := RequirementSpec{
		Names:    names,
		Variable: variable,
	}
	count = strings.TrimSpace(count)
	if len(count) > 0 {
		n, err := strconv.Atoi(count)
		if err != nil {
			return RequirementSpec{}, fmt.Errorf("%w: invalid count %q: %v", ErrMalformedRequirement, count, err)
		}
		spec.Count = n
	}
	if spec.Count < 0 {
		return RequirementSpec{}, fmt.Errorf("%w: count must not be negative, got %d", ErrMalformedRequirement, spec.Count)
	}
	return spec.normalize(), nil
}

func (s RequirementSpec) normalize() RequirementSpec {
	return RequirementSpec{
		Names:    strings.Join(strings.Fields(s.Names), " "),
		Variable: strings.TrimSpace(s.Variable),
		Count:    s.Count,
	}
}

// Requirement is a RequirementSpec resolved against the configured resources.
type Requirement struct {
	// Resources are the candidate resource names in first-seen order.
	Resources []string
	Names     string
	Variable  string
	Count     int
}

func (r *Requirement) String() string {
	return fmt.Sprintf("required resources: %v, variable: %q, count: %d", r.Resources, r.Variable, r.Count)
}

// Resolve expands spec into its candidate resources. Resolved candidates are
// cached until the configuration changes.
func (m *Manager) Resolve(spec RequirementSpec) (*Requirement, error) {
	if spec.Count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative, got %d", ErrMalformedRequirement, spec.Count)
	}
	spec = spec.normalize()

	m.mu.RLock()
	defer m.mu.RUnlock()

	names, ok := m.requirements.get(spec)
	if !ok {
		names = m.index.resolve(spec.Names)
		m.requirements.add(spec, names)
	}
	return &Requirement{
		Resources: append([]string(nil), names...),
		Names:     spec.Names,
		Variable:  spec.Variable,
		Count:     spec.Count,
	}, nil
}

type requirementCache struct {
	cache *lru.Cache
}

func newRequirementCache(size int) *requirementCache {
	if size <= 0 {
		return &requirementCache{}
	}
	cache, err := lru.New(size)
	if err != nil {
		panic(fmt.Sprintf("unable to create requirement cache: %v", err))
	}
	return &requirementCache{cache: cache}
}

func (c *requirementCache) get(spec RequirementSpec) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(spec)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

func (c *requirementCache) add(spec RequirementSpec, names []string) {
	if c.cache == nil {
		return
	}
	c.cache.Add(spec, append([]string(nil), names...))
}

func (c *requirementCache) purge() {
	if c.cache == nil {
		return
	}
	c.cache.Purge()
}

func (c *requirementCache) len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
