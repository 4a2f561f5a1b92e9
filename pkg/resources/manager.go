package resources

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

const (
	defaultRequirementCacheSize = 256
)

var (
	// ErrResourceNotFound is returned when an operation names a resource that is not configured.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrMalformedRequirement is returned for requirement declarations that cannot be parsed.
	ErrMalformedRequirement = errors.New("malformed requirement")
	// ErrBuildRequired is returned when locking without a build reference.
	ErrBuildRequired = errors.New("a build reference is required")
	// ErrUserRequired is returned when reserving without a user.
	ErrUserRequired = errors.New("a user is required")
)

// Store persists the configuration state of a Manager.
type Store interface {
	Load(ctx context.Context) (*v1.ResourceManagerConfig, error)
	Save(ctx context.Context, config *v1.ResourceManagerConfig) error
}

// QueueItem identifies one pending admission attempt of a project.
type QueueItem struct {
	ID      int64
	Project string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for occupancy timestamps and queue expiry.
func WithClock(c clock.PassiveClock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLogger sets the logger used when the context does not carry one.
func WithLogger(logger logr.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRandSource sets the source used by the random selection strategy.
func WithRandSource(src rand.Source) Option {
	return func(m *Manager) {
		m.rand = rand.New(src)
	}
}

// WithRequirementCacheSize sets the size of the resolved requirement cache. A size
// of 0 disables caching.
func WithRequirementCacheSize(size int) Option {
	return func(m *Manager) {
		m.cacheSize = size
	}
}

// WithQueueTimeout releases queued resources whose queue item has not locked them
// within the timeout. 0 keeps queued resources until they are locked or unqueued.
func WithQueueTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.queueTimeout = timeout
	}
}

// Manager owns the lockable resources and arbitrates access to them. All
// mutations are serialized by a single lock.
type Manager struct {
	mu sync.RWMutex

	store  Store
	clock  clock.PassiveClock
	logger logr.Logger
	rand   *rand.Rand

	name                string
	resources           []*v1.LockableResource
	loadBalancingLabels []string
	useResourcesEvenly  bool
	strategy            selectionStrategy
	index               *index

	cacheSize    int
	requirements *requirementCache
	queueTimeout time.Duration

	lastQueueItemID atomic.Int64
}

// NewManager returns a Manager without resources. Call Load to read the
// configuration from the store. A nil store keeps the state in memory only.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		clock:     clock.RealClock{},
		logger:    ctrl.Log.WithName("resources"),
		cacheSize: defaultRequirementCacheSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rand == nil {
		m.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m.requirements = newRequirementCache(m.cacheSize)
	m.strategy = newSelectionStrategy(v1.RESOURCE_SELECTION_POLICY_FIRST, m.rand)
	m.index = buildIndex(nil, nil)
	return m
}

// NextQueueItemID returns a new queue item id for callers without their own id source.
func (m *Manager) NextQueueItemID() int64 {
	return m.lastQueueItemID.Add(1)
}

// Lock attaches the build to every named resource. It returns false without
// mutating anything if any of the resources is reserved or locked.
func (m *Manager) Lock(ctx context.Context, names []string, build string) (bool, error) {
	if len(build) == 0 {
		return false, ErrBuildRequired
	}
	logger := m.loggerFor(ctx).WithValues("build", build)

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	targets, err := m.lookupLocked(names)
	if err != nil {
		return false, err
	}
	for _, r := range targets {
		if r.IsReserved() || r.IsLocked() {
			logger.V(1).Info("unable to lock resources", "resource", r.Name, "reservedBy", r.Status.ReservedBy, "lockedBy", r.Status.LockedBy)
			return false, nil
		}
	}

	now := m.now()
	for _, r := range targets {
		setLocked(r, build, now)
	}
	logger.Info("locked resources", "resources", v1.LockableResources(targets).Names())
	return true, nil
}

// Unlock releases the named resources held by build. An empty build releases
// every named resource regardless of its holder.
func (m *Manager) Unlock(ctx context.Context, names []string, build string) error {
	logger := m.loggerFor(ctx).WithValues("build", build)

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	targets, err := m.lookupLocked(names)
	if err != nil {
		return err
	}
	var released []string
	for _, r := range targets {
		if len(build) > 0 && r.Status.LockedBy != build {
			continue
		}
		unlock(r)
		released = append(released, r.Name)
	}
	logger.Info("unlocked resources", "resources", released)
	return nil
}

// Reserve reserves every named resource for user. It returns false without
// mutating anything if any of the resources is reserved, locked or queued. The
// reservation is persisted; if saving fails it is rolled back and false is
// returned with the error.
func (m *Manager) Reserve(ctx context.Context, names []string, user string) (bool, error) {
	if len(user) == 0 {
		return false, ErrUserRequired
	}
	logger := m.loggerFor(ctx).WithValues("user", user)

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	m.expireQueueEntriesLocked(logger)

	targets, err := m.lookupLocked(names)
	if err != nil {
		return false, err
	}
	for _, r := range targets {
		if !r.IsFree() {
			logger.V(1).Info("unable to reserve resources", "resource", r.Name)
			return false, nil
		}
	}

	now := m.now()
	for _, r := range targets {
		reserve(r, user, now)
	}
	if err := m.saveLocked(ctx); err != nil {
		for _, r := range targets {
			unreserve(r)
		}
		return false, err
	}
	logger.Info("reserved resources", "resources", v1.LockableResources(targets).Names())
	return true, nil
}

// Unreserve clears the reservation of every named resource and persists.
func (m *Manager) Unreserve(ctx context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	targets, err := m.lookupLocked(names)
	if err != nil {
		return err
	}
	for _, r := range targets {
		unreserve(r)
	}
	m.loggerFor(ctx).Info("unreserved resources", "resources", v1.LockableResources(targets).Names())
	return m.saveLocked(ctx)
}

// Reset clears the queue, reservation and lock of every named resource and persists.
func (m *Manager) Reset(ctx context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.recordUsageLocked()

	targets, err := m.lookupLocked(names)
	if err != nil {
		return err
	}
	for _, r := range targets {
		reset(r)
	}
	m.loggerFor(ctx).Info("reset resources", "resources", v1.LockableResources(targets).Names())
	return m.saveLocked(ctx)
}

// lookupLocked maps names to live resources. Duplicate names are collapsed.
func (m *Manager) lookupLocked(names []string) ([]*v1.LockableResource, error) {
	targets := make([]*v1.LockableResource, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		r, ok := m.index.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
		}
		targets = append(targets, r)
	}
	return targets, nil
}

func (m *Manager) loggerFor(ctx context.Context) logr.Logger {
	if logger, err := logr.FromContext(ctx); err == nil {
		return logger
	}
	return m.logger
}

func (m *Manager) now() metav1.Time {
	return metav1.NewTime(m.clock.Now())
}
