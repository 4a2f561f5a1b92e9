package resources

import (
	"math/rand"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// selectionStrategy picks the member of a non-empty candidate list to use next.
type selectionStrategy interface {
	pick(candidates []*v1.LockableResource) int
	policy() v1.SelectionPolicy
}

type firstAvailable struct{}

func (firstAvailable) pick([]*v1.LockableResource) int {
	return 0
}

func (firstAvailable) policy() v1.SelectionPolicy {
	return v1.RESOURCE_SELECTION_POLICY_FIRST
}

// randomSelection is only used while holding the manager lock, rand.Rand is not
// safe for concurrent use.
type randomSelection struct {
	rand *rand.Rand
}

func (s randomSelection) pick(candidates []*v1.LockableResource) int {
	return s.rand.Intn(len(candidates))
}

func (randomSelection) policy() v1.SelectionPolicy {
	return v1.RESOURCE_SELECTION_POLICY_RANDOM
}

func newSelectionStrategy(policy v1.SelectionPolicy, rnd *rand.Rand) selectionStrategy {
	switch policy {
	case v1.RESOURCE_SELECTION_POLICY_RANDOM:
		return randomSelection{rand: rnd}
	default:
		return firstAvailable{}
	}
}
