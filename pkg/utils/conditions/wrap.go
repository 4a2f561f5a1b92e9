package conditions

import (
	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

type LockRequestWrapper struct {
	*v1.LockRequest
}

func (m *LockRequestWrapper) GetConditions() []v1.Condition {
	return m.Status.Conditions
}

func (m *LockRequestWrapper) SetConditions(conditions []v1.Condition) {
	m.Status.Conditions = conditions
}
