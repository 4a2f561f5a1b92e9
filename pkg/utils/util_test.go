package utils

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

func TestGenerateEnvVars(t *testing.T) {
	tests := []struct {
		name        string
		variable    string
		resources   []string
		expected    string
		expectedErr bool
	}{
		{
			name:      "no variable",
			resources: []string{"rig1"},
			expected:  "",
		},
		{
			name:      "single resource",
			variable:  "RIG",
			resources: []string{"rig1"},
			expected:  "export RIG=\"rig1\"\nexport RIG0=\"rig1\"\n",
		},
		{
			name:      "multiple resources",
			variable:  " RIGS ",
			resources: []string{"rig1", "rig2"},
			expected:  "export RIGS=\"rig1,rig2\"\nexport RIGS0=\"rig1\"\nexport RIGS1=\"rig2\"\n",
		},
		{
			name:        "invalid variable",
			variable:    "1RIG; rm",
			resources:   []string{"rig1"},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &v1.LockRequest{Spec: v1.LockRequestSpec{Variable: tt.variable}}
			err := GenerateEnvVars(request, tt.resources)
			if tt.expectedErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if request.Status.EnvVars != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, request.Status.EnvVars)
			}
		})
	}
}

func TestProjectAndBuildRef(t *testing.T) {
	request := &v1.LockRequest{
		ObjectMeta: metav1.ObjectMeta{Namespace: "ci", Name: "build-1"},
	}
	if got := Project(request); got != "ci" {
		t.Errorf("expected the namespace as project, got %s", got)
	}
	request.Spec.Project = "payload"
	if got := Project(request); got != "payload" {
		t.Errorf("expected the explicit project, got %s", got)
	}
	if got := BuildRef(request); got != "ci/build-1" {
		t.Errorf("unexpected build reference %s", got)
	}
	if got := NamespaceBuildPrefix("ci"); got != "ci/" {
		t.Errorf("unexpected prefix %s", got)
	}
}

func TestQueueItemID(t *testing.T) {
	first := QueueItemID(types.UID("6f1c2a4e-0000-4000-8000-000000000001"))
	if first <= 0 {
		t.Errorf("expected a positive id, got %d", first)
	}
	if again := QueueItemID(types.UID("6f1c2a4e-0000-4000-8000-000000000001")); again != first {
		t.Errorf("expected a stable id, got %d and %d", first, again)
	}
	if other := QueueItemID(types.UID("6f1c2a4e-0000-4000-8000-000000000002")); other == first {
		t.Errorf("expected different ids for different objects")
	}
	if empty := QueueItemID(""); empty == v1.NotQueued {
		t.Errorf("expected a non-zero id for an empty uid")
	}
}
