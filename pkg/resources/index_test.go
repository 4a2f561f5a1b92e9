package resources

import (
	"context"
	"testing"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

func TestBuildIndex(t *testing.T) {
	config := constructTestConfig([]string{"site2", "site1"},
		constructTestResource("r1", "gpu", "site1", "site2"),
		constructTestResource("r2", "site1", "gpu", "gpu"),
		constructTestResource("r3"),
	)
	var resources []*v1.LockableResource
	for i := range config.Spec.Resources {
		resources = append(resources, &config.Spec.Resources[i])
	}

	idx := buildIndex(resources, config.Spec.LoadBalancingLabels)

	if !equalNames(idx.labelNames, []string{"gpu", "site1", "site2"}) {
		t.Errorf("expected sorted labels, got %v", idx.labelNames)
	}
	if got := v1.LockableResources(idx.labels["gpu"]).Names(); !equalNames(got, []string{"r1", "r2"}) {
		t.Errorf("expected gpu resources once each in order, got %v", got)
	}

	expectedBuckets := map[string]string{
		"r1": "site2",
		"r2": "site1",
		"r3": defaultBucket,
	}
	for name, bucket := range expectedBuckets {
		if idx.bucketOf[name] != bucket {
			t.Errorf("%s: expected bucket %q, got %q", name, bucket, idx.bucketOf[name])
		}
	}
	if !equalNames(idx.bucketOrder, []string{"site2", "site1", defaultBucket}) {
		t.Errorf("expected configured bucket order with the default bucket last, got %v", idx.bucketOrder)
	}

	// rebuilding is deterministic
	again := buildIndex(resources, config.Spec.LoadBalancingLabels)
	if !equalNames(again.bucketOrder, idx.bucketOrder) || !equalNames(again.labelNames, idx.labelNames) {
		t.Errorf("expected identical indexes")
	}
}

func TestIndexUsagePanicsOnUnknownBucket(t *testing.T) {
	idx := buildIndex(nil, []string{"site1"})
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for an unindexed bucket")
		}
	}()
	idx.usage("site1")
}

func TestQueries(t *testing.T) {
	m := constructTestManager(t, constructTestConfig(nil,
		constructTestResource("r1", "pool", "gpu"),
		constructTestResource("r2", "pool"),
		constructTestResource("r3", "pool"),
	))
	ctx := context.TODO()

	if ok, _ := m.Lock(ctx, []string{"r1"}, "ci/build-1"); !ok {
		t.Fatalf("unable to lock r1")
	}
	if _, admitted := m.Queue(ctx, mustResolve(t, m, "r2", 0), QueueItem{ID: 2, Project: "p"}); !admitted {
		t.Fatalf("expected admission")
	}

	if got := m.FreeResourceAmount("pool"); got != 1 {
		t.Errorf("expected 1 free pool resource, got %d", got)
	}
	if got := m.FreeResourceAmount("unknown"); got != 0 {
		t.Errorf("expected 0 free resources for an unknown label, got %d", got)
	}
	if !equalNames(m.AllLabels(), []string{"gpu", "pool"}) {
		t.Errorf("unexpected labels %v", m.AllLabels())
	}
	if !m.IsValidLabel("gpu") || m.IsValidLabel("r1") {
		t.Errorf("unexpected label validity")
	}
	if got := m.ResourcesWithLabel("pool").Names(); !equalNames(got, []string{"r1", "r2", "r3"}) {
		t.Errorf("unexpected resources with label %v", got)
	}
	if got := m.ResourcesFromProject("p").Names(); !equalNames(got, []string{"r2"}) {
		t.Errorf("unexpected resources from project %v", got)
	}
	if got := m.ResourcesFromBuild("ci/build-1").Names(); !equalNames(got, []string{"r1"}) {
		t.Errorf("unexpected resources from build %v", got)
	}
	if usage := m.LoadBalancingUsage(); len(usage) != 0 {
		t.Errorf("expected no usage without load-balancing labels, got %v", usage)
	}

	// returned resources are copies
	r := mustGet(t, m, "r3")
	r.Status.LockedBy = "mutated"
	if mustGet(t, m, "r3").IsLocked() {
		t.Errorf("mutating a query result changed the manager")
	}
}
