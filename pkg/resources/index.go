package resources

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// defaultBucket groups the resources carrying none of the load-balancing labels.
const defaultBucket = ""

// index is derived from the resource collection and the load-balancing labels.
// It is rebuilt, never patched.
type index struct {
	byName map[string]*v1.LockableResource

	labels     map[string][]*v1.LockableResource
	labelNames []string

	buckets     map[string][]*v1.LockableResource
	bucketOf    map[string]string
	bucketOrder []string
}

func buildIndex(resources []*v1.LockableResource, loadBalancingLabels []string) *index {
	idx := &index{
		byName:   make(map[string]*v1.LockableResource, len(resources)),
		labels:   make(map[string][]*v1.LockableResource),
		buckets:  make(map[string][]*v1.LockableResource),
		bucketOf: make(map[string]string, len(resources)),
	}

	for _, r := range resources {
		idx.byName[r.Name] = r

		seen := sets.New[string]()
		for _, label := range r.Spec.Labels {
			if seen.Has(label) {
				continue
			}
			seen.Insert(label)
			idx.labels[label] = append(idx.labels[label], r)
		}

		bucket := defaultBucket
		for _, label := range loadBalancingLabels {
			if r.HasLabel(label) {
				bucket = label
				break
			}
		}
		idx.buckets[bucket] = append(idx.buckets[bucket], r)
		idx.bucketOf[r.Name] = bucket
	}
	idx.labelNames = sets.List(sets.KeySet(idx.labels))

	for _, label := range loadBalancingLabels {
		if _, ok := idx.buckets[label]; ok {
			idx.bucketOrder = append(idx.bucketOrder, label)
		}
	}
	if _, ok := idx.buckets[defaultBucket]; ok {
		idx.bucketOrder = append(idx.bucketOrder, defaultBucket)
	}
	return idx
}

// resolve expands whitespace separated resource names and labels into resource
// names. A token naming a resource selects it, any other token selects every
// resource carrying it as a label.
func (idx *index) resolve(names string) []string {
	var resolved []string
	seen := sets.New[string]()
	add := func(r *v1.LockableResource) {
		if seen.Has(r.Name) {
			return
		}
		seen.Insert(r.Name)
		resolved = append(resolved, r.Name)
	}

	for _, token := range strings.Fields(names) {
		if r, ok := idx.byName[token]; ok {
			add(r)
			continue
		}
		for _, r := range idx.labels[token] {
			add(r)
		}
	}
	return resolved
}

// usage returns the share of resources in the bucket that are not free.
func (idx *index) usage(bucket string) float64 {
	members, ok := idx.buckets[bucket]
	if !ok || len(members) == 0 {
		panic(fmt.Sprintf("load-balancing bucket %q is not indexed", bucket))
	}
	var used int
	for _, r := range members {
		if !r.IsFree() {
			used++
		}
	}
	return float64(used) / float64(len(members))
}

func (idx *index) bucket(r *v1.LockableResource) string {
	bucket, ok := idx.bucketOf[r.Name]
	if !ok {
		panic(fmt.Sprintf("resource %q has no load-balancing bucket", r.Name))
	}
	return bucket
}

func (idx *index) freeCount(label string) int {
	var free int
	for _, r := range idx.labels[label] {
		if r.IsFree() {
			free++
		}
	}
	return free
}
