package resources

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// setQueued queues the resource for the item. Polling again refreshes QueuedAt.
func setQueued(r *v1.LockableResource, item QueueItem, now metav1.Time) {
	r.Status.QueueItemID = item.ID
	r.Status.QueueItemProject = item.Project
	r.Status.QueuedAt = &now
}

func unqueue(r *v1.LockableResource) {
	r.Status.QueueItemID = v1.NotQueued
	r.Status.QueueItemProject = ""
	r.Status.QueuedAt = nil
}

func setLocked(r *v1.LockableResource, build string, now metav1.Time) {
	unqueue(r)
	r.Status.LockedBy = build
	r.Status.LockedAt = &now
}

func unlock(r *v1.LockableResource) {
	unqueue(r)
	r.Status.LockedBy = ""
	r.Status.LockedAt = nil
}

func reserve(r *v1.LockableResource, user string, now metav1.Time) {
	r.Status.ReservedBy = user
	r.Status.ReservedAt = &now
}

func unreserve(r *v1.LockableResource) {
	r.Status.ReservedBy = ""
	r.Status.ReservedAt = nil
}

func reset(r *v1.LockableResource) {
	unqueue(r)
	unreserve(r)
	r.Status.LockedBy = ""
	r.Status.LockedAt = nil
}
