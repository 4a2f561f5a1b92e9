package controller

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/openshift-splat-team/lockable-resource-manager/pkg/resources"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/utils"
)

// NamespaceReconciler releases the resources held by lock requests of a namespace
// which is being deleted.
type NamespaceReconciler struct {
	client.Client
	Scheme     *runtime.Scheme
	Recorder   record.EventRecorder
	RESTMapper meta.RESTMapper

	Manager *resources.Manager
}

func (l *NamespaceReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := ctrl.NewControllerManagedBy(mgr).
		For(&corev1.Namespace{}).
		Complete(l); err != nil {
		return fmt.Errorf("error setting up controller: %w", err)
	}

	// Set up API helpers from the manager.
	l.Client = mgr.GetClient()
	l.Scheme = mgr.GetScheme()
	l.Recorder = mgr.GetEventRecorderFor("namespaces-controller")
	l.RESTMapper = mgr.GetRESTMapper()

	return nil
}

func (l *NamespaceReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx, "namespace", req.Name)
	ctx = log.IntoContext(ctx, logger)
	logger.V(1).Info("Reconciling namespace")
	defer logger.V(1).Info("Finished reconciling namespace")

	ns := &corev1.Namespace{}
	if err := l.Get(ctx, client.ObjectKey{Name: req.Name}, ns); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	if ns.DeletionTimestamp == nil {
		return ctrl.Result{}, nil
	}

	prefix := utils.NamespaceBuildPrefix(ns.Name)
	builds := map[string][]string{}
	for _, r := range l.Manager.Resources() {
		if r.IsLocked() && strings.HasPrefix(r.Status.LockedBy, prefix) {
			builds[r.Status.LockedBy] = append(builds[r.Status.LockedBy], r.Name)
		}
	}
	for build, names := range builds {
		logger.Info("build is referenced by deleted namespace, unlocking its resources", "build", build, "resources", names)
		if err := l.Manager.Unlock(ctx, names, build); err != nil {
			return ctrl.Result{}, fmt.Errorf("error unlocking resources of %s: %w", build, err)
		}
	}

	items := map[resources.QueueItem]struct{}{}
	for _, r := range l.Manager.ResourcesFromProject(ns.Name) {
		items[resources.QueueItem{ID: r.Status.QueueItemID, Project: r.Status.QueueItemProject}] = struct{}{}
	}
	for item := range items {
		l.Manager.Unqueue(ctx, item)
	}

	return ctrl.Result{}, nil
}
