package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/resources"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/utils"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/utils/conditions"
)

const DefaultPollInterval = 10 * time.Second

type LockRequestReconciler struct {
	client.Client
	Scheme     *runtime.Scheme
	Recorder   record.EventRecorder
	RESTMapper meta.RESTMapper

	// Manager arbitrates the resources requested by lock requests.
	Manager *resources.Manager

	// PollInterval is the delay before a request which was not admitted is queued again.
	PollInterval time.Duration
}

func (l *LockRequestReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := ctrl.NewControllerManagedBy(mgr).
		For(&v1.LockRequest{}).
		Complete(l); err != nil {
		return fmt.Errorf("error setting up controller: %w", err)
	}

	// Set up API helpers from the manager.
	l.Client = mgr.GetClient()
	l.Scheme = mgr.GetScheme()
	l.Recorder = mgr.GetEventRecorderFor("lock-requests-controller")
	l.RESTMapper = mgr.GetRESTMapper()

	return nil
}

func (l *LockRequestReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx, "namespace", req.Namespace, "name", req.Name)
	ctx = log.IntoContext(ctx, logger)
	logger.V(1).Info("Reconciling lock request")
	defer logger.V(1).Info("Finished reconciling lock request")

	// Fetch the LockRequest instance.
	request := &v1.LockRequest{}
	if err := l.Get(ctx, req.NamespacedName, request); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	item := resources.QueueItem{
		ID:      utils.QueueItemID(request.UID),
		Project: utils.Project(request),
	}
	build := utils.BuildRef(request)

	if request.DeletionTimestamp != nil {
		logger.V(1).Info("Lock request is being deleted")
		return ctrl.Result{}, l.release(ctx, request, item, build)
	}

	if !controllerutil.ContainsFinalizer(request, v1.LockRequestFinalizer) {
		controllerutil.AddFinalizer(request, v1.LockRequestFinalizer)
		if err := l.Update(ctx, request); err != nil {
			return ctrl.Result{}, fmt.Errorf("error adding finalizer: %w", err)
		}
	}

	switch request.Status.Phase {
	case v1.PHASE_FAILED:
		return ctrl.Result{}, nil
	case v1.PHASE_LOCKED:
		return ctrl.Result{}, l.ensureLocked(ctx, request, build)
	}

	// a previous status update may have failed after the resources were locked
	if held := l.Manager.ResourcesFromBuild(build); len(held) > 0 {
		return ctrl.Result{}, l.setLocked(ctx, request, held)
	}

	if err := utils.ValidateVariable(request.Spec.Variable); err != nil {
		return ctrl.Result{}, l.setFailed(ctx, request, err)
	}
	requirement, err := l.Manager.Resolve(resources.RequirementSpec{
		Names:    request.Spec.Resources,
		Variable: request.Spec.Variable,
		Count:    request.Spec.Count,
	})
	if err != nil {
		if errors.Is(err, resources.ErrMalformedRequirement) {
			return ctrl.Result{}, l.setFailed(ctx, request, err)
		}
		return ctrl.Result{}, err
	}

	request.Status.QueueItemID = item.ID
	names, admitted := l.Manager.Queue(ctx, requirement, item)
	if !admitted {
		return l.setWaiting(ctx, request, v1.ReasonNotAdmitted, "waiting for resources, %s", requirement)
	}
	conditions.Set(request, conditions.TrueConditionWithReason(v1.LockRequestConditionTypeQueued, v1.ReasonResourcesQueued, "queued resources %v", names))

	locked, err := l.Manager.Lock(ctx, names, build)
	if err != nil {
		l.Manager.Unqueue(ctx, item)
		return ctrl.Result{}, fmt.Errorf("error locking resources: %w", err)
	}
	if !locked {
		l.Manager.Unqueue(ctx, item)
		return l.setWaiting(ctx, request, v1.ReasonLockRejected, "resources %v are reserved or locked", names)
	}

	return ctrl.Result{}, l.setLocked(ctx, request, l.Manager.ResourcesFromBuild(build))
}

func (l *LockRequestReconciler) pollInterval() time.Duration {
	if l.PollInterval > 0 {
		return l.PollInterval
	}
	return DefaultPollInterval
}

func (l *LockRequestReconciler) setWaiting(ctx context.Context, request *v1.LockRequest, reason string, messageFormat string, messageArgs ...interface{}) (ctrl.Result, error) {
	request.Status.Phase = v1.PHASE_PENDING
	conditions.Set(request, conditions.FalseConditionWithReason(v1.LockRequestConditionTypeQueued, reason, v1.ConditionSeverityInfo, messageFormat, messageArgs...))
	conditions.Set(request, conditions.TrueConditionWithReason(v1.LockRequestConditionTypeWaiting, reason, messageFormat, messageArgs...))
	if err := l.Status().Update(ctx, request); err != nil {
		return ctrl.Result{}, fmt.Errorf("error updating lock request status: %w", err)
	}
	return ctrl.Result{RequeueAfter: l.pollInterval()}, nil
}

func (l *LockRequestReconciler) setLocked(ctx context.Context, request *v1.LockRequest, held v1.LockableResources) error {
	names := held.Names()
	now := metav1.Now()

	request.Status.Phase = v1.PHASE_LOCKED
	request.Status.Resources = names
	request.Status.LockedResources = utils.LockedResources(held)
	request.Status.LockedAt = &now
	if err := utils.GenerateEnvVars(request, names); err != nil {
		return fmt.Errorf("error generating env vars: %w", err)
	}
	conditions.Set(request, conditions.TrueConditionWithReason(v1.LockRequestConditionTypeLocked, v1.ReasonResourcesLocked, "locked resources %v", names))
	conditions.Set(request, conditions.FalseCondition(v1.LockRequestConditionTypeWaiting))

	if err := l.Status().Update(ctx, request); err != nil {
		return fmt.Errorf("error updating lock request status: %w", err)
	}

	LockRequestWaitSeconds.Observe(now.Sub(request.CreationTimestamp.Time).Seconds())
	LockRequestsTotal.WithLabelValues(string(v1.PHASE_LOCKED)).Inc()
	l.event(request, corev1.EventTypeNormal, v1.ReasonResourcesLocked, "locked resources %v", names)
	return nil
}

func (l *LockRequestReconciler) setFailed(ctx context.Context, request *v1.LockRequest, cause error) error {
	log.FromContext(ctx).Info("lock request can not be satisfied", "reason", cause.Error())
	request.Status.Phase = v1.PHASE_FAILED
	conditions.Set(request, conditions.FalseConditionWithReason(v1.LockRequestConditionTypeLocked, v1.ReasonMalformedRequirement, v1.ConditionSeverityError, "%v", cause))
	if err := l.Status().Update(ctx, request); err != nil {
		return fmt.Errorf("error updating lock request status: %w", err)
	}
	LockRequestsTotal.WithLabelValues(string(v1.PHASE_FAILED)).Inc()
	l.event(request, corev1.EventTypeWarning, v1.ReasonMalformedRequirement, "%v", cause)
	return nil
}

// ensureLocked restores the locks of a locked request, which are only kept in
// memory by the manager, e.g. after a restart.
func (l *LockRequestReconciler) ensureLocked(ctx context.Context, request *v1.LockRequest, build string) error {
	held := l.Manager.ResourcesFromBuild(build)
	if len(held) == len(request.Status.Resources) {
		return nil
	}

	logger := log.FromContext(ctx)
	var missing []string
	for _, name := range request.Status.Resources {
		if r, ok := l.Manager.Get(name); !ok || r.Status.LockedBy != build {
			missing = append(missing, name)
		}
	}
	ok, err := l.Manager.Lock(ctx, missing, build)
	if err != nil {
		if errors.Is(err, resources.ErrResourceNotFound) {
			logger.Info("locked resources are no longer configured", "resources", missing)
			return nil
		}
		return err
	}
	if !ok {
		logger.Info("unable to restore locks, resources are held by another build", "resources", missing)
		l.event(request, corev1.EventTypeWarning, v1.ReasonLockRejected, "unable to restore locks on %v", missing)
	}
	return nil
}

func (l *LockRequestReconciler) release(ctx context.Context, request *v1.LockRequest, item resources.QueueItem, build string) error {
	if !controllerutil.ContainsFinalizer(request, v1.LockRequestFinalizer) {
		return nil
	}

	if held := l.Manager.ResourcesFromBuild(build).Names(); len(held) > 0 {
		if err := l.Manager.Unlock(ctx, held, build); err != nil {
			return fmt.Errorf("error unlocking resources: %w", err)
		}
	}
	l.Manager.Unqueue(ctx, item)

	controllerutil.RemoveFinalizer(request, v1.LockRequestFinalizer)
	if err := l.Update(ctx, request); err != nil {
		return fmt.Errorf("error removing finalizer: %w", err)
	}
	return nil
}

func (l *LockRequestReconciler) event(request *v1.LockRequest, eventType, reason, messageFormat string, args ...interface{}) {
	if l.Recorder == nil {
		return
	}
	l.Recorder.Eventf(request, eventType, reason, messageFormat, args...)
}
