package controller

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/openshift-splat-team/lockable-resource-manager/pkg/resources"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/store"
)

// ConfigReconciler reloads the manager when the configuration ConfigMap changes.
type ConfigReconciler struct {
	client.Client
	Scheme     *runtime.Scheme
	Recorder   record.EventRecorder
	RESTMapper meta.RESTMapper

	Manager *resources.Manager

	// ConfigMap is the ConfigMap holding the configuration.
	ConfigMap types.NamespacedName
}

func (l *ConfigReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := ctrl.NewControllerManagedBy(mgr).
		For(&corev1.ConfigMap{}, builder.WithPredicates(predicate.NewPredicateFuncs(l.isConfigMap))).
		Complete(l); err != nil {
		return fmt.Errorf("error setting up controller: %w", err)
	}

	// Set up API helpers from the manager.
	l.Client = mgr.GetClient()
	l.Scheme = mgr.GetScheme()
	l.Recorder = mgr.GetEventRecorderFor("config-controller")
	l.RESTMapper = mgr.GetRESTMapper()

	return nil
}

func (l *ConfigReconciler) isConfigMap(obj client.Object) bool {
	return obj.GetNamespace() == l.ConfigMap.Namespace && obj.GetName() == l.ConfigMap.Name
}

func (l *ConfigReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx, "namespace", req.Namespace, "name", req.Name)
	ctx = log.IntoContext(ctx, logger)
	logger.V(1).Info("Reconciling configuration")
	defer logger.V(1).Info("Finished reconciling configuration")

	if req.NamespacedName != l.ConfigMap {
		return ctrl.Result{}, nil
	}

	cm := &corev1.ConfigMap{}
	if err := l.Get(ctx, req.NamespacedName, cm); err != nil {
		if !apierrors.IsNotFound(err) {
			return ctrl.Result{}, fmt.Errorf("error getting configuration: %w", err)
		}
		// a missing ConfigMap would drop every resource with its locks
		logger.Info("configuration ConfigMap is gone, keeping the current configuration")
		cm.Namespace, cm.Name = req.Namespace, req.Name
		l.event(cm, "MissingConfiguration", "configuration ConfigMap was deleted, keeping %d resources", len(l.Manager.Resources()))
		return ctrl.Result{}, nil
	}
	if _, ok := cm.Data[store.ConfigMapDataKey]; !ok {
		logger.Info("configuration ConfigMap has no configuration, keeping the current configuration", "key", store.ConfigMapDataKey)
		l.event(cm, "MissingConfiguration", "key %s is missing, keeping the current configuration", store.ConfigMapDataKey)
		return ctrl.Result{}, nil
	}

	err := l.Manager.Load(ctx)
	if apierrors.IsInvalid(err) {
		// retrying does not help until the ConfigMap is fixed
		logger.Error(err, "configuration is invalid, keeping the current configuration")
		l.event(cm, "InvalidConfiguration", "%v", err)
		return ctrl.Result{}, nil
	}
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("error reloading configuration: %w", err)
	}
	return ctrl.Result{}, nil
}

func (l *ConfigReconciler) event(cm *corev1.ConfigMap, reason, messageFormat string, args ...interface{}) {
	if l.Recorder == nil {
		return
	}
	l.Recorder.Eventf(cm, corev1.EventTypeWarning, reason, messageFormat, args...)
}
