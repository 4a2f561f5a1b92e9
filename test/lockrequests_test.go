package test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/controller"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/resources"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/store"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/utils/conditions"
)

var _ = Describe("Lock request management", func() {
	const (
		namespaceName = "ci"
		pollInterval  = 3 * time.Second
	)

	var (
		k8sClient  client.Client
		manager    *resources.Manager
		recorder   *record.FakeRecorder
		reconciler *controller.LockRequestReconciler
	)

	reconcileRequest := func(request *v1.LockRequest) ctrl.Result {
		result, err := reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: client.ObjectKeyFromObject(request)})
		Expect(err).NotTo(HaveOccurred())
		Expect(k8sClient.Get(ctx, client.ObjectKeyFromObject(request), request)).To(Succeed())
		return result
	}

	createRequest := func(request *v1.LockRequest) *v1.LockRequest {
		Expect(k8sClient.Create(ctx, request)).To(Succeed())
		return request
	}

	deleteRequest := func(request *v1.LockRequest) {
		Expect(k8sClient.Delete(ctx, request)).To(Succeed())
		_, err := reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: client.ObjectKeyFromObject(request)})
		Expect(err).NotTo(HaveOccurred())
		err = k8sClient.Get(ctx, client.ObjectKeyFromObject(request), &v1.LockRequest{})
		Expect(apierrors.IsNotFound(err)).To(BeTrue(), "lock request should be gone once its finalizer is removed")
	}

	BeforeEach(func() {
		By("configuring the resource manager")
		k8sClient = fake.NewClientBuilder().
			WithScheme(testScheme).
			WithStatusSubresource(&v1.LockRequest{}).
			Build()

		manager = resources.NewManager(store.NewConfigMapStore(k8sClient, configNamespace, configName))
		Expect(manager.Configure(ctx, getConfig())).To(Succeed())

		recorder = record.NewFakeRecorder(100)
		reconciler = &controller.LockRequestReconciler{
			Client:       k8sClient,
			Scheme:       testScheme,
			Recorder:     recorder,
			Manager:      manager,
			PollInterval: pollInterval,
		}
	})

	It("should lock resources and export them", func() {
		request := getLockRequest(namespaceName, "job-a", "rigs", 2)
		request.Spec.Variable = "RIGS"
		createRequest(request)

		Expect(reconcileRequest(request)).To(Equal(ctrl.Result{}))

		Expect(controllerutil.ContainsFinalizer(request, v1.LockRequestFinalizer)).To(BeTrue())
		Expect(request.Status.Phase).To(Equal(v1.PHASE_LOCKED))
		Expect(request.Status.Resources).To(Equal([]string{"rig-0", "rig-1"}))
		Expect(request.Status.LockedResources).To(ConsistOf(
			v1.LockedResource{Name: "rig-0", Description: "test rig 0 in site1"},
			v1.LockedResource{Name: "rig-1", Description: "test rig 1 in site2"},
		))
		Expect(request.Status.EnvVars).To(ContainSubstring(`export RIGS="rig-0,rig-1"`))
		Expect(request.Status.LockedAt).NotTo(BeNil())
		Expect(conditions.IsTrue(request, v1.LockRequestConditionTypeLocked)).To(BeTrue())
		Expect(conditions.IsTrue(request, v1.LockRequestConditionTypeWaiting)).To(BeFalse())
		Expect(recorder.Events).To(Receive(ContainSubstring(v1.ReasonResourcesLocked)))

		Expect(manager.ResourcesFromBuild("ci/job-a").Names()).To(Equal([]string{"rig-0", "rig-1"}))
		Expect(manager.FreeResourceAmount("rigs")).To(Equal(2))

		By("reconciling a locked request again")
		Expect(reconcileRequest(request)).To(Equal(ctrl.Result{}))
		Expect(manager.ResourcesFromBuild("ci/job-a")).To(HaveLen(2))
	})

	It("should spread requests over the load-balancing groups", func() {
		first := createRequest(getLockRequest(namespaceName, "job-a", "rigs", 1))
		second := createRequest(getLockRequest(namespaceName, "job-b", "rigs", 1))
		second.Spec.Project = "other"
		Expect(k8sClient.Update(ctx, second)).To(Succeed())

		reconcileRequest(first)
		reconcileRequest(second)

		Expect(first.Status.Resources).To(Equal([]string{"rig-0"}))
		Expect(second.Status.Resources).To(Equal([]string{"rig-1"}))
	})

	It("should wait until resources are released", func() {
		first := createRequest(getLockRequest(namespaceName, "job-a", "rigs", 3))
		second := createRequest(getLockRequest(namespaceName, "job-b", "rigs", 2))

		reconcileRequest(first)
		Expect(first.Status.Phase).To(Equal(v1.PHASE_LOCKED))

		By("requeueing a request which is not admitted")
		Expect(reconcileRequest(second)).To(Equal(ctrl.Result{RequeueAfter: pollInterval}))
		Expect(second.Status.Phase).To(Equal(v1.PHASE_PENDING))
		Expect(second.Status.QueueItemID).NotTo(BeZero())
		Expect(conditions.IsTrue(second, v1.LockRequestConditionTypeWaiting)).To(BeTrue())
		Expect(conditions.Get(second, v1.LockRequestConditionTypeQueued).Reason).To(Equal(v1.ReasonNotAdmitted))
		Expect(manager.ResourcesFromProject(namespaceName)).To(BeEmpty())

		By("releasing the resources of the first request")
		deleteRequest(first)
		Expect(manager.ResourcesFromBuild("ci/job-a")).To(BeEmpty())
		Expect(manager.FreeResourceAmount("rigs")).To(Equal(4))

		Expect(reconcileRequest(second)).To(Equal(ctrl.Result{}))
		Expect(second.Status.Phase).To(Equal(v1.PHASE_LOCKED))
		Expect(second.Status.Resources).To(HaveLen(2))
	})

	It("should requeue when the lock is rejected", func() {
		ok, err := manager.Reserve(ctx, []string{"rig-2"}, "operator")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		request := createRequest(getLockRequest(namespaceName, "job-a", "rig-2", 0))
		Expect(reconcileRequest(request)).To(Equal(ctrl.Result{RequeueAfter: pollInterval}))
		Expect(request.Status.Phase).To(Equal(v1.PHASE_PENDING))
		Expect(conditions.Get(request, v1.LockRequestConditionTypeWaiting).Reason).To(Equal(v1.ReasonLockRejected))

		rig, found := manager.Get("rig-2")
		Expect(found).To(BeTrue())
		Expect(rig.IsQueued()).To(BeFalse(), "a rejected lock must not leave the resource queued")

		Expect(manager.Unreserve(ctx, []string{"rig-2"})).To(Succeed())
		reconcileRequest(request)
		Expect(request.Status.Phase).To(Equal(v1.PHASE_LOCKED))
	})

	DescribeTable("should fail malformed requests",
		func(count int, variable string) {
			request := getLockRequest(namespaceName, "job-a", "rigs", count)
			request.Spec.Variable = variable
			createRequest(request)

			Expect(reconcileRequest(request)).To(Equal(ctrl.Result{}))
			Expect(request.Status.Phase).To(Equal(v1.PHASE_FAILED))
			Expect(conditions.Get(request, v1.LockRequestConditionTypeLocked).Reason).To(Equal(v1.ReasonMalformedRequirement))
			Expect(manager.FreeResourceAmount("rigs")).To(Equal(4))

			By("leaving failed requests alone")
			Expect(reconcileRequest(request)).To(Equal(ctrl.Result{}))
			Expect(request.Status.Phase).To(Equal(v1.PHASE_FAILED))
		},
		Entry("negative count", -1, ""),
		Entry("invalid variable", 1, "NOT A VARIABLE"),
	)

	It("should restore locks after a restart", func() {
		request := createRequest(getLockRequest(namespaceName, "job-a", "rig-3", 0))
		reconcileRequest(request)
		Expect(request.Status.Phase).To(Equal(v1.PHASE_LOCKED))

		By("starting a new manager from the persisted configuration")
		manager = resources.NewManager(store.NewConfigMapStore(k8sClient, configNamespace, configName))
		Expect(manager.Load(ctx)).To(Succeed())
		reconciler.Manager = manager
		Expect(manager.ResourcesFromBuild("ci/job-a")).To(BeEmpty())

		reconcileRequest(request)
		Expect(manager.ResourcesFromBuild("ci/job-a").Names()).To(Equal([]string{"rig-3"}))
	})
})

var _ = Describe("Configuration management", func() {
	var (
		k8sClient  client.Client
		manager    *resources.Manager
		recorder   *record.FakeRecorder
		reconciler *controller.ConfigReconciler
		key        = types.NamespacedName{Namespace: configNamespace, Name: configName}
	)

	BeforeEach(func() {
		k8sClient = fake.NewClientBuilder().WithScheme(testScheme).Build()
		configStore := store.NewConfigMapStore(k8sClient, configNamespace, configName)
		configStore.UncachedClient = k8sClient
		manager = resources.NewManager(configStore)
		Expect(manager.Configure(ctx, getConfig())).To(Succeed())

		recorder = record.NewFakeRecorder(10)
		reconciler = &controller.ConfigReconciler{
			Client:    k8sClient,
			Scheme:    testScheme,
			Recorder:  recorder,
			Manager:   manager,
			ConfigMap: key,
		}
	})

	updateConfigMap := func(config *v1.ResourceManagerConfig) {
		data, err := store.Encode(config)
		Expect(err).NotTo(HaveOccurred())
		cm := &corev1.ConfigMap{}
		Expect(k8sClient.Get(ctx, key, cm)).To(Succeed())
		cm.Data[store.ConfigMapDataKey] = string(data)
		Expect(k8sClient.Update(ctx, cm)).To(Succeed())
	}

	It("should reload the configuration and keep locks", func() {
		ok, err := manager.Lock(ctx, []string{"rig-0"}, "ci/job-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		config := getConfig()
		config.Spec.Resources = append(config.Spec.Resources, v1.LockableResource{
			ObjectMeta: metav1.ObjectMeta{Name: "rig-4"},
			Spec:       v1.LockableResourceSpec{Labels: []string{"rigs", "gpu"}},
		})
		updateConfigMap(config)

		_, err = reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		Expect(manager.Resources()).To(HaveLen(5))
		Expect(manager.IsValidLabel("gpu")).To(BeTrue())
		rig, found := manager.Get("rig-0")
		Expect(found).To(BeTrue())
		Expect(rig.Status.LockedBy).To(Equal("ci/job-a"))
	})

	It("should keep the current configuration when the new one is invalid", func() {
		config := getConfig()
		config.Spec.Resources = append(config.Spec.Resources, config.Spec.Resources[0])
		updateConfigMap(config)

		_, err := reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Resources()).To(HaveLen(4))
		Expect(recorder.Events).To(Receive(ContainSubstring("InvalidConfiguration")))
	})

	It("should keep the current configuration when the ConfigMap is deleted", func() {
		ok, err := manager.Lock(ctx, []string{"rig-0"}, "ci/job-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		cm := &corev1.ConfigMap{}
		Expect(k8sClient.Get(ctx, key, cm)).To(Succeed())
		Expect(k8sClient.Delete(ctx, cm)).To(Succeed())

		_, err = reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Resources()).To(HaveLen(4))
		Expect(manager.ResourcesFromBuild("ci/job-a").Names()).To(Equal([]string{"rig-0"}))
		Expect(recorder.Events).To(Receive(ContainSubstring("MissingConfiguration")))
	})

	It("should keep the current configuration when the ConfigMap has no configuration", func() {
		cm := &corev1.ConfigMap{}
		Expect(k8sClient.Get(ctx, key, cm)).To(Succeed())
		delete(cm.Data, store.ConfigMapDataKey)
		Expect(k8sClient.Update(ctx, cm)).To(Succeed())

		_, err := reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Resources()).To(HaveLen(4))
		Expect(recorder.Events).To(Receive(ContainSubstring("MissingConfiguration")))
	})

	It("should ignore other ConfigMaps", func() {
		_, err := reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: configNamespace, Name: "other"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Resources()).To(HaveLen(4))
	})
})

var _ = Describe("Namespace management", func() {
	It("should release resources of builds in a deleted namespace", func() {
		k8sClient := fake.NewClientBuilder().WithScheme(testScheme).Build()
		manager := resources.NewManager(nil)
		Expect(manager.Configure(ctx, getConfig())).To(Succeed())

		ok, err := manager.Lock(ctx, []string{"rig-0", "rig-1"}, "doomed/job-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		ok, err = manager.Lock(ctx, []string{"rig-2"}, "kept/job-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		requirement, err := manager.Resolve(resources.RequirementSpec{Names: "rig-3"})
		Expect(err).NotTo(HaveOccurred())
		_, admitted := manager.Queue(ctx, requirement, resources.QueueItem{ID: 42, Project: "doomed"})
		Expect(admitted).To(BeTrue())

		ns := &corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name:       "doomed",
				Finalizers: []string{"test.splat.io/hold"},
			},
		}
		Expect(k8sClient.Create(ctx, ns)).To(Succeed())

		reconciler := &controller.NamespaceReconciler{
			Client:  k8sClient,
			Scheme:  testScheme,
			Manager: manager,
		}

		By("ignoring a namespace which is not being deleted")
		_, err = reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Name: "doomed"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.ResourcesFromBuild("doomed/job-a")).To(HaveLen(2))

		By("deleting the namespace")
		Expect(k8sClient.Delete(ctx, ns)).To(Succeed())
		_, err = reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Name: "doomed"}})
		Expect(err).NotTo(HaveOccurred())

		Expect(manager.ResourcesFromBuild("doomed/job-a")).To(BeEmpty())
		Expect(manager.ResourcesFromProject("doomed")).To(BeEmpty())
		Expect(manager.ResourcesFromBuild("kept/job-a").Names()).To(Equal([]string{"rig-2"}))
	})
})
