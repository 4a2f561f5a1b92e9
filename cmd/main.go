package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2/textlogger"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/controller"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/endpoints"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/resources"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/store"
)

type options struct {
	listenAddress        string
	configFile           string
	configMap            string
	namespace            string
	enableControllers    bool
	metricsBindAddress   string
	pollInterval         time.Duration
	queueTimeout         time.Duration
	requirementCacheSize int
}

func main() {
	opts := options{}
	pflag.StringVar(&opts.listenAddress, "listen-address", ":8080", "address the resource API listens on")
	pflag.StringVar(&opts.configFile, "config-file", "lockable-resources.yaml", "file holding the configuration when controllers are disabled")
	pflag.StringVar(&opts.configMap, "configmap", "lockable-resources", "ConfigMap holding the configuration when controllers are enabled")
	pflag.StringVar(&opts.namespace, "namespace", "lockable-resources", "namespace of the configuration ConfigMap")
	pflag.BoolVar(&opts.enableControllers, "enable-controllers", false, "reconcile LockRequests and keep the configuration in a ConfigMap")
	pflag.StringVar(&opts.metricsBindAddress, "metrics-bind-address", ":8081", "address the metrics endpoint binds to")
	pflag.DurationVar(&opts.pollInterval, "poll-interval", controller.DefaultPollInterval, "delay before a waiting LockRequest is queued again")
	pflag.DurationVar(&opts.queueTimeout, "queue-timeout", 0, "release queued resources of items which stopped polling, 0 disables")
	pflag.IntVar(&opts.requirementCacheSize, "requirement-cache-size", 256, "resolved requirements to cache, 0 disables")

	logConfig := textlogger.NewConfig()
	goFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	logConfig.AddFlags(goFlags)
	pflag.CommandLine.AddGoFlagSet(goFlags)
	pflag.Parse()

	ctrl.SetLogger(textlogger.NewLogger(logConfig))
	logger := ctrl.Log.WithName("main")

	resources.InitMetrics()

	var err error
	if opts.enableControllers {
		err = runControllers(opts)
	} else {
		err = runStandalone(opts)
	}
	if err != nil {
		logger.Error(err, "exiting")
		os.Exit(1)
	}
}

func managerOptions(opts options) []resources.Option {
	return []resources.Option{
		resources.WithQueueTimeout(opts.queueTimeout),
		resources.WithRequirementCacheSize(opts.requirementCacheSize),
	}
}

// runStandalone serves the resource API with the configuration kept in a file.
func runStandalone(opts options) error {
	logger := ctrl.Log.WithName("main")
	ctx := ctrl.SetupSignalHandler()

	m := resources.NewManager(store.NewFileStore(opts.configFile), managerOptions(opts)...)
	if err := m.Load(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	endpoints.NewHandler(m).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	logger.Info("serving resource API", "address", opts.listenAddress, "config", opts.configFile)
	return serve(ctx, opts.listenAddress, mux)
}

// runControllers runs the controllers and the resource API in a controller manager.
func runControllers(opts options) error {
	logger := ctrl.Log.WithName("main")
	controller.InitMetrics()

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return err
	}
	if err := v1.Install(scheme); err != nil {
		return err
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:  scheme,
		Metrics: metricsserver.Options{BindAddress: opts.metricsBindAddress},
	})
	if err != nil {
		return err
	}

	configStore := store.NewConfigMapStore(mgr.GetClient(), opts.namespace, opts.configMap)
	configStore.UncachedClient = mgr.GetAPIReader()
	m := resources.NewManager(configStore, managerOptions(opts)...)

	// the cache is not started yet
	ctx := ctrl.SetupSignalHandler()
	if err := m.Load(ctx); err != nil {
		return err
	}

	if err := (&controller.ConfigReconciler{
		Manager:   m,
		ConfigMap: configStore.Key,
	}).SetupWithManager(mgr); err != nil {
		return err
	}
	if err := (&controller.LockRequestReconciler{
		Manager:      m,
		PollInterval: opts.pollInterval,
	}).SetupWithManager(mgr); err != nil {
		return err
	}
	if err := (&controller.NamespaceReconciler{
		Manager: m,
	}).SetupWithManager(mgr); err != nil {
		return err
	}

	mux := http.NewServeMux()
	endpoints.NewHandler(m).Register(mux)
	if err := mgr.Add(manager.RunnableFunc(func(ctx context.Context) error {
		return serve(ctx, opts.listenAddress, mux)
	})); err != nil {
		return err
	}

	logger.Info("starting manager", "address", opts.listenAddress, "configmap", configStore.Key)
	return mgr.Start(ctx)
}

func serve(ctx context.Context, address string, handler http.Handler) error {
	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			ctrl.Log.WithName("main").Error(err, "unable to shut down resource API")
		}
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
