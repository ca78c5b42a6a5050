/*
SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and component-operator-runtime contributors
SPDX-License-Identifier: Apache-2.0
*/

// Package cmd wires the reconciliation engine into a runnable operator
// binary: flag/environment parsing, client and informer bootstrap, the
// health server, and graceful shutdown (§6).
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/strimzi-go/cluster-operator/pkg/adapter"
	"github.com/strimzi-go/cluster-operator/pkg/engine"
	"github.com/strimzi-go/cluster-operator/pkg/health"
)

const fullName = "strimzi-go.io/cluster-operator"

const rootUsage = `Reconciliation engine for declaratively managed Kafka and Kafka-Connect clusters.

The operator watches labeled configuration objects in a single namespace and
converges each cluster's representative resources to match, serializing all
mutating operations for a given cluster under a named lock while draining
distinct clusters concurrently.
`

type operatorOptions struct {
	kubeconfig                 string
	namespace                  string
	configMapLabels            string
	fullReconciliationInterval time.Duration
	healthAddr                 string
}

func newRootCmd() *cobra.Command {
	options := &operatorOptions{}

	cmd := &cobra.Command{
		Use:          "cluster-operator",
		Short:        "Kafka/Kafka-Connect cluster reconciliation engine",
		Long:         rootUsage,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), options)
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVar(&options.kubeconfig, "kubeconfig", envOr("KUBECONFIG", ""), "Path to a kubeconfig file; empty uses in-cluster config")
	cmd.Flags().StringVar(&options.namespace, "namespace", envOr("NAMESPACE", ""), "Namespace to watch and manage")
	cmd.Flags().StringVar(&options.configMapLabels, "configmap-labels", envOr("CONFIGMAP_LABELS", "strimzi.io/kind=cluster"), "Comma-separated key=value labels identifying configuration objects")
	cmd.Flags().DurationVar(&options.fullReconciliationInterval, "full-reconciliation-interval", envDurationOr("FULL_RECONCILIATION_INTERVAL", 2*time.Minute), "Interval between periodic full sweeps")
	cmd.Flags().StringVar(&options.healthAddr, "health-bind-address", envOr("HEALTH_BIND_ADDRESS", ":8081"), "Address the health endpoints bind to")

	return cmd
}

// Execute runs the operator's root command to completion.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}

func run(ctx context.Context, options *operatorOptions) error {
	log := ctrl.Log.WithName("cluster-operator")
	ctrl.SetLogger(zap.New(zap.UseDevMode(false)))

	if options.namespace == "" {
		return fmt.Errorf("namespace must be set via --namespace or NAMESPACE")
	}
	labels, err := parseLabels(options.configMapLabels)
	if err != nil {
		return fmt.Errorf("parsing --configmap-labels: %w", err)
	}

	restConfig, err := getRestConfig(options.kubeconfig)
	if err != nil {
		return fmt.Errorf("building kube client config: %w", err)
	}

	scheme := clientgoscheme.Scheme
	crClient, err := ctrlclient.New(restConfig, ctrlclient.Options{Scheme: scheme})
	if err != nil {
		return fmt.Errorf("building controller-runtime client: %w", err)
	}
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("building discovery client: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("building clientset: %w", err)
	}
	recorder := newEventRecorder(clientset, options.namespace)

	client := adapter.NewClient(crClient, discoveryClient, recorder)

	eng := engine.New(client, engine.Config{
		Namespace:                  options.namespace,
		ConfigMapLabels:            labels,
		FullReconciliationInterval: options.fullReconciliationInterval,
	}, log)

	informerStop, err := startConfigObjectInformer(ctx, clientset, options.namespace, labels, eng)
	if err != nil {
		return fmt.Errorf("starting configuration-object informer: %w", err)
	}
	defer informerStop()

	healthServer := health.NewServer(options.healthAddr, eng)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			log.Error(err, "health server exited")
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = healthServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting reconciliation engine", "namespace", options.namespace, "interval", options.fullReconciliationInterval.String())
	return eng.Start(ctx)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseLabels(raw string) (map[string]string, error) {
	labels := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return labels, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid label %q, expected key=value", pair)
		}
		labels[parts[0]] = parts[1]
	}
	return labels, nil
}

func getRestConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			return cfg, nil
		}
		kubeconfigPath = clientcmd.RecommendedHomeFile
	}
	return clientcmd.BuildConfigFromFlags("", kubeconfigPath)
}

func newEventRecorder(clientset kubernetes.Interface, namespace string) record.EventRecorder {
	broadcaster := record.NewBroadcaster()
	broadcaster.StartRecordingToSink(&typedcorev1.EventSinkImpl{Interface: clientset.CoreV1().Events(namespace)})
	return broadcaster.NewRecorder(clientgoscheme.Scheme, corev1.EventSource{Component: fullName})
}
