package k8s

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
)

// InClusterName is the only cluster reported when running inside a pod.
const InClusterName = "in-cluster"

const DefaultGPUResource = "nvidia.com/gpu"

// DefaultGPUTypeLabels are checked in order; the first one present names the
// node's GPU model.
var DefaultGPUTypeLabels = []string{
	"nvidia.com/gpu.product",
	"nvidia.com/gpu.machine",
	"accelerator",
	"gpu-type",
	"node.kubernetes.io/instance-type",
}

type Options struct {
	Kubeconfig    string
	Context       string
	QPS           float32
	Burst         int
	GPUResource   string
	GPUTypeLabels []string
}

func (o Options) withDefaults() Options {
	if o.QPS == 0 {
		o.QPS = 30
	}
	if o.Burst == 0 {
		o.Burst = 60
	}
	if o.GPUResource == "" {
		o.GPUResource = DefaultGPUResource
	}
	if len(o.GPUTypeLabels) == 0 {
		o.GPUTypeLabels = DefaultGPUTypeLabels
	}
	return o
}

type clients struct {
	core    kubernetes.Interface
	metrics metricsclient.Interface
}

// Repo reads nodes and pods from one or more clusters. Clients are created
// per kubeconfig context on first use and kept for the life of the Repo.
type Repo struct {
	opts      Options
	inCluster bool

	mu      sync.Mutex
	clients map[string]*clients
	dial    func(kubeContext string) (*clients, error)
}

// New prefers the in-cluster config and falls back to the kubeconfig.
func New(opts Options) (*Repo, error) {
	opts = opts.withDefaults()
	if cfg, err := rest.InClusterConfig(); err == nil {
		c, err := newClients(cfg, opts)
		if err != nil {
			return nil, err
		}
		r := NewWithClients(c.core, c.metrics, opts)
		klog.InfoS("Using in-cluster config")
		return r, nil
	}
	return newKubeconfigRepo(opts), nil
}

// NewWithClients serves a single cluster, named InClusterName, from the given
// clientsets.
func NewWithClients(core kubernetes.Interface, metrics metricsclient.Interface, opts Options) *Repo {
	return &Repo{
		opts:      opts.withDefaults(),
		inCluster: true,
		clients:   map[string]*clients{"": {core: core, metrics: metrics}},
	}
}

func newKubeconfigRepo(opts Options) *Repo {
	opts = opts.withDefaults()
	r := &Repo{opts: opts, clients: map[string]*clients{}}
	r.dial = func(kubeContext string) (*clients, error) {
		cfg, err := loadRESTConfig(opts.Kubeconfig, kubeContext)
		if err != nil {
			return nil, err
		}
		return newClients(cfg, opts)
	}
	return r
}

func newClients(cfg *rest.Config, opts Options) (*clients, error) {
	cfg.QPS = opts.QPS
	cfg.Burst = opts.Burst
	core, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	m, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &clients{core: core, metrics: m}, nil
}

func loadingRules(kubeconfigPath string) *clientcmd.ClientConfigLoadingRules {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}
	return rules
}

func loadRESTConfig(kubeconfigPath, contextName string) (*rest.Config, error) {
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules(kubeconfigPath), overrides).ClientConfig()
}

// clientsFor resolves "" to the configured default context.
func (r *Repo) clientsFor(cluster string) (*clients, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inCluster && (cluster == "" || cluster == InClusterName) {
		return r.clients[""], nil
	}
	if cluster == "" {
		cluster = r.opts.Context
	}
	if c, ok := r.clients[cluster]; ok {
		return c, nil
	}
	if r.dial == nil {
		return nil, fmt.Errorf("unknown cluster %q", cluster)
	}
	c, err := r.dial(cluster)
	if err != nil {
		return nil, fmt.Errorf("cluster %q: %w", cluster, err)
	}
	r.clients[cluster] = c
	return c, nil
}

// -------- TelemetryRepo --------

func (r *Repo) ListClusters(ctx context.Context) ([]domain.ClusterInfo, error) {
	if r.inCluster {
		return []domain.ClusterInfo{{Name: InClusterName, IsActive: true}}, nil
	}
	raw, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules(r.opts.Kubeconfig), &clientcmd.ConfigOverrides{}).RawConfig()
	if err != nil {
		return nil, fmt.Errorf("read kubeconfig: %w", err)
	}
	active := raw.CurrentContext
	if r.opts.Context != "" {
		active = r.opts.Context
	}
	names := lo.Keys(raw.Contexts)
	sort.Strings(names)
	out := make([]domain.ClusterInfo, 0, len(names))
	for _, name := range names {
		out = append(out, domain.ClusterInfo{Name: name, IsActive: name == active})
	}
	return out, nil
}

// DialAll creates clients for every known cluster and reports the ones that
// could not be configured together.
func (r *Repo) DialAll(ctx context.Context) error {
	clusters, err := r.ListClusters(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range clusters {
		if _, err := r.clientsFor(c.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

func (r *Repo) ListNodes(ctx context.Context, cluster string) ([]domain.Node, error) {
	c, err := r.clientsFor(cluster)
	if err != nil {
		return nil, err
	}

	// 1) Pull node usage from metrics.k8s.io; gracefully degrade if unavailable.
	nms, err := c.metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		klog.V(2).InfoS("Node metrics unavailable", "cluster", cluster, "err", err)
		nms = &metricsv1beta1.NodeMetricsList{} // empty => usage stays nil
	}
	usage := map[string]corev1.ResourceList{}
	for _, m := range nms.Items {
		usage[m.Name] = m.Usage
	}

	// 2) Nodes and every pod in one call each.
	nodes, err := c.core.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes of cluster %q: %w", cluster, err)
	}
	pods, err := c.core.CoreV1().Pods("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods of cluster %q: %w", cluster, err)
	}

	podsByNode := map[string][]domain.Pod{}
	for i := range pods.Items {
		p := &pods.Items[i]
		if p.Spec.NodeName == "" {
			continue // unscheduled
		}
		podsByNode[p.Spec.NodeName] = append(podsByNode[p.Spec.NodeName], r.buildPod(p))
	}

	out := make([]domain.Node, 0, len(nodes.Items))
	for i := range nodes.Items {
		n := &nodes.Items[i]
		out = append(out, r.buildNode(n, podsByNode[n.Name], usage[n.Name]))
	}
	klog.V(2).InfoS("Listed nodes", "cluster", cluster, "nodes", len(out), "pods", len(pods.Items))
	return out, nil
}

func (r *Repo) GetSummary(ctx context.Context, cluster string) (domain.ClusterSummary, error) {
	nodes, err := r.ListNodes(ctx, cluster)
	if err != nil {
		return domain.ClusterSummary{}, err
	}
	return engine.Summarize(nodes), nil
}
