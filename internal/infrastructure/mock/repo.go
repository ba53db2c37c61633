package mock

import (
	"context"
	"time"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
)

// Repo serves three fixed GPU clusters. Every call builds fresh values, so
// callers may modify what they get back.
type Repo struct {
	clusters []domain.ClusterInfo
	fleets   map[string]func() []domain.Node
}

func New() *Repo {
	return &Repo{
		clusters: []domain.ClusterInfo{
			{Name: "prod-us-east-1", IsActive: true},
			{Name: "prod-eu-west-1"},
			{Name: "staging-apne-1"},
		},
		fleets: map[string]func() []domain.Node{
			"prod-us-east-1": prodUSEast,
			"prod-eu-west-1": prodEUWest,
			"staging-apne-1": stagingAPNE,
		},
	}
}

func (r *Repo) ListClusters(ctx context.Context) ([]domain.ClusterInfo, error) {
	return append([]domain.ClusterInfo(nil), r.clusters...), nil
}

// ListNodes returns the active cluster for "" and no nodes for unknown names.
func (r *Repo) ListNodes(ctx context.Context, cluster string) ([]domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cluster == "" {
		cluster = r.clusters[0].Name
	}
	fleet, ok := r.fleets[cluster]
	if !ok {
		return []domain.Node{}, nil
	}
	return fleet(), nil
}

func (r *Repo) GetSummary(ctx context.Context, cluster string) (domain.ClusterSummary, error) {
	nodes, err := r.ListNodes(ctx, cluster)
	if err != nil {
		return domain.ClusterSummary{}, err
	}
	return engine.Summarize(nodes), nil
}

const (
	gib = int64(1) << 30
	mib = int64(1) << 20
)

var started = time.Date(2026, 2, 26, 1, 0, 0, 0, time.UTC)

func pod(name, ns, kind, owner string, gpu, cpuMillis, mem int64, labels map[string]string) domain.Pod {
	start, created := started, started.Add(-15*time.Hour)
	if labels == nil {
		labels = map[string]string{}
	}
	return domain.Pod{
		Name:                 name,
		Namespace:            ns,
		OwnerKind:            kind,
		OwnerName:            owner,
		Phase:                domain.PodRunning,
		GPURequest:           gpu,
		GPULimit:             gpu,
		CPURequestMillicores: cpuMillis,
		CPULimitMillicores:   cpuMillis * 2,
		MemoryRequestBytes:   mem,
		MemoryLimitBytes:     mem * 2,
		Containers: []domain.Container{{
			Name:      "main",
			State:     "running",
			Ready:     true,
			Image:     "nvidia/cuda:12.4-runtime",
			StartedAt: &start,
		}},
		CreatedAt: &created,
		IP:        "10.244.1.10",
		QOSClass:  "Burstable",
		Labels:    labels,
	}
}

func agent(name string) domain.Pod {
	return pod(name, "monitoring", "DaemonSet", "monitoring-agent", 0, 200, 256*mib,
		map[string]string{"app": "monitoring-agent"})
}

// node derives "used" from the pods so the fixtures stay consistent.
func node(name, gpuType, zone string, gpus, cores, memGiB int64, ready bool, pods ...domain.Pod) domain.Node {
	n := domain.Node{
		Name:                     name,
		GPUType:                  gpuType,
		GPUTotal:                 gpus,
		GPUAllocatable:           gpus,
		CPUTotalMillicores:       cores * 1000,
		CPUAllocatableMillicores: cores*1000 - 2000,
		MemoryTotalBytes:         memGiB * gib,
		MemoryAllocatableBytes:   memGiB*gib - 16*gib,
		Labels: map[string]string{
			"kubernetes.io/arch":          "amd64",
			"topology.kubernetes.io/zone": zone,
		},
		Pods:            append([]domain.Pod{}, pods...),
		ConditionsReady: ready,
		OS:              "Ubuntu 22.04.4 LTS",
		Arch:            "amd64",
		KubeletVersion:  "v1.29.3",
	}
	if gpus > 0 {
		n.Labels["nvidia.com/gpu.product"] = gpuType
	}
	for _, p := range pods {
		n.GPUUsed += p.GPURequest
		n.CPUUsedMillicores += p.CPURequestMillicores
		n.MemoryUsedBytes += p.MemoryRequestBytes
	}
	return n
}

func prodUSEast() []domain.Node {
	llm := map[string]string{"app": "llm-training", "gpu-type": "a100", "team": "ml-platform"}
	embed := map[string]string{"app": "embedding-svc", "team": "search"}
	infer := map[string]string{"app": "llm-inference", "gpu-type": "h100", "team": "ml-platform"}
	return []domain.Node{
		node("gpu-node-a100-01", "NVIDIA-A100-SXM4-80GB", "us-east-1a", 8, 128, 1024, true,
			pod("llm-train-a100-0", "ml-training", "StatefulSet", "llm-train-a100", 2, 16000, 128*gib, llm),
			pod("llm-train-a100-1", "ml-training", "StatefulSet", "llm-train-a100", 2, 16000, 128*gib, llm),
			pod("embedding-svc-7f8b9-xk2p1", "ml-serving", "ReplicaSet", "embedding-svc-7f8b9", 1, 8000, 64*gib, embed),
			pod("embedding-svc-7f8b9-m3n9z", "ml-serving", "ReplicaSet", "embedding-svc-7f8b9", 1, 8000, 64*gib, embed),
			agent("monitoring-agent-gpu-01"),
		),
		node("gpu-node-a100-02", "NVIDIA-A100-SXM4-80GB", "us-east-1b", 8, 128, 1024, true,
			pod("diffusion-train-0", "ml-training", "StatefulSet", "diffusion-train", 4, 32000, 256*gib,
				map[string]string{"app": "diffusion-training", "gpu-type": "a100", "team": "ml-platform"}),
			pod("eval-nightly-28473-x7k2p", "research", "Job", "eval-nightly-28473", 2, 8000, 64*gib,
				map[string]string{"app": "eval", "team": "research"}),
			agent("monitoring-agent-gpu-02"),
		),
		node("gpu-node-h100-01", "NVIDIA-H100-80GB-HBM3", "us-east-1a", 8, 192, 2048, true,
			pod("llm-infer-6c9d4-abc12", "ml-serving", "ReplicaSet", "llm-infer-6c9d4", 2, 12000, 160*gib, infer),
			pod("llm-infer-6c9d4-def34", "ml-serving", "ReplicaSet", "llm-infer-6c9d4", 2, 12000, 160*gib, infer),
			agent("monitoring-agent-gpu-03"),
		),
		node("gpu-node-h100-02", "NVIDIA-H100-80GB-HBM3", "us-east-1b", 8, 192, 2048, false,
			agent("monitoring-agent-gpu-04"),
		),
		node("cpu-node-01", "N/A", "us-east-1c", 0, 64, 256, true,
			pod("prometheus-0", "monitoring", "StatefulSet", "prometheus", 0, 2000, 8*gib,
				map[string]string{"app": "prometheus", "team": "infra"}),
			agent("monitoring-agent-cpu-01"),
		),
	}
}

func prodEUWest() []domain.Node {
	return []domain.Node{
		node("gpu-node-a100-01", "NVIDIA-A100-SXM4-80GB", "eu-west-1a", 8, 128, 1024, true,
			pod("llm-train-eu-0", "ml-training", "StatefulSet", "llm-train-eu", 4, 32000, 256*gib,
				map[string]string{"app": "llm-training", "gpu-type": "a100", "team": "ml-platform"}),
			agent("monitoring-agent-eu-01"),
		),
		node("gpu-node-l4-01", "NVIDIA-L4", "eu-west-1b", 4, 48, 192, true,
			pod("embedding-svc-eu-5d6f7-q1w2e", "ml-serving", "ReplicaSet", "embedding-svc-eu-5d6f7", 1, 4000, 16*gib,
				map[string]string{"app": "embedding-svc", "gpu-type": "l4", "team": "search"}),
			pod("notebook-alice", "research", "None", "notebook-alice", 1, 2000, 8*gib,
				map[string]string{"app": "jupyter", "team": "research"}),
			agent("monitoring-agent-eu-02"),
		),
	}
}

func stagingAPNE() []domain.Node {
	return []domain.Node{
		node("gpu-node-l4-01", "NVIDIA-L4", "ap-northeast-1a", 4, 48, 192, true,
			pod("ci-gpu-test-k9v8", "ci", "Job", "ci-gpu-test", 1, 4000, 16*gib,
				map[string]string{"app": "ci", "gpu-type": "l4", "team": "platform"}),
			agent("monitoring-agent-stg-01"),
		),
		node("gpu-node-t4-01", "Tesla-T4", "ap-northeast-1c", 2, 16, 64, true,
			pod("demo-app-7b8c9-p0o9i", "demo", "ReplicaSet", "demo-app-7b8c9", 1, 2000, 8*gib,
				map[string]string{"app": "demo", "team": "platform"}),
		),
	}
}
