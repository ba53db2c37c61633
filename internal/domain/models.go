package domain

import (
	"strings"
	"time"
)

// AllClusters is the scope name of the merged multi-cluster view.
const AllClusters = "__all__"

type PodPhase string

const (
	PodPending   PodPhase = "Pending"
	PodRunning   PodPhase = "Running"
	PodSucceeded PodPhase = "Succeeded"
	PodFailed    PodPhase = "Failed"
	PodUnknown   PodPhase = "Unknown"
)

type Container struct {
	Name         string     `json:"name"`
	State        string     `json:"state"` // running, waiting, terminated, unknown
	Ready        bool       `json:"ready"`
	RestartCount int        `json:"restart_count"`
	Image        string     `json:"image"`
	Reason       string     `json:"reason,omitempty"` // CrashLoopBackOff, OOMKilled, ...
	Message      string     `json:"message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
}

type Pod struct {
	Name      string   `json:"name"`
	Namespace string   `json:"namespace"`
	OwnerKind string   `json:"owner_kind"` // ReplicaSet, DaemonSet, Job, StatefulSet, None...
	OwnerName string   `json:"owner_name"`
	Phase     PodPhase `json:"phase"`

	GPURequest           int64 `json:"gpu_request"`
	GPULimit             int64 `json:"gpu_limit"`
	CPURequestMillicores int64 `json:"cpu_request_millicores"`
	CPULimitMillicores   int64 `json:"cpu_limit_millicores"`
	MemoryRequestBytes   int64 `json:"memory_request_bytes"`
	MemoryLimitBytes     int64 `json:"memory_limit_bytes"`

	Containers []Container       `json:"containers"`
	CreatedAt  *time.Time        `json:"created_at,omitempty"`
	IP         string            `json:"ip,omitempty"`
	QOSClass   string            `json:"qos_class,omitempty"` // Guaranteed, Burstable, BestEffort
	Labels     map[string]string `json:"labels"`
}

// RestartCount sums restarts over all containers of the pod.
func (p Pod) RestartCount() int {
	n := 0
	for _, c := range p.Containers {
		n += c.RestartCount
	}
	return n
}

type Node struct {
	Name string `json:"name"`

	// Cluster is only set in merged multi-cluster views.
	Cluster string `json:"cluster,omitempty"`

	GPUType        string `json:"gpu_type"`
	GPUTotal       int64  `json:"gpu_total"`
	GPUAllocatable int64  `json:"gpu_allocatable"`
	GPUUsed        int64  `json:"gpu_used"`

	CPUTotalMillicores       int64 `json:"cpu_total_millicores"`
	CPUAllocatableMillicores int64 `json:"cpu_allocatable_millicores"`
	CPUUsedMillicores        int64 `json:"cpu_used_millicores"` // sum of pod requests

	MemoryTotalBytes       int64 `json:"memory_total_bytes"`
	MemoryAllocatableBytes int64 `json:"memory_allocatable_bytes"`
	MemoryUsedBytes        int64 `json:"memory_used_bytes"` // sum of pod requests

	// live usage from metrics.k8s.io, nil when metrics-server is unavailable
	CPUUsageMillicores *int64 `json:"cpu_usage_millicores,omitempty"`
	MemoryUsageBytes   *int64 `json:"memory_usage_bytes,omitempty"`

	Labels          map[string]string `json:"labels"`
	Pods            []Pod             `json:"pods"`
	ConditionsReady bool              `json:"conditions_ready"`
	OS              string            `json:"os"`
	Arch            string            `json:"arch"`
	KubeletVersion  string            `json:"kubelet_version"`
}

// ResourceStat is the aggregate block of one resource.
type ResourceStat struct {
	Total              int64   `json:"total"`
	Allocatable        int64   `json:"allocatable"`
	Used               int64   `json:"used"`
	Available          int64   `json:"available"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Unit               string  `json:"unit"`
	TotalDisplay       string  `json:"total_display"`
	UsedDisplay        string  `json:"used_display"`
	AvailableDisplay   string  `json:"available_display"`
}

type GPUTypeStat struct {
	GPUType            string  `json:"gpu_type"`
	Total              int64   `json:"total"`
	Allocatable        int64   `json:"allocatable"`
	Used               int64   `json:"used"`
	Available          int64   `json:"available"`
	UtilizationPercent float64 `json:"utilization_percent"`
	NodeCount          int     `json:"node_count"`
}

type ClusterSummary struct {
	CPU            ResourceStat  `json:"cpu"`
	Memory         ResourceStat  `json:"memory"`
	GPU            ResourceStat  `json:"gpu"`
	Pods           ResourceStat  `json:"pods"`
	NodeCount      int           `json:"node_count"`
	ReadyNodeCount int           `json:"ready_node_count"`
	GPUByType      []GPUTypeStat `json:"gpu_by_type"`
}

type ClusterInfo struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Snapshot is one complete poll result for a scope.
type Snapshot struct {
	Cluster string         `json:"cluster"`
	Nodes   []Node         `json:"nodes"`
	Summary ClusterSummary `json:"summary"`
}

// OwnerKey identifies the controller that created a pod.
type OwnerKey struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (k OwnerKey) String() string { return k.Kind + "/" + k.Name }

// ParseOwnerKey parses "kind/name". Kinds never contain a slash, so the
// first one separates the two parts and the name keeps any others.
func ParseOwnerKey(s string) (OwnerKey, bool) {
	kind, name, ok := strings.Cut(s, "/")
	if !ok || kind == "" || name == "" {
		return OwnerKey{}, false
	}
	return OwnerKey{Kind: kind, Name: name}, true
}

func (p Pod) OwnerKey() OwnerKey {
	return OwnerKey{Kind: p.OwnerKind, Name: p.OwnerName}
}
