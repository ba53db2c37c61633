package engine

import "github.com/Wonki4/k8s-report-dashboard/internal/domain"

func testPod(name, kind, owner string, gpu, cpu, mem int64, labels map[string]string) domain.Pod {
	return domain.Pod{
		Name:                 name,
		Namespace:            "default",
		OwnerKind:            kind,
		OwnerName:            owner,
		Phase:                domain.PodRunning,
		GPURequest:           gpu,
		GPULimit:             gpu,
		CPURequestMillicores: cpu,
		CPULimitMillicores:   cpu * 2,
		MemoryRequestBytes:   mem,
		MemoryLimitBytes:     mem * 2,
		Labels:               labels,
	}
}

func testNode(name string, ready bool, pods ...domain.Pod) domain.Node {
	n := domain.Node{
		Name:                     name,
		GPUType:                  "NVIDIA-A100-SXM4-80GB",
		GPUTotal:                 8,
		GPUAllocatable:           8,
		CPUTotalMillicores:       64000,
		CPUAllocatableMillicores: 63000,
		MemoryTotalBytes:         512 << 30,
		MemoryAllocatableBytes:   500 << 30,
		ConditionsReady:          ready,
		Pods:                     pods,
	}
	for _, p := range pods {
		n.GPUUsed += p.GPURequest
		n.CPUUsedMillicores += p.CPURequestMillicores
		n.MemoryUsedBytes += p.MemoryRequestBytes
	}
	return n
}

// fleet is a small two-node cluster shared by the tests.
func fleet() []domain.Node {
	return []domain.Node{
		testNode("gpu-node-01", true,
			testPod("train-0", "StatefulSet", "llm-train", 2, 16000, 64<<30, map[string]string{"app": "llm", "team": "ml"}),
			testPod("embed-x1", "ReplicaSet", "embed-7f8b9", 1, 8000, 32<<30, map[string]string{"app": "embed", "team": "search"}),
			testPod("agent-a", "DaemonSet", "monitoring-agent", 0, 200, 256<<20, map[string]string{"app": "agent"}),
		),
		testNode("gpu-node-02", false,
			testPod("train-1", "StatefulSet", "llm-train", 2, 16000, 64<<30, map[string]string{"app": "llm", "team": "ml"}),
			testPod("agent-b", "DaemonSet", "monitoring-agent", 0, 200, 256<<20, map[string]string{"app": "agent"}),
		),
	}
}
