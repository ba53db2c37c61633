package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

type triple struct {
	total, allocatable, used int64
}

func (t *triple) add(total, allocatable, used int64) {
	t.total += total
	t.allocatable += allocatable
	t.used += used
}

type gpuTypeTotals struct {
	triple
	nodes int
}

func resourceStat(t triple, unit string, display func(int64) string) domain.ResourceStat {
	available := t.allocatable - t.used
	return domain.ResourceStat{
		Total:              t.total,
		Allocatable:        t.allocatable,
		Used:               t.used,
		Available:          available,
		UtilizationPercent: Utilization(t.used, t.allocatable),
		Unit:               unit,
		TotalDisplay:       display(t.total),
		UsedDisplay:        display(t.used),
		AvailableDisplay:   display(available),
	}
}

func podStat(total int64) domain.ResourceStat {
	return domain.ResourceStat{
		Total:            total,
		Allocatable:      total,
		Used:             total,
		Unit:             "pods",
		TotalDisplay:     countDisplay(total),
		UsedDisplay:      countDisplay(total),
		AvailableDisplay: "0",
	}
}

func gpuTypeStats(byType map[string]*gpuTypeTotals) []domain.GPUTypeStat {
	names := lo.Keys(byType)
	sort.Strings(names)
	out := make([]domain.GPUTypeStat, 0, len(names))
	for _, name := range names {
		t := byType[name]
		out = append(out, domain.GPUTypeStat{
			GPUType:            name,
			Total:              t.total,
			Allocatable:        t.allocatable,
			Used:               t.used,
			Available:          t.allocatable - t.used,
			UtilizationPercent: Utilization(t.used, t.allocatable),
			NodeCount:          t.nodes,
		})
	}
	return out
}

func addGPUType(byType map[string]*gpuTypeTotals, name string, total, allocatable, used int64, nodes int) {
	t, ok := byType[name]
	if !ok {
		t = &gpuTypeTotals{}
		byType[name] = t
	}
	t.add(total, allocatable, used)
	t.nodes += nodes
}

// Summarize builds the summary of one cluster from its nodes. Only nodes
// with GPU capacity contribute to the per-type breakdown.
func Summarize(nodes []domain.Node) domain.ClusterSummary {
	var cpu, mem, gpu triple
	var pods int64
	ready := 0
	byType := map[string]*gpuTypeTotals{}
	for _, n := range nodes {
		cpu.add(n.CPUTotalMillicores, n.CPUAllocatableMillicores, n.CPUUsedMillicores)
		mem.add(n.MemoryTotalBytes, n.MemoryAllocatableBytes, n.MemoryUsedBytes)
		gpu.add(n.GPUTotal, n.GPUAllocatable, n.GPUUsed)
		pods += int64(len(n.Pods))
		if n.ConditionsReady {
			ready++
		}
		if n.GPUTotal > 0 {
			addGPUType(byType, n.GPUType, n.GPUTotal, n.GPUAllocatable, n.GPUUsed, 1)
		}
	}
	return domain.ClusterSummary{
		CPU:            resourceStat(cpu, "millicores", coresDisplay),
		Memory:         resourceStat(mem, "bytes", FormatBytesRaw),
		GPU:            resourceStat(gpu, "GPUs", countDisplay),
		Pods:           podStat(pods),
		NodeCount:      len(nodes),
		ReadyNodeCount: ready,
		GPUByType:      gpuTypeStats(byType),
	}
}

// Aggregate combines per-cluster summaries. Totals are summed field-wise and
// every derived value (available, utilization, display strings) is
// recomputed from the sums, so the result does not depend on input order.
func Aggregate(summaries []domain.ClusterSummary) domain.ClusterSummary {
	var cpu, mem, gpu triple
	var pods int64
	nodes, ready := 0, 0
	byType := map[string]*gpuTypeTotals{}
	for _, s := range summaries {
		cpu.add(s.CPU.Total, s.CPU.Allocatable, s.CPU.Used)
		mem.add(s.Memory.Total, s.Memory.Allocatable, s.Memory.Used)
		gpu.add(s.GPU.Total, s.GPU.Allocatable, s.GPU.Used)
		pods += s.Pods.Total
		nodes += s.NodeCount
		ready += s.ReadyNodeCount
		for _, g := range s.GPUByType {
			addGPUType(byType, g.GPUType, g.Total, g.Allocatable, g.Used, g.NodeCount)
		}
	}
	return domain.ClusterSummary{
		CPU:            resourceStat(cpu, "millicores", coresDisplay),
		Memory:         resourceStat(mem, "bytes", FormatBytesRaw),
		GPU:            resourceStat(gpu, "GPUs", countDisplay),
		Pods:           podStat(pods),
		NodeCount:      nodes,
		ReadyNodeCount: ready,
		GPUByType:      gpuTypeStats(byType),
	}
}

// Merge combines per-cluster snapshots into the "all clusters" view. Nodes
// are tagged with their cluster and kept in input order.
func Merge(snapshots []domain.Snapshot) domain.Snapshot {
	size := lo.SumBy(snapshots, func(s domain.Snapshot) int { return len(s.Nodes) })
	nodes := make([]domain.Node, 0, size)
	summaries := make([]domain.ClusterSummary, 0, len(snapshots))
	for _, s := range snapshots {
		for _, n := range s.Nodes {
			n.Cluster = s.Cluster
			nodes = append(nodes, n)
		}
		summaries = append(summaries, s.Summary)
	}
	return domain.Snapshot{
		Cluster: domain.AllClusters,
		Nodes:   nodes,
		Summary: Aggregate(summaries),
	}
}
