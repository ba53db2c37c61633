// internal/app/helper.go
package app

import "fmt"

// clamp clamps v into [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pct(v float64) string { return fmt.Sprintf("%5.1f%%", v) }

func nodeLabel(cluster, node string) string {
	if cluster == "" {
		return node
	}
	return cluster + "/" + node
}

// compute dynamic widths for the Nodes table based on available total width
func nodeColWidths(total int, withCluster bool) (wCluster, wNode, wType, wGPUBar int) {
	// READY, GPU, CPU%, MEM%, PODS are fixed
	fixed := 6 + 7 + 6 + 6 + 5
	minNode, minType, minCluster := 18, 14, 14

	base := fixed + minNode + minType
	if withCluster {
		base += minCluster
	}
	remain := total - base
	if remain < 8 {
		remain = 8
	}

	// bar gets half of the slack, names share the rest
	wGPUBar = remain / 2
	extra := remain - wGPUBar
	wNode = minNode + extra/2
	wType = minType + extra - extra/2
	if withCluster {
		wCluster = minCluster
	}

	wGPUBar = clamp(wGPUBar, 6, 30)
	wNode = clamp(wNode, 12, 40)
	wType = clamp(wType, 10, 30)
	return
}

// compute dynamic widths for the Workloads table
func workloadColWidths(total int) (wName, wWhere int) {
	// GPU, CPU, MEM, STATUS
	fixed := 4 + 7 + 10 + 10
	remain := total - fixed
	if remain < 40 {
		remain = 40
	}
	wName = remain * 3 / 5
	wWhere = remain - wName

	wName = clamp(wName, 24, 70)
	wWhere = clamp(wWhere, 16, 50)
	return
}
