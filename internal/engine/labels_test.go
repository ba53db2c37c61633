package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

func TestLabelKeysAndValues(t *testing.T) {
	nodes := fleet()
	assert.Equal(t, []string{"app", "team"}, LabelKeys(nodes))
	assert.Equal(t, []string{"agent", "embed", "llm"}, LabelValues(nodes, "app"))
	assert.Equal(t, []string{"ml", "search"}, LabelValues(nodes, "team"))
	assert.Empty(t, LabelValues(nodes, "missing"))
	assert.Empty(t, LabelValues(nodes, ""))
	assert.Empty(t, LabelKeys(nil))
}

func TestFilterByLabelKeepsMatchingPods(t *testing.T) {
	nodes := []domain.Node{testNode("n1", true,
		testPod("a", "Job", "a", 0, 100, 1, map[string]string{"team": "a"}),
		testPod("b", "Job", "b", 0, 100, 1, map[string]string{"team": "b"}),
	)}

	got := FilterByLabel(nodes, "team", "a")
	require.Len(t, got, 1)
	require.Len(t, got[0].Pods, 1)
	assert.Equal(t, "a", got[0].Pods[0].Name)
	assert.Len(t, nodes[0].Pods, 2, "source is not modified")

	assert.Empty(t, FilterByLabel(nodes, "tier", "gold"))
}

func TestFilterByLabelInactive(t *testing.T) {
	nodes := fleet()
	assert.Equal(t, nodes, FilterByLabel(nodes, "", "ml"))
	assert.Equal(t, nodes, FilterByLabel(nodes, "team", ""))
	assert.False(t, LabelFilter{Key: "team"}.Active())
}

func TestFilterByLabelIdempotentAndOrdered(t *testing.T) {
	nodes := fleet()
	once := FilterByLabel(nodes, "app", "agent")
	twice := FilterByLabel(once, "app", "agent")
	assert.Equal(t, once, twice)
	require.Len(t, once, 2)
	assert.Equal(t, "gpu-node-01", once[0].Name)
	assert.Equal(t, "gpu-node-02", once[1].Name)

	ml := FilterByLabel(nodes, "team", "ml")
	require.Len(t, ml, 2)
	assert.Len(t, ml[0].Pods, 1)
	assert.Len(t, nodes[0].Pods, 3)
}

func TestLabelFiltersAreIndependent(t *testing.T) {
	nodes := fleet()
	view := LabelFilter{Key: "team", Value: "search"}
	workload := LabelFilter{Key: "app", Value: "llm"}

	assert.Len(t, view.Apply(nodes), 1)
	assert.Len(t, workload.Apply(nodes), 2)
	assert.Equal(t, "team=search", view.String())
}

func TestStats(t *testing.T) {
	s := Stats(fleet())
	assert.Equal(t, NodeStats{Nodes: 2, Pods: 5, GPUUsed: 5, GPUAllocatable: 16, GPUPods: 3}, s)

	filtered := Stats(FilterByLabel(fleet(), "team", "search"))
	assert.Equal(t, NodeStats{Nodes: 1, Pods: 1, GPUUsed: 1, GPUAllocatable: 8, GPUPods: 1}, filtered)
}
