package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListClusters(t *testing.T) {
	clusters, err := New().ListClusters(context.Background())
	require.NoError(t, err)
	require.Len(t, clusters, 3)
	assert.Equal(t, "prod-us-east-1", clusters[0].Name)
	assert.True(t, clusters[0].IsActive)
	assert.False(t, clusters[1].IsActive)
}

func TestListNodesUsesPodRequests(t *testing.T) {
	repo := New()
	for _, name := range []string{"prod-us-east-1", "prod-eu-west-1", "staging-apne-1"} {
		nodes, err := repo.ListNodes(context.Background(), name)
		require.NoError(t, err)
		require.NotEmpty(t, nodes, name)
		for _, n := range nodes {
			var gpu, cpu, mem int64
			for _, p := range n.Pods {
				gpu += p.GPURequest
				cpu += p.CPURequestMillicores
				mem += p.MemoryRequestBytes
			}
			assert.Equal(t, gpu, n.GPUUsed, n.Name)
			assert.Equal(t, cpu, n.CPUUsedMillicores, n.Name)
			assert.Equal(t, mem, n.MemoryUsedBytes, n.Name)
			assert.LessOrEqual(t, n.GPUUsed, n.GPUAllocatable, n.Name)
		}
	}
}

func TestListNodesDefaultAndUnknown(t *testing.T) {
	repo := New()
	def, err := repo.ListNodes(context.Background(), "")
	require.NoError(t, err)
	east, err := repo.ListNodes(context.Background(), "prod-us-east-1")
	require.NoError(t, err)
	assert.Equal(t, east, def)

	none, err := repo.ListNodes(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListNodesReturnsFreshValues(t *testing.T) {
	repo := New()
	first, _ := repo.ListNodes(context.Background(), "prod-eu-west-1")
	first[0].Pods[0].Labels["team"] = "changed"
	first[0].Pods = nil

	second, _ := repo.ListNodes(context.Background(), "prod-eu-west-1")
	assert.Len(t, second[0].Pods, 2)
	assert.Equal(t, "ml-platform", second[0].Pods[0].Labels["team"])
}

func TestListNodesHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ListNodes(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetSummary(t *testing.T) {
	s, err := New().GetSummary(context.Background(), "prod-us-east-1")
	require.NoError(t, err)
	assert.Equal(t, 5, s.NodeCount)
	assert.Equal(t, 4, s.ReadyNodeCount)
	assert.Equal(t, int64(32), s.GPU.Allocatable)
	assert.Equal(t, int64(16), s.GPU.Used)
	assert.Equal(t, 50.0, s.GPU.UtilizationPercent)
	require.Len(t, s.GPUByType, 2)
	assert.Equal(t, "NVIDIA-A100-SXM4-80GB", s.GPUByType[0].GPUType)
	assert.Equal(t, int64(12), s.GPUByType[0].Used)
	assert.Equal(t, "NVIDIA-H100-80GB-HBM3", s.GPUByType[1].GPUType)
	assert.Equal(t, int64(4), s.GPUByType[1].Used)
}
