package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

var (
	llmTrain = domain.OwnerKey{Kind: "StatefulSet", Name: "llm-train"}
	embed    = domain.OwnerKey{Kind: "ReplicaSet", Name: "embed-7f8b9"}
	agent    = domain.OwnerKey{Kind: "DaemonSet", Name: "monitoring-agent"}
)

func TestCollectOwners(t *testing.T) {
	owners := CollectOwners(fleet())
	require.Len(t, owners, 3)
	assert.Equal(t, []Owner{
		{OwnerKey: embed, Count: 1},
		{OwnerKey: llmTrain, Count: 2},
		{OwnerKey: agent, Count: 2},
	}, owners)

	total := 0
	for _, o := range owners {
		total += o.Count
	}
	assert.Equal(t, Stats(fleet()).Pods, total)
}

func TestCollectOwnersTiesKeepFirstSeenOrder(t *testing.T) {
	nodes := []domain.Node{testNode("n1", true,
		testPod("a", "Job", "worker", 0, 0, 0, nil),
		testPod("b", "Deployment", "worker", 0, 0, 0, nil),
		testPod("c", "Job", "worker", 0, 0, 0, nil),
		testPod("d", "CronJob", "alpha", 0, 0, 0, nil),
	)}

	owners := CollectOwners(nodes)
	require.Len(t, owners, 3)
	assert.Equal(t, "CronJob/alpha", owners[0].OwnerKey.String())
	assert.Equal(t, "Job/worker", owners[1].OwnerKey.String())
	assert.Equal(t, 2, owners[1].Count)
	assert.Equal(t, "Deployment/worker", owners[2].OwnerKey.String())
}

func TestSearchOwners(t *testing.T) {
	owners := CollectOwners(fleet())

	assert.Equal(t, owners, SearchOwners(owners, "   "))
	assert.Equal(t, []Owner{{OwnerKey: llmTrain, Count: 2}}, SearchOwners(owners, "LLM"))
	assert.Equal(t, []Owner{{OwnerKey: agent, Count: 2}}, SearchOwners(owners, "daemonset"))
	assert.Equal(t, []Owner{{OwnerKey: embed, Count: 1}}, SearchOwners(owners, "replicaset/emb"))
	assert.Empty(t, SearchOwners(owners, "nothing-like-this"))
}

func TestSelectAllVisible(t *testing.T) {
	current := Selection{agent}
	visible := []Owner{{OwnerKey: embed}, {OwnerKey: agent}, {OwnerKey: llmTrain}}

	got := SelectAllVisible(current, visible)
	assert.Equal(t, Selection{agent, embed, llmTrain}, got)
	assert.Equal(t, Selection{agent}, current)
}

func TestDeselectVisible(t *testing.T) {
	current := Selection{agent, embed, llmTrain}

	assert.Empty(t, DeselectVisible(current, []Owner{{OwnerKey: embed}}, ""))
	assert.Equal(t, Selection{agent, llmTrain}, DeselectVisible(current, []Owner{{OwnerKey: embed}}, "emb"))
	assert.Len(t, current, 3)
}

func TestSelectionToggle(t *testing.T) {
	base := make(Selection, 1, 4)
	base[0] = agent

	added := base.Toggle(embed)
	assert.Equal(t, Selection{agent, embed}, added)
	other := base.Toggle(llmTrain)
	assert.Equal(t, Selection{agent, llmTrain}, other)
	assert.Equal(t, Selection{agent, embed}, added, "toggles on a shared backing array do not clobber each other")

	assert.Equal(t, Selection{embed}, added.Toggle(agent))
	assert.True(t, added.Contains(embed))
	assert.Equal(t, []string{"DaemonSet/monitoring-agent", "ReplicaSet/embed-7f8b9"}, added.Strings())
}

func TestParseSelection(t *testing.T) {
	sel := ParseSelection([]string{"Deployment/foo", "bad", "Deployment/foo", "Job/a/b", "/x", "Job/"})
	assert.Equal(t, Selection{
		{Kind: "Deployment", Name: "foo"},
		{Kind: "Job", Name: "a/b"},
	}, sel)
}
