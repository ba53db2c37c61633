package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
	"github.com/Wonki4/k8s-report-dashboard/internal/infrastructure/mock"
	"github.com/Wonki4/k8s-report-dashboard/internal/poller"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m = send(m, key(k))
	}
	return m
}

// loaded returns a model showing the active mock cluster.
func loaded(t *testing.T) Model {
	t.Helper()
	repo := mock.New()
	p := poller.New(repo, time.Hour)
	t.Cleanup(p.Stop)

	m := New(repo, p, "")
	clusters, err := repo.ListClusters(context.Background())
	require.NoError(t, err)
	snap, err := poller.Fetch(context.Background(), repo, "", nil)
	require.NoError(t, err)

	return send(m,
		clustersMsg(clusters),
		resultMsg(poller.Result{Generation: m.state.Generation, Snapshot: snap, At: time.Now()}),
	)
}

func TestNewIsLoading(t *testing.T) {
	repo := mock.New()
	p := poller.New(repo, time.Hour)
	t.Cleanup(p.Stop)

	m := New(repo, p, "")
	assert.True(t, m.state.Loading())
	assert.Equal(t, p.Generation(), m.state.Generation)
	assert.Contains(t, m.View(), "Loading")
}

func TestResultFillsNodesTable(t *testing.T) {
	m := loaded(t)
	require.NotNil(t, m.state.Snapshot)
	assert.Len(t, m.table.Rows(), 5)
	assert.Equal(t, "gpu-node-a100-01", m.table.Rows()[0][0])
	assert.Equal(t, "6/8", m.table.Rows()[0][3])

	v := m.View()
	assert.Contains(t, v, "prod-us-east-1")
	assert.Contains(t, v, "nodes 4/5 ready")
	assert.Contains(t, v, "gpu 16/32")
}

func TestStaleResultIgnored(t *testing.T) {
	m := loaded(t)
	before := m.state

	m = send(m, resultMsg(poller.Result{Generation: before.Generation - 1, Err: errors.New("old")}))
	assert.Equal(t, before, m.state)
}

func TestErrorKeepsSnapshot(t *testing.T) {
	m := loaded(t)
	m = send(m, resultMsg(poller.Result{Generation: m.state.Generation, Err: errors.New("apiserver down")}))

	require.NotNil(t, m.state.Snapshot)
	assert.Len(t, m.table.Rows(), 5)
	assert.Contains(t, m.View(), "apiserver down")
}

func TestLabelFilterPicker(t *testing.T) {
	m := loaded(t)

	m = press(m, "l")
	require.Equal(t, pickLabelKey, m.picker)
	assert.Equal(t, []string{"app", "gpu-type", "team"}, m.pickValues)

	m = press(m, "down", "down", "enter")
	require.Equal(t, pickLabelValue, m.picker)
	assert.Equal(t, []string{"infra", "ml-platform", "research", "search"}, m.pickValues)

	m = press(m, "down", "enter")
	assert.Equal(t, pickNone, m.picker)
	assert.Equal(t, engine.LabelFilter{Key: "team", Value: "ml-platform"}, m.filter)
	assert.Len(t, m.table.Rows(), 3)
	assert.Contains(t, m.View(), "filter team=ml-platform")

	m = press(m, "x")
	assert.False(t, m.filter.Active())
	assert.Len(t, m.table.Rows(), 5)
}

func TestPickerEscape(t *testing.T) {
	m := loaded(t)
	m = press(m, "l", "enter", "esc")
	assert.Equal(t, pickNone, m.picker)
	assert.False(t, m.filter.Active())
	assert.Empty(t, m.pendingKey)
}

func TestClusterSwitchResetsFilter(t *testing.T) {
	m := loaded(t)
	m.filter = engine.LabelFilter{Key: "team", Value: "search"}
	gen := m.state.Generation

	m = press(m, "c")
	require.Equal(t, pickCluster, m.picker)
	assert.Equal(t, []string{domain.AllClusters, "prod-us-east-1", "prod-eu-west-1", "staging-apne-1"}, m.pickValues)
	assert.Equal(t, 1, m.pickTable.Cursor())

	m = press(m, "up", "enter")
	assert.Equal(t, domain.AllClusters, m.state.Scope)
	assert.Greater(t, m.state.Generation, gen)
	assert.Equal(t, m.poller.Generation(), m.state.Generation)
	assert.Nil(t, m.state.Snapshot)
	assert.False(t, m.filter.Active())
	assert.Contains(t, m.View(), "Loading All Clusters")

	// a late result of the old scope must not show up
	snap, err := poller.Fetch(context.Background(), mock.New(), "", nil)
	require.NoError(t, err)
	m = send(m, resultMsg(poller.Result{Generation: gen, Snapshot: snap}))
	assert.Nil(t, m.state.Snapshot)
}

func TestAllClustersShowsClusterColumn(t *testing.T) {
	m := loaded(t)
	m = press(m, "c", "up", "enter")

	repo := mock.New()
	snap, err := poller.Fetch(context.Background(), repo, domain.AllClusters, nil)
	require.NoError(t, err)
	m = send(m, resultMsg(poller.Result{Generation: m.state.Generation, Scope: domain.AllClusters, Snapshot: snap}))

	require.Len(t, m.table.Rows(), 9)
	assert.Equal(t, "prod-us-east-1", m.table.Rows()[0][0])
}

func TestOwnerPicker(t *testing.T) {
	m := loaded(t)
	m = press(m, "tab", "o")
	require.Equal(t, pickOwner, m.picker)
	assert.Contains(t, m.View(), "Select one or more owners")

	m = press(m, "/", "infer", "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "infer", m.search.Value())
	require.Len(t, m.visibleOwners(), 1)

	m = press(m, " ", "esc")
	assert.Equal(t, pickNone, m.picker)
	assert.Equal(t, []string{"ReplicaSet/llm-infer-6c9d4"}, m.query.Owners.Strings())

	// one node header and its two pods
	rows := m.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "▾ gpu-node-h100-01", rows[0][0])
	assert.Equal(t, "4", rows[0][2])
	assert.Contains(t, m.View(), "pods 2  nodes 1  gpu 4")
}

func TestOwnerPickerSelectAllAndNone(t *testing.T) {
	m := loaded(t)
	m = press(m, "tab", "o", "a")
	assert.Len(t, m.query.Owners, 7)

	m = press(m, "d")
	assert.Empty(t, m.query.Owners)

	m = press(m, "down", " ")
	assert.Equal(t, []string{"ReplicaSet/embedding-svc-7f8b9"}, m.query.Owners.Strings())
}

func TestGroupByOwner(t *testing.T) {
	m := loaded(t)
	m = press(m, "tab")
	m.query.Owners = engine.ParseSelection([]string{"StatefulSet/llm-train-a100", "StatefulSet/diffusion-train"})
	m = press(m, "g")

	rows := m.table.Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, "▾ StatefulSet/diffusion-train", rows[0][0])
	assert.Equal(t, "1 pods on 1 nodes", rows[0][1])
	assert.Equal(t, "▾ StatefulSet/llm-train-a100", rows[2][0])
	assert.Equal(t, "gpu-node-a100-01", rows[3][1])
}

func TestLabelMode(t *testing.T) {
	m := loaded(t)
	m = press(m, "tab")

	// the label picker is disabled in owner mode in the workloads view
	m = press(m, "l")
	assert.Equal(t, pickNone, m.picker)

	m = press(m, "m", "l")
	require.Equal(t, pickLabelKey, m.picker)
	m = press(m, "enter") // app
	require.Equal(t, pickLabelValue, m.picker)
	m = press(m, "enter") // diffusion-training
	assert.Equal(t, engine.LabelFilter{Key: "app", Value: "diffusion-training"}, m.query.Label)
	assert.False(t, m.filter.Active())
	assert.Len(t, m.table.Rows(), 2)

	m = press(m, "x")
	assert.False(t, m.query.Label.Active())
	assert.Empty(t, m.table.Rows())
}

func TestWindowResize(t *testing.T) {
	m := loaded(t)
	m = send(m, tea.WindowSizeMsg{Width: 160, Height: 50})
	assert.Equal(t, 156, m.table.Width())
	assert.Greater(t, m.table.Height(), 30)
	assert.Len(t, m.table.Rows(), 5)
}

func TestQuit(t *testing.T) {
	m := loaded(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.ctx.Err())
}

func TestNodeColWidths(t *testing.T) {
	wCluster, wNode, wType, wBar := nodeColWidths(100, false)
	assert.Zero(t, wCluster)
	assert.Equal(t, 27, wNode)
	assert.Equal(t, 24, wType)
	assert.Equal(t, 19, wBar)

	wCluster, _, _, wBar = nodeColWidths(40, true)
	assert.Equal(t, 14, wCluster)
	assert.Equal(t, 6, wBar)
}
