package poller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

func TestStateApply(t *testing.T) {
	s := State{}.Switch(1, "prod-us-east-1")
	assert.True(t, s.Loading())

	at := time.Date(2026, 2, 26, 1, 0, 0, 0, time.UTC)
	s = s.Apply(Result{Generation: 1, Scope: "prod-us-east-1", Snapshot: domain.Snapshot{Cluster: "prod-us-east-1"}, At: at})
	require.NotNil(t, s.Snapshot)
	assert.False(t, s.Loading())
	assert.Equal(t, "prod-us-east-1", s.Snapshot.Cluster)
	assert.Equal(t, at, s.UpdatedAt)

	failed := s.Apply(Result{Generation: 1, Err: errors.New("timeout")})
	assert.EqualError(t, failed.Err, "timeout")
	assert.Equal(t, s.Snapshot, failed.Snapshot, "a failed poll keeps the last snapshot")
	assert.Equal(t, at, failed.UpdatedAt)

	recovered := failed.Apply(Result{Generation: 1, Snapshot: domain.Snapshot{Cluster: "prod-us-east-1", Nodes: []domain.Node{{Name: "n"}}}})
	assert.NoError(t, recovered.Err)
	assert.Len(t, recovered.Snapshot.Nodes, 1)
}

func TestStateIgnoresStaleGenerations(t *testing.T) {
	s := State{}.Switch(1, "slow").Switch(2, domain.AllClusters)

	stale := s.Apply(Result{Generation: 1, Scope: "slow", Snapshot: domain.Snapshot{Cluster: "slow"}})
	assert.Equal(t, s, stale)

	fresh := s.Apply(Result{Generation: 2, Scope: domain.AllClusters, Snapshot: domain.Snapshot{Cluster: domain.AllClusters}})
	require.NotNil(t, fresh.Snapshot)
	assert.Equal(t, domain.AllClusters, fresh.Snapshot.Cluster)
}

func TestStateSwitchDropsPreviousScope(t *testing.T) {
	s := State{}.Switch(1, "a").Apply(Result{Generation: 1, Snapshot: domain.Snapshot{Cluster: "a"}})
	next := s.Switch(2, "b")
	assert.Nil(t, next.Snapshot)
	assert.NoError(t, next.Err)
	assert.Equal(t, "b", next.Scope)
}
