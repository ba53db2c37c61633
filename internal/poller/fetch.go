package poller

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
)

// Fetch loads one complete snapshot for scope. A cluster name (or "" for the
// default cluster) loads nodes and summary concurrently. domain.AllClusters
// loads every cluster concurrently and merges them; any failing cluster fails
// the whole fetch. clusters may be nil, in which case the repo is asked.
func Fetch(ctx context.Context, repo domain.TelemetryRepo, scope string, clusters []domain.ClusterInfo) (domain.Snapshot, error) {
	if scope != domain.AllClusters {
		return fetchOne(ctx, repo, scope)
	}

	if clusters == nil {
		var err error
		if clusters, err = repo.ListClusters(ctx); err != nil {
			return domain.Snapshot{}, fmt.Errorf("list clusters: %w", err)
		}
	}
	names := make([]string, 0, len(clusters))
	for _, c := range clusters {
		if c.Name != domain.AllClusters {
			names = append(names, c.Name)
		}
	}

	snapshots := make([]domain.Snapshot, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			s, err := fetchOne(gctx, repo, name)
			if err != nil {
				return err
			}
			snapshots[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return engine.Merge(snapshots), nil
}

func fetchOne(ctx context.Context, repo domain.TelemetryRepo, cluster string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Cluster: cluster}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Nodes, err = repo.ListNodes(gctx, cluster)
		if err != nil {
			return fmt.Errorf("cluster %q: nodes: %w", cluster, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		snap.Summary, err = repo.GetSummary(gctx, cluster)
		if err != nil {
			return fmt.Errorf("cluster %q: summary: %w", cluster, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
