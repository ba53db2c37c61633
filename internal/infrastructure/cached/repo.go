package cached

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

// Repo keeps successful results of the wrapped repo for a short TTL. Cached
// values are shared between callers and must be treated as read-only.
type Repo struct {
	next  domain.TelemetryRepo
	cache *gocache.Cache
}

func New(next domain.TelemetryRepo, ttl time.Duration) *Repo {
	return &Repo{next: next, cache: gocache.New(ttl, 2*ttl)}
}

func (r *Repo) ListClusters(ctx context.Context) ([]domain.ClusterInfo, error) {
	return load(r, "clusters", func() ([]domain.ClusterInfo, error) {
		return r.next.ListClusters(ctx)
	})
}

func (r *Repo) ListNodes(ctx context.Context, cluster string) ([]domain.Node, error) {
	return load(r, "nodes/"+cluster, func() ([]domain.Node, error) {
		return r.next.ListNodes(ctx, cluster)
	})
}

func (r *Repo) GetSummary(ctx context.Context, cluster string) (domain.ClusterSummary, error) {
	return load(r, "summary/"+cluster, func() (domain.ClusterSummary, error) {
		return r.next.GetSummary(ctx, cluster)
	})
}

// Flush drops every cached result.
func (r *Repo) Flush() { r.cache.Flush() }

func load[T any](r *Repo, key string, fetch func() (T, error)) (T, error) {
	if v, ok := r.cache.Get(key); ok {
		klog.V(4).InfoS("Cache hit", "key", key)
		return v.(T), nil
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	r.cache.SetDefault(key, v)
	return v, nil
}
