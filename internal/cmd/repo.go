package cmd

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/config"
	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/infrastructure/cached"
	"github.com/Wonki4/k8s-report-dashboard/internal/infrastructure/k8s"
	"github.com/Wonki4/k8s-report-dashboard/internal/infrastructure/mock"
	"github.com/Wonki4/k8s-report-dashboard/internal/infrastructure/remote"
)

// newRepo builds the configured source, behind a read cache when cache.ttl
// is positive.
func newRepo(ctx context.Context, c *config.Config) (domain.TelemetryRepo, error) {
	var repo domain.TelemetryRepo
	switch c.Source {
	case config.SourceMock:
		repo = mock.New()
	case config.SourceRemote:
		repo = remote.New(remote.DefaultConfig(c.Remote.URL))
	case config.SourceK8s:
		r, err := k8s.New(c.KubeOptions())
		if err != nil {
			return nil, fmt.Errorf("kubernetes client: %w", err)
		}
		// Broken contexts only fail their own cluster.
		if err := r.DialAll(ctx); err != nil {
			klog.ErrorS(err, "Some clusters could not be configured")
		}
		repo = r
	default:
		return nil, fmt.Errorf("unknown source %q", c.Source)
	}

	if c.Cache.TTL > 0 {
		repo = cached.New(repo, c.Cache.TTL)
	}
	klog.V(1).InfoS("Telemetry source ready", "source", c.Source, "cacheTTL", c.Cache.TTL)
	return repo, nil
}
