package domain

import "context"

// TelemetryRepo is implemented by every telemetry source. An empty cluster
// name addresses the active (default) cluster.
type TelemetryRepo interface {
	ListClusters(ctx context.Context) ([]ClusterInfo, error)
	ListNodes(ctx context.Context, cluster string) ([]Node, error)
	GetSummary(ctx context.Context, cluster string) (ClusterSummary, error)
}
