package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

const (
	clustersAPI       = "/api/clusters"
	clusterNodesAPI   = "/api/clusters/{name}/nodes"
	clusterSummaryAPI = "/api/clusters/{name}/summary"
	defaultNodesAPI   = "/api/nodes"
	defaultSummaryAPI = "/api/cluster-summary"
)

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryCount    int
	RetryWaitTime time.Duration
}

func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		Timeout:       30 * time.Second,
		RetryCount:    2,
		RetryWaitTime: 500 * time.Millisecond,
	}
}

// Repo reads another gpudash server over HTTP.
type Repo struct {
	api *resty.Client
}

func New(cfg *Config) *Repo {
	api := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(4*cfg.RetryWaitTime).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	return &Repo{api: api}
}

func (r *Repo) ListClusters(ctx context.Context) ([]domain.ClusterInfo, error) {
	var out []domain.ClusterInfo
	if err := r.get(ctx, clustersAPI, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListNodes(ctx context.Context, cluster string) ([]domain.Node, error) {
	var out []domain.Node
	path := defaultNodesAPI
	if cluster != "" {
		path = clusterNodesAPI
	}
	if err := r.get(ctx, path, cluster, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Node{}
	}
	return out, nil
}

func (r *Repo) GetSummary(ctx context.Context, cluster string) (domain.ClusterSummary, error) {
	var out domain.ClusterSummary
	path := defaultSummaryAPI
	if cluster != "" {
		path = clusterSummaryAPI
	}
	if err := r.get(ctx, path, cluster, &out); err != nil {
		return domain.ClusterSummary{}, err
	}
	return out, nil
}

func (r *Repo) get(ctx context.Context, path, cluster string, result any) error {
	req := r.api.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(result)
	if cluster != "" {
		req.SetPathParam("name", cluster)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
