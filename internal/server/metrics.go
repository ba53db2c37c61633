package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

const namespace = "gpudash"

// Recorder owns a private registry with HTTP and occupancy metrics.
type Recorder struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	utilization *prometheus.GaugeVec
	nodes       *prometheus.GaugeVec
	gpus        *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "utilization_percent",
			Help:      "Requested share of allocatable capacity from the last served summary.",
		}, []string{"cluster", "resource"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Node count from the last served summary.",
		}, []string{"cluster", "state"}),
		gpus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gpus",
			Help:      "GPUs per model from the last served summary.",
		}, []string{"cluster", "gpu_type", "kind"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests, r.duration, r.utilization, r.nodes, r.gpus,
	)
	return r
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		r.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveSummary exports s under cluster; "" stands for the default cluster.
func (r *Recorder) ObserveSummary(cluster string, s domain.ClusterSummary) {
	if cluster == "" {
		cluster = "default"
	}
	r.utilization.WithLabelValues(cluster, "cpu").Set(s.CPU.UtilizationPercent)
	r.utilization.WithLabelValues(cluster, "memory").Set(s.Memory.UtilizationPercent)
	r.utilization.WithLabelValues(cluster, "gpu").Set(s.GPU.UtilizationPercent)
	r.nodes.WithLabelValues(cluster, "total").Set(float64(s.NodeCount))
	r.nodes.WithLabelValues(cluster, "ready").Set(float64(s.ReadyNodeCount))

	r.gpus.DeletePartialMatch(prometheus.Labels{"cluster": cluster})
	for _, t := range s.GPUByType {
		r.gpus.WithLabelValues(cluster, t.GPUType, "allocatable").Set(float64(t.Allocatable))
		r.gpus.WithLabelValues(cluster, t.GPUType, "used").Set(float64(t.Used))
	}
}
