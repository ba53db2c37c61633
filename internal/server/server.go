package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

var (
	readHeaderTimeout = 10 * time.Second
	cancelTimeout     = 10 * time.Second
)

type Options struct {
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	Recorder    *Recorder
}

// Server exposes a TelemetryRepo and the views derived from it over HTTP.
type Server struct {
	repo    domain.TelemetryRepo
	metrics *Recorder
	engine  *gin.Engine
}

func New(repo domain.TelemetryRepo, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = NewRecorder()
	}
	s := &Server{repo: repo, metrics: opts.Recorder, engine: gin.New()}

	s.engine.Use(gin.Recovery(), requestLogger(), s.metrics.middleware())
	s.engine.Use(cors.New(corsConfig(opts.CORSOrigins)))
	s.routes()
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	origins = lo.Compact(lo.Map(origins, func(o string, _ int) string { return strings.TrimSpace(o) }))
	if len(origins) == 0 || lo.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.engine.Group("/api")
	api.GET("/clusters", s.listClusters)
	api.GET("/nodes", s.listNodes)
	api.GET("/cluster-summary", s.getSummary)

	cluster := api.Group("/clusters/:name")
	cluster.GET("/nodes", s.listNodes)
	cluster.GET("/summary", s.getSummary)
	cluster.GET("/labels", s.listLabels)
	cluster.GET("/owners", s.listOwners)
	cluster.GET("/workloads", s.getWorkloads)
	cluster.GET("/stats", s.getStats)
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	klog.InfoS("Starting server", "addr", addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	klog.InfoS("Shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	klog.InfoS("Server exited")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if last := c.Errors.Last(); last != nil || status >= http.StatusInternalServerError {
			var err error
			if last != nil {
				err = last.Err
			}
			klog.ErrorS(err, "Request failed", "method", c.Request.Method,
				"path", c.Request.URL.Path, "status", status, "latency", time.Since(start))
			return
		}
		klog.V(2).InfoS("Request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", status, "latency", time.Since(start))
	}
}
