package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
	"github.com/Wonki4/k8s-report-dashboard/internal/poller"
)

func fail(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// labelFilter reads label_key/label_value; a missing half leaves it inactive.
func labelFilter(c *gin.Context) engine.LabelFilter {
	return engine.LabelFilter{Key: c.Query("label_key"), Value: c.Query("label_value")}
}

// nodes loads the nodes of the :name cluster. The default cluster is used on
// routes without it and domain.AllClusters merges every cluster.
func (s *Server) nodes(c *gin.Context) ([]domain.Node, bool) {
	cluster := c.Param("name")
	var (
		nodes []domain.Node
		err   error
	)
	if cluster == domain.AllClusters {
		var snap domain.Snapshot
		snap, err = poller.Fetch(c.Request.Context(), s.repo, cluster, nil)
		nodes = snap.Nodes
	} else {
		nodes, err = s.repo.ListNodes(c.Request.Context(), cluster)
	}
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return nil, false
	}
	return nodes, true
}

func (s *Server) listClusters(c *gin.Context) {
	clusters, err := s.repo.ListClusters(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, clusters)
}

func (s *Server) listNodes(c *gin.Context) {
	nodes, ok := s.nodes(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, labelFilter(c).Apply(nodes))
}

func (s *Server) getSummary(c *gin.Context) {
	cluster := c.Param("name")
	var (
		summary domain.ClusterSummary
		err     error
	)
	if cluster == domain.AllClusters {
		var snap domain.Snapshot
		snap, err = poller.Fetch(c.Request.Context(), s.repo, cluster, nil)
		summary = snap.Summary
	} else {
		summary, err = s.repo.GetSummary(c.Request.Context(), cluster)
	}
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	s.metrics.ObserveSummary(cluster, summary)
	c.JSON(http.StatusOK, summary)
}

func (s *Server) listLabels(c *gin.Context) {
	nodes, ok := s.nodes(c)
	if !ok {
		return
	}
	if key := c.Query("key"); key != "" {
		c.JSON(http.StatusOK, gin.H{"key": key, "values": engine.LabelValues(nodes, key)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": engine.LabelKeys(nodes)})
}

func (s *Server) listOwners(c *gin.Context) {
	nodes, ok := s.nodes(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.SearchOwners(engine.CollectOwners(nodes), c.Query("q")))
}

func (s *Server) getWorkloads(c *gin.Context) {
	q := engine.WorkloadQuery{Mode: engine.Mode(c.DefaultQuery("mode", string(engine.ModeOwner)))}
	switch q.Mode {
	case engine.ModeOwner:
		raw := c.QueryArray("owner")
		bad := lo.Filter(raw, func(s string, _ int) bool {
			_, ok := domain.ParseOwnerKey(s)
			return !ok
		})
		if len(bad) > 0 {
			fail(c, http.StatusBadRequest, fmt.Errorf("malformed owner %q, want kind/name", bad[0]))
			return
		}
		q.Owners = engine.ParseSelection(raw)
	case engine.ModeLabel:
		q.Label = labelFilter(c)
	default:
		fail(c, http.StatusBadRequest, fmt.Errorf("unknown mode %q", q.Mode))
		return
	}

	nodes, ok := s.nodes(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.BuildWorkloadView(nodes, q))
}

func (s *Server) getStats(c *gin.Context) {
	nodes, ok := s.nodes(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.Stats(labelFilter(c).Apply(nodes)))
}
