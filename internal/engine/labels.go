package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

// LabelKeys returns every pod label key present on the nodes, sorted.
func LabelKeys(nodes []domain.Node) []string {
	seen := map[string]struct{}{}
	for _, n := range nodes {
		for _, p := range n.Pods {
			for k := range p.Labels {
				seen[k] = struct{}{}
			}
		}
	}
	keys := lo.Keys(seen)
	sort.Strings(keys)
	return keys
}

// LabelValues returns the values observed for key, sorted. Pods without the
// key contribute nothing.
func LabelValues(nodes []domain.Node, key string) []string {
	seen := map[string]struct{}{}
	if key != "" {
		for _, n := range nodes {
			for _, p := range n.Pods {
				if v, ok := p.Labels[key]; ok {
					seen[v] = struct{}{}
				}
			}
		}
	}
	values := lo.Keys(seen)
	sort.Strings(values)
	return values
}

// LabelFilter is an exact key=value pod filter. The zero value is inactive.
type LabelFilter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (f LabelFilter) Active() bool { return f.Key != "" && f.Value != "" }

func (f LabelFilter) String() string { return f.Key + "=" + f.Value }

// Matches reports whether p carries the label. An inactive filter matches nothing.
func (f LabelFilter) Matches(p domain.Pod) bool {
	return f.Active() && p.Labels[f.Key] == f.Value
}

// Apply keeps only matching pods and drops nodes left without pods. Node
// order is preserved and the input is never modified. An inactive filter
// returns nodes unchanged.
func (f LabelFilter) Apply(nodes []domain.Node) []domain.Node {
	if !f.Active() {
		return nodes
	}
	out := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		pods := lo.Filter(n.Pods, func(p domain.Pod, _ int) bool { return f.Matches(p) })
		if len(pods) == 0 {
			continue
		}
		n.Pods = pods
		out = append(out, n)
	}
	return out
}

// FilterByLabel is LabelFilter{Key: key, Value: value}.Apply(nodes).
func FilterByLabel(nodes []domain.Node, key, value string) []domain.Node {
	return LabelFilter{Key: key, Value: value}.Apply(nodes)
}

// NodeStats are the headline counters of a node list.
type NodeStats struct {
	Nodes          int   `json:"nodes"`
	Pods           int   `json:"pods"`
	GPUUsed        int64 `json:"gpu_used"` // sum of pod GPU requests
	GPUAllocatable int64 `json:"gpu_allocatable"`
	GPUPods        int   `json:"gpu_pods"`
}

func Stats(nodes []domain.Node) NodeStats {
	s := NodeStats{Nodes: len(nodes)}
	for _, n := range nodes {
		s.GPUAllocatable += n.GPUAllocatable
		s.Pods += len(n.Pods)
		for _, p := range n.Pods {
			s.GPUUsed += p.GPURequest
			if p.GPURequest > 0 {
				s.GPUPods++
			}
		}
	}
	return s
}
