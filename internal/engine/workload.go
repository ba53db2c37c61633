package engine

import (
	"sort"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

// Mode selects how pods are matched into a workload view.
type Mode string

const (
	ModeOwner Mode = "owner"
	ModeLabel Mode = "label"
)

type WorkloadQuery struct {
	Mode   Mode
	Owners Selection
	Label  LabelFilter
}

// Active reports whether the query can match anything at all.
func (q WorkloadQuery) Active() bool { return q.matcher() != nil }

func (q WorkloadQuery) matcher() func(domain.Pod) bool {
	switch q.Mode {
	case ModeOwner:
		if len(q.Owners) == 0 {
			return nil
		}
		set := q.Owners.Set()
		return func(p domain.Pod) bool {
			_, ok := set[p.OwnerKey()]
			return ok
		}
	case ModeLabel:
		if !q.Label.Active() {
			return nil
		}
		return q.Label.Matches
	}
	return nil
}

// PodRef is a matched pod with the context of the node it runs on.
type PodRef struct {
	Pod         domain.Pod `json:"pod"`
	NodeName    string     `json:"node_name"`
	ClusterName string     `json:"cluster_name"`
	NodeReady   bool       `json:"node_ready"`
}

// Usage sums pod resource requests.
type Usage struct {
	GPU       int64 `json:"gpu"`
	CPUMillis int64 `json:"cpu_millis"`
	MemBytes  int64 `json:"mem_bytes"`
}

func (u *Usage) add(p domain.Pod) {
	u.GPU += p.GPURequest
	u.CPUMillis += p.CPURequestMillicores
	u.MemBytes += p.MemoryRequestBytes
}

type NodeGroup struct {
	NodeName    string       `json:"node_name"`
	ClusterName string       `json:"cluster_name"`
	Ready       bool         `json:"ready"`
	Pods        []domain.Pod `json:"pods"`
	Usage
}

type OwnerGroup struct {
	Owner     domain.OwnerKey `json:"owner"`
	Key       string          `json:"key"`
	Pods      []PodRef        `json:"pods"`
	NodeCount int             `json:"node_count"`
	Usage
}

type Totals struct {
	Pods  int `json:"pods"`
	Nodes int `json:"nodes"`
	Usage
}

type WorkloadView struct {
	Pods    []PodRef     `json:"pods"`
	ByNode  []NodeGroup  `json:"by_node"`
	ByOwner []OwnerGroup `json:"by_owner"`
	Totals  Totals       `json:"totals"`
}

// nodeID keeps same-named nodes of different clusters apart in merged views.
type nodeID struct {
	cluster, node string
}

// BuildWorkloadView matches pods once and derives the flat list, both
// roll-ups and the totals from that single pass. Groups are sorted by node
// name (then cluster) and by the owner's Kind/Name key, so equal inputs always
// produce identical views.
func BuildWorkloadView(nodes []domain.Node, q WorkloadQuery) WorkloadView {
	view := WorkloadView{Pods: []PodRef{}, ByNode: []NodeGroup{}, ByOwner: []OwnerGroup{}}
	match := q.matcher()
	if match == nil {
		return view
	}

	byNode := map[nodeID]*NodeGroup{}
	byOwner := map[domain.OwnerKey]*OwnerGroup{}
	ownerNodes := map[domain.OwnerKey]map[nodeID]struct{}{}
	for _, n := range nodes {
		id := nodeID{cluster: n.Cluster, node: n.Name}
		for _, p := range n.Pods {
			if !match(p) {
				continue
			}
			ref := PodRef{Pod: p, NodeName: n.Name, ClusterName: n.Cluster, NodeReady: n.ConditionsReady}
			view.Pods = append(view.Pods, ref)
			view.Totals.add(p)

			ng, ok := byNode[id]
			if !ok {
				ng = &NodeGroup{NodeName: n.Name, ClusterName: n.Cluster, Ready: n.ConditionsReady}
				byNode[id] = ng
			}
			ng.Pods = append(ng.Pods, p)
			ng.add(p)

			k := p.OwnerKey()
			og, ok := byOwner[k]
			if !ok {
				og = &OwnerGroup{Owner: k, Key: k.String()}
				byOwner[k] = og
				ownerNodes[k] = map[nodeID]struct{}{}
			}
			og.Pods = append(og.Pods, ref)
			og.add(p)
			ownerNodes[k][id] = struct{}{}
		}
	}

	for _, ng := range byNode {
		view.ByNode = append(view.ByNode, *ng)
	}
	sort.Slice(view.ByNode, func(i, j int) bool {
		a, b := view.ByNode[i], view.ByNode[j]
		if a.NodeName != b.NodeName {
			return a.NodeName < b.NodeName
		}
		return a.ClusterName < b.ClusterName
	})

	for k, og := range byOwner {
		og.NodeCount = len(ownerNodes[k])
		view.ByOwner = append(view.ByOwner, *og)
	}
	sort.Slice(view.ByOwner, func(i, j int) bool {
		return view.ByOwner[i].Key < view.ByOwner[j].Key
	})

	view.Totals.Pods = len(view.Pods)
	view.Totals.Nodes = len(view.ByNode)
	return view
}
