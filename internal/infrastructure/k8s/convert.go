package k8s

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

func (r *Repo) buildPod(p *corev1.Pod) domain.Pod {
	gpu := corev1.ResourceName(r.opts.GPUResource)
	out := domain.Pod{
		Name:      p.Name,
		Namespace: p.Namespace,
		OwnerKind: "None",
		OwnerName: p.Name,
		Phase:     domain.PodPhase(p.Status.Phase),
		IP:        p.Status.PodIP,
		QOSClass:  string(p.Status.QOSClass),
		Labels:    p.Labels,
	}
	if out.Phase == "" {
		out.Phase = domain.PodUnknown
	}
	if out.Labels == nil {
		out.Labels = map[string]string{}
	}
	if len(p.OwnerReferences) > 0 {
		out.OwnerKind = p.OwnerReferences[0].Kind
		out.OwnerName = p.OwnerReferences[0].Name
	}
	if !p.CreationTimestamp.IsZero() {
		t := p.CreationTimestamp.Time
		out.CreatedAt = &t
	}

	// Requests and limits are summed across all containers.
	for _, c := range p.Spec.Containers {
		req, lim := c.Resources.Requests, c.Resources.Limits
		if q, ok := req[gpu]; ok {
			out.GPURequest += q.Value()
		}
		if q, ok := lim[gpu]; ok {
			out.GPULimit += q.Value()
		}
		out.CPURequestMillicores += req.Cpu().MilliValue()
		out.CPULimitMillicores += lim.Cpu().MilliValue()
		out.MemoryRequestBytes += req.Memory().Value()
		out.MemoryLimitBytes += lim.Memory().Value()
	}

	out.Containers = make([]domain.Container, 0, len(p.Status.ContainerStatuses))
	for _, cs := range p.Status.ContainerStatuses {
		out.Containers = append(out.Containers, buildContainer(cs))
	}
	return out
}

func buildContainer(cs corev1.ContainerStatus) domain.Container {
	c := domain.Container{
		Name:         cs.Name,
		State:        "unknown",
		Ready:        cs.Ready,
		RestartCount: int(cs.RestartCount),
		Image:        cs.Image,
	}
	switch s := cs.State; {
	case s.Running != nil:
		c.State = "running"
		if !s.Running.StartedAt.IsZero() {
			t := s.Running.StartedAt.Time
			c.StartedAt = &t
		}
	case s.Waiting != nil:
		c.State = "waiting"
		c.Reason, c.Message = s.Waiting.Reason, s.Waiting.Message
	case s.Terminated != nil:
		c.State = "terminated"
		c.Reason, c.Message = s.Terminated.Reason, s.Terminated.Message
	}
	return c
}

// buildNode fills capacity from the node object and "used" from the sum of
// the requests of the pods scheduled on it.
func (r *Repo) buildNode(n *corev1.Node, pods []domain.Pod, usage corev1.ResourceList) domain.Node {
	gpu := corev1.ResourceName(r.opts.GPUResource)
	capacity, alloc := n.Status.Capacity, n.Status.Allocatable

	out := domain.Node{
		Name:                     n.Name,
		GPUType:                  r.gpuType(n.Labels),
		CPUTotalMillicores:       capacity.Cpu().MilliValue(),
		CPUAllocatableMillicores: alloc.Cpu().MilliValue(),
		MemoryTotalBytes:         capacity.Memory().Value(),
		MemoryAllocatableBytes:   alloc.Memory().Value(),
		Labels:                   n.Labels,
		Pods:                     pods,
		ConditionsReady:          isReady(n.Status.Conditions),
		OS:                       n.Status.NodeInfo.OSImage,
		Arch:                     n.Labels["kubernetes.io/arch"],
		KubeletVersion:           n.Status.NodeInfo.KubeletVersion,
	}
	if q, ok := capacity[gpu]; ok {
		out.GPUTotal = q.Value()
	}
	if q, ok := alloc[gpu]; ok {
		out.GPUAllocatable = q.Value()
	}
	if out.Labels == nil {
		out.Labels = map[string]string{}
	}
	if out.Pods == nil {
		out.Pods = []domain.Pod{}
	}
	for _, p := range pods {
		out.GPUUsed += p.GPURequest
		out.CPUUsedMillicores += p.CPURequestMillicores
		out.MemoryUsedBytes += p.MemoryRequestBytes
	}

	if usage != nil {
		if q, ok := usage[corev1.ResourceCPU]; ok {
			v := q.MilliValue()
			out.CPUUsageMillicores = &v
		}
		if q, ok := usage[corev1.ResourceMemory]; ok {
			v := q.Value()
			out.MemoryUsageBytes = &v
		}
	}
	return out
}

func (r *Repo) gpuType(labels map[string]string) string {
	for _, key := range r.opts.GPUTypeLabels {
		if v, ok := labels[key]; ok {
			return v
		}
	}
	return "N/A"
}

func isReady(conds []corev1.NodeCondition) bool {
	for _, c := range conds {
		if c.Type == corev1.NodeReady && c.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
