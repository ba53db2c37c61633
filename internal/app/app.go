// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
	"github.com/Wonki4/k8s-report-dashboard/internal/engine"
	"github.com/Wonki4/k8s-report-dashboard/internal/poller"
	"github.com/Wonki4/k8s-report-dashboard/internal/ui/styles"
	"github.com/Wonki4/k8s-report-dashboard/internal/ui/widgets"
)

type View int

const (
	ViewNodes View = iota
	ViewWorkloads
)

type GroupBy int

const (
	GroupByNode GroupBy = iota
	GroupByOwner
)

type pickerKind int

const (
	pickNone pickerKind = iota
	pickCluster
	pickLabelKey
	pickLabelValue
	pickOwner
)

const allClustersLabel = "All Clusters"

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	repo   domain.TelemetryRepo
	poller *poller.Poller

	state    poller.State
	clusters []domain.ClusterInfo
	err      error // cluster list

	view    View
	filter  engine.LabelFilter // nodes view
	query   engine.WorkloadQuery
	groupBy GroupBy

	// picker overlay
	picker     pickerKind
	pickTable  table.Model
	pickValues []string
	pendingKey string

	// owner picker
	search      textinput.Model
	searching   bool
	ownerCursor int

	table         table.Model
	width, height int
}

// New starts polling scope ("" for the active cluster) and returns the model
// waiting for its first result.
func New(repo domain.TelemetryRepo, p *poller.Poller, scope string) Model {
	ctx, cancel := context.WithCancel(context.Background())

	t := table.New()
	t.SetHeight(12)
	t.SetWidth(100)
	t.Focus()

	pt := table.New()
	pt.SetHeight(10)
	pt.SetWidth(44)

	in := textinput.New()
	in.Placeholder = "search owners"
	in.Prompt = "/ "

	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		repo:      repo,
		poller:    p,
		view:      ViewNodes,
		query:     engine.WorkloadQuery{Mode: engine.ModeOwner},
		table:     t,
		pickTable: pt,
		search:    in,
	}
	m.state = m.state.Switch(p.SetScope(scope), scope)
	m.rebuildTable()
	return m
}

type resultMsg poller.Result
type clustersMsg []domain.ClusterInfo
type pollerDone struct{}
type errMsg struct{ error }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadClusters(), waitResult(m.poller.Results()))
}

func waitResult(ch <-chan poller.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return pollerDone{}
		}
		return resultMsg(r)
	}
}

func (m Model) loadClusters() tea.Cmd {
	return func() tea.Msg {
		cs, err := m.repo.ListClusters(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return clustersMsg(cs)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.rebuildTable()
		return m, nil

	case resultMsg:
		m.state = m.state.Apply(poller.Result(msg))
		m.rebuildTable()
		return m, waitResult(m.poller.Results())

	case pollerDone:
		return m, nil

	case clustersMsg:
		m.clusters = msg
		m.err = nil
		return m, nil

	case errMsg:
		m.err = msg.error
		return m, nil

	case tea.KeyMsg:
		if m.picker == pickOwner {
			return m.updateOwnerPicker(msg)
		}
		if m.picker != pickNone {
			return m.updatePicker(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit

		case "tab":
			if m.view == ViewNodes {
				m.view = ViewWorkloads
			} else {
				m.view = ViewNodes
			}
			m.table.SetCursor(0)
			m.rebuildTable()
			return m, nil

		case "c":
			m.openClusterPicker()
			return m, nil

		case "l":
			if m.view == ViewWorkloads && m.query.Mode != engine.ModeLabel {
				return m, nil
			}
			m.openPicker(pickLabelKey, engine.LabelKeys(m.nodes()), nil)
			return m, nil

		case "x":
			if m.view == ViewNodes {
				m.filter = engine.LabelFilter{}
			} else if m.query.Mode == engine.ModeOwner {
				m.query.Owners = nil
			} else {
				m.query.Label = engine.LabelFilter{}
			}
			m.rebuildTable()
			return m, nil

		case "m":
			if m.view != ViewWorkloads {
				return m, nil
			}
			if m.query.Mode == engine.ModeOwner {
				m.query.Mode = engine.ModeLabel
			} else {
				m.query.Mode = engine.ModeOwner
			}
			m.table.SetCursor(0)
			m.rebuildTable()
			return m, nil

		case "o":
			if m.view != ViewWorkloads || m.query.Mode != engine.ModeOwner {
				return m, nil
			}
			m.picker = pickOwner
			m.ownerCursor = 0
			return m, nil

		case "g":
			if m.groupBy == GroupByNode {
				m.groupBy = GroupByOwner
			} else {
				m.groupBy = GroupByNode
			}
			m.table.SetCursor(0)
			m.rebuildTable()
			return m, nil

		case "r":
			m.poller.Refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// nodes is the unfiltered node list of the current snapshot.
func (m Model) nodes() []domain.Node {
	if m.state.Snapshot == nil {
		return nil
	}
	return m.state.Snapshot.Nodes
}

func (m *Model) resize() {
	headerH := lipgloss.Height(m.renderHeader())
	footerH := lipgloss.Height(styles.Footer.Render("x"))
	base := m.height - headerH - footerH - 2
	if base < 5 {
		base = 5
	}
	m.table.SetHeight(base)
	m.table.SetWidth(m.width - 4)
}

// -------- pickers --------

func (m *Model) openPicker(kind pickerKind, values, labels []string) {
	if labels == nil {
		labels = values
	}
	title := map[pickerKind]string{
		pickCluster:    "Cluster",
		pickLabelKey:   "Label key",
		pickLabelValue: "Value of " + m.pendingKey,
	}[kind]

	rows := make([]table.Row, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, table.Row{l})
	}
	m.pickTable.SetColumns([]table.Column{{Title: title, Width: 40}})
	m.pickTable.SetRows(rows)
	m.pickTable.SetCursor(0)
	m.pickTable.Focus()
	m.pickValues = values
	m.picker = kind
}

func (m *Model) openClusterPicker() {
	values := []string{domain.AllClusters}
	labels := []string{allClustersLabel}
	cur := 0
	for _, c := range m.clusters {
		values = append(values, c.Name)
		labels = append(labels, c.Name)
		if c.Name == m.state.Scope || (m.state.Scope == "" && c.IsActive) {
			cur = len(values) - 1
		}
	}
	m.openPicker(pickCluster, values, labels)
	m.pickTable.SetCursor(cur)
}

func (m *Model) closePicker() {
	m.picker = pickNone
	m.pickTable.Blur()
	m.pendingKey = ""
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePicker()
		return m, nil

	case "enter":
		if len(m.pickValues) == 0 {
			m.closePicker()
			return m, nil
		}
		v := m.pickValues[clamp(m.pickTable.Cursor(), 0, len(m.pickValues)-1)]
		switch m.picker {
		case pickCluster:
			m.closePicker()
			m.setScope(v)
		case pickLabelKey:
			m.pendingKey = v
			m.openPicker(pickLabelValue, engine.LabelValues(m.nodes(), v), nil)
		case pickLabelValue:
			f := engine.LabelFilter{Key: m.pendingKey, Value: v}
			if m.view == ViewNodes {
				m.filter = f
			} else {
				m.query.Label = f
			}
			m.closePicker()
			m.table.SetCursor(0)
			m.rebuildTable()
		}
		return m, nil

	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.pickTable, cmd = m.pickTable.Update(msg)
		return m, cmd
	}
	return m, nil
}

// setScope switches the poller to a new scope. The node filter is reset
// because label values rarely carry over between clusters.
func (m *Model) setScope(scope string) {
	if scope == m.state.Scope {
		return
	}
	m.state = m.state.Switch(m.poller.SetScope(scope), scope)
	m.filter = engine.LabelFilter{}
	m.table.SetCursor(0)
	m.rebuildTable()
}

func (m Model) visibleOwners() []engine.Owner {
	return engine.SearchOwners(engine.CollectOwners(m.nodes()), m.search.Value())
}

func (m Model) updateOwnerPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc", "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.ownerCursor = 0
		return m, cmd
	}

	visible := m.visibleOwners()
	switch msg.String() {
	case "esc", "enter", "o", "q":
		m.picker = pickNone
		return m, nil
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "up", "k":
		m.ownerCursor = clamp(m.ownerCursor-1, 0, max(len(visible)-1, 0))
		return m, nil
	case "down", "j":
		m.ownerCursor = clamp(m.ownerCursor+1, 0, max(len(visible)-1, 0))
		return m, nil
	case " ":
		if len(visible) > 0 {
			o := visible[clamp(m.ownerCursor, 0, len(visible)-1)]
			m.query.Owners = m.query.Owners.Toggle(o.OwnerKey)
		}
	case "a":
		m.query.Owners = engine.SelectAllVisible(m.query.Owners, visible)
	case "d":
		m.query.Owners = engine.DeselectVisible(m.query.Owners, visible, m.search.Value())
	default:
		return m, nil
	}
	m.rebuildTable()
	return m, nil
}

// -------- table --------

func (m *Model) rebuildTable() {
	var cols []table.Column
	var rows []table.Row
	if m.view == ViewNodes {
		cols, rows = m.nodeTable()
	} else {
		cols, rows = m.workloadTable()
	}
	// Old rows may be narrower than the new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if cur := m.table.Cursor(); cur < 0 || cur >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *Model) nodeTable() ([]table.Column, []table.Row) {
	all := m.state.Scope == domain.AllClusters
	wCluster, wNode, wType, wBar := nodeColWidths(m.table.Width(), all)

	var cols []table.Column
	if all {
		cols = append(cols, table.Column{Title: "CLUSTER", Width: wCluster})
	}
	cols = append(cols,
		table.Column{Title: "NODE", Width: wNode},
		table.Column{Title: "READY", Width: 6},
		table.Column{Title: "GPU TYPE", Width: wType},
		table.Column{Title: "GPU", Width: 7},
		table.Column{Title: "", Width: wBar},
		table.Column{Title: "CPU%", Width: 6},
		table.Column{Title: "MEM%", Width: 6},
		table.Column{Title: "PODS", Width: 5},
	)

	var rows []table.Row
	for _, n := range m.filter.Apply(m.nodes()) {
		gpu := engine.Utilization(n.GPUUsed, n.GPUAllocatable)
		ready := "yes"
		if !n.ConditionsReady {
			ready = "no"
		}
		var row table.Row
		if all {
			row = append(row, n.Cluster)
		}
		row = append(row,
			n.Name,
			ready,
			n.GPUType,
			fmt.Sprintf("%d/%d", n.GPUUsed, n.GPUAllocatable),
			widgets.Bar(gpu/100, wBar-1),
			pct(engine.Utilization(n.CPUUsedMillicores, n.CPUAllocatableMillicores)),
			pct(engine.Utilization(n.MemoryUsedBytes, n.MemoryAllocatableBytes)),
			fmt.Sprintf("%d", len(n.Pods)),
		)
		rows = append(rows, row)
	}
	return cols, rows
}

func (m *Model) workloadTable() ([]table.Column, []table.Row) {
	wName, wWhere := workloadColWidths(m.table.Width())
	where := "OWNER"
	if m.groupBy == GroupByOwner {
		where = "NODE"
	}
	cols := []table.Column{
		{Title: "NAME", Width: wName},
		{Title: where, Width: wWhere},
		{Title: "GPU", Width: 4},
		{Title: "CPU", Width: 7},
		{Title: "MEM", Width: 10},
		{Title: "STATUS", Width: 10},
	}

	view := engine.BuildWorkloadView(m.nodes(), m.query)
	var rows []table.Row
	switch m.groupBy {
	case GroupByNode:
		for _, g := range view.ByNode {
			status := "Ready"
			if !g.Ready {
				status = "NotReady"
			}
			rows = append(rows, usageRow("▾ "+nodeLabel(g.ClusterName, g.NodeName),
				fmt.Sprintf("%d pods", len(g.Pods)), g.Usage, status))
			for _, p := range g.Pods {
				rows = append(rows, podRow(p, p.OwnerKey().String()))
			}
		}
	case GroupByOwner:
		for _, g := range view.ByOwner {
			rows = append(rows, usageRow("▾ "+g.Key,
				fmt.Sprintf("%d pods on %d nodes", len(g.Pods), g.NodeCount), g.Usage, ""))
			for _, ref := range g.Pods {
				rows = append(rows, podRow(ref.Pod, nodeLabel(ref.ClusterName, ref.NodeName)))
			}
		}
	}
	return cols, rows
}

func usageRow(name, where string, u engine.Usage, status string) table.Row {
	return table.Row{
		name,
		where,
		fmt.Sprintf("%d", u.GPU),
		engine.FormatCores(u.CPUMillis),
		engine.FormatBytes(u.MemBytes),
		status,
	}
}

func podRow(p domain.Pod, where string) table.Row {
	return table.Row{
		"  " + p.Namespace + "/" + p.Name,
		where,
		fmt.Sprintf("%d", p.GPURequest),
		engine.FormatCores(p.CPURequestMillicores),
		engine.FormatBytes(p.MemoryRequestBytes),
		string(p.Phase),
	}
}

// -------- view --------

func (m Model) View() string {
	head := m.renderHeader()
	body := lipgloss.NewStyle().Padding(0, 1).Render(m.table.View())
	if m.state.Snapshot == nil {
		body = styles.Faint.Padding(1, 2).Render(m.emptyText())
	} else if m.view == ViewWorkloads && !m.query.Active() {
		body = styles.Faint.Padding(1, 2).Render(m.emptyText())
	}
	main := lipgloss.JoinVertical(lipgloss.Left, head, body, m.renderFooter())

	if m.picker == pickNone {
		return main
	}
	box := styles.Box.BorderForeground(lipgloss.Color("#7DCE13")).Width(50)
	var content string
	if m.picker == pickOwner {
		content = m.renderOwnerPicker()
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left,
			styles.Title.Render(" Select (↑/↓, Enter, Esc) "),
			m.pickTable.View(),
		)
	}
	overlay := lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box.Render(content),
	)
	return main + "\n" + overlay
}

func (m Model) emptyText() string {
	switch {
	case m.state.Snapshot == nil && m.state.Err != nil:
		return "No data: " + m.state.Err.Error()
	case m.state.Snapshot == nil:
		return "Loading " + m.scopeLabel() + "…"
	case m.query.Mode == engine.ModeOwner:
		return "Select one or more owners with [o]."
	default:
		return "Pick a label with [l]."
	}
}

func (m Model) scopeLabel() string {
	switch m.state.Scope {
	case domain.AllClusters:
		return allClustersLabel
	case "":
		for _, c := range m.clusters {
			if c.IsActive {
				return c.Name
			}
		}
		return "current context"
	}
	return m.state.Scope
}

func (m Model) renderHeader() string {
	views := []string{"Nodes", "Workloads"}
	for i, v := range views {
		if View(i) == m.view {
			views[i] = styles.TabActive.Render(v)
		} else {
			views[i] = styles.Tab.Render(v)
		}
	}
	updated := "—"
	if !m.state.UpdatedAt.IsZero() {
		updated = m.state.UpdatedAt.Format("15:04:05")
	}
	lines := []string{
		styles.Header.Render(fmt.Sprintf("%s  │ cluster: %s  │ %s  │ updated %s",
			styles.Title.Render("gpudash"), m.scopeLabel(), strings.Join(views, " "), updated)),
	}

	if m.state.Snapshot != nil {
		s := m.state.Snapshot.Summary
		lines = append(lines,
			meter("CPU", s.CPU),
			meter("MEM", s.Memory),
			meter("GPU", s.GPU),
		)
		if t := gpuTypes(s.GPUByType); t != "" {
			lines = append(lines, styles.Faint.Render(t))
		}

		st := engine.Stats(m.filter.Apply(m.nodes()))
		chips := []string{
			fmt.Sprintf("nodes %d/%d ready", s.ReadyNodeCount, s.NodeCount),
			fmt.Sprintf("pods %d", st.Pods),
			fmt.Sprintf("gpu %d/%d", st.GPUUsed, st.GPUAllocatable),
			fmt.Sprintf("gpu pods %d", st.GPUPods),
		}
		if m.filter.Active() {
			chips = append(chips, styles.Selected.Render("filter "+m.filter.String()))
		}
		lines = append(lines, strings.Join(chips, "  "))
	}

	if m.view == ViewWorkloads {
		lines = append(lines, m.workloadLine())
	}
	return strings.Join(lines, "\n")
}

func (m Model) workloadLine() string {
	group := "node"
	if m.groupBy == GroupByOwner {
		group = "owner"
	}
	var sel string
	if m.query.Mode == engine.ModeOwner {
		sel = fmt.Sprintf("%d owners", len(m.query.Owners))
	} else if m.query.Label.Active() {
		sel = m.query.Label.String()
	} else {
		sel = "no label"
	}
	t := engine.BuildWorkloadView(m.nodes(), m.query).Totals
	return styles.Header.Render(fmt.Sprintf(
		"mode: %s (%s)  group: %s  │ pods %d  nodes %d  gpu %d  cpu %s cores  mem %s",
		m.query.Mode, sel, group, t.Pods, t.Nodes, t.GPU, engine.FormatCores(t.CPUMillis), engine.FormatBytes(t.MemBytes)))
}

func (m Model) renderFooter() string {
	keys := "↑/↓ move • [Tab] view • [c] cluster • [l] label • [x] clear • [r] refresh • [q] quit"
	if m.view == ViewWorkloads {
		keys = "↑/↓ move • [Tab] view • [m] mode • [o] owners • [l] label • [g] group • [x] clear • [q] quit"
	}
	footer := styles.Footer.Render(keys)

	var errs []string
	if m.state.Err != nil {
		errs = append(errs, m.state.Err.Error())
	}
	if m.err != nil {
		errs = append(errs, "clusters: "+m.err.Error())
	}
	if len(errs) > 0 {
		footer += "\n" + styles.Danger.Render("error: "+strings.Join(errs, "; "))
	}
	return footer
}

func (m Model) renderOwnerPicker() string {
	visible := m.visibleOwners()
	lines := []string{
		styles.Title.Render(" Owners ([/] search, Space toggle, [a] all, [d] none, Esc) "),
		m.search.View(),
	}
	if len(visible) == 0 {
		lines = append(lines, styles.Faint.Render("no matching owners"))
	}

	const window = 12
	start := clamp(m.ownerCursor-window/2, 0, max(len(visible)-window, 0))
	end := min(start+window, len(visible))
	for i := start; i < end; i++ {
		o := visible[i]
		mark := "[ ]"
		if m.query.Owners.Contains(o.OwnerKey) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%d)", mark, o.OwnerKey, o.Count)
		if i == m.ownerCursor && !m.searching {
			line = styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, styles.Faint.Render(fmt.Sprintf("%d selected", len(m.query.Owners))))
	return strings.Join(lines, "\n")
}

func meter(label string, r domain.ResourceStat) string {
	bar := styles.ForPercent(r.UtilizationPercent).Render(widgets.Percent(r.UtilizationPercent, 24))
	return fmt.Sprintf("%s %s %5.1f%%  %s used of %s, %s free",
		label, bar, r.UtilizationPercent, r.UsedDisplay, r.TotalDisplay, r.AvailableDisplay)
}

func gpuTypes(stats []domain.GPUTypeStat) string {
	parts := make([]string, 0, len(stats))
	for _, t := range stats {
		parts = append(parts, fmt.Sprintf("%s %d/%d (%.1f%%)", t.GPUType, t.Used, t.Allocatable, t.UtilizationPercent))
	}
	return strings.Join(parts, " · ")
}
