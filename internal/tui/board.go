package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Amna-05/quadro/internal/drag"
	"github.com/Amna-05/quadro/internal/mutation"
	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/pkg/models"
)

// BoardModel is the kanban status board: one column per lifecycle status,
// cards draggable between columns, every key intent acting on the selected
// card.
type BoardModel struct {
	session

	col     int
	row     int
	offsets [3]int
}

// NewBoard creates the board view over the shared machinery.
func NewBoard(deps Deps) BoardModel {
	return BoardModel{session: newSession(deps)}
}

func (m BoardModel) Init() tea.Cmd {
	return m.loadCmd()
}

// boardLayout fixes the cell geometry one frame renders with. All drop
// targets and card bounds derive from it, so hit testing and rendering can
// never disagree.
type boardLayout struct {
	colW   int
	innerH int
	top    int
}

func (m BoardModel) layout() boardLayout {
	w := m.width
	if w < 48 {
		w = 48
	}
	h := m.height
	if h < 16 {
		h = 16
	}
	innerH := h - 8
	if innerH < 4 {
		innerH = 4
	}
	return boardLayout{colW: w / 3, innerH: innerH, top: 4}
}

func (l boardLayout) columnRect(i int) drag.Rect {
	return drag.Rect{X: i * l.colW, Y: l.top, W: l.colW, H: l.innerH + 2}
}

// cardRect is the bounds of the card at visible row vi inside column i:
// inside the border and padding, below the header and its blank line.
func (l boardLayout) cardRect(i, vi int) drag.Rect {
	return drag.Rect{X: i*l.colW + 2, Y: l.top + 3 + vi, W: l.colW - 4, H: 1}
}

func (l boardLayout) cardRows() int {
	return l.innerH - 2
}

// groups projects the collection into the three status columns, with
// grace-period holds keeping just-completed cards in their former column.
func (m BoardModel) groups() []projection.Group {
	snap := m.deps.Collection.Snapshot()
	spec := m.deps.Composer.Spec(projection.GroupByStatus, projection.SortByPriority)
	gs := m.deps.Engine.Project(snap, spec, m.now())
	return m.applyHolds(gs, func(t models.Task) string { return string(t.Status) })
}

func (m BoardModel) selectedTask() (models.Task, bool) {
	gs := m.groups()
	if m.col < 0 || m.col >= len(gs) {
		return models.Task{}, false
	}
	tasks := gs[m.col].Tasks
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	row := m.row
	if row >= len(tasks) {
		row = len(tasks) - 1
	}
	return tasks[row], true
}

// ensureVisible clamps the selection into the current column and scrolls
// the column window so the selected row stays on screen.
func (m *BoardModel) ensureVisible() {
	gs := m.groups()
	if m.col < 0 {
		m.col = 0
	}
	if m.col >= len(gs) {
		m.col = len(gs) - 1
	}
	n := len(gs[m.col].Tasks)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}

	rows := m.layout().cardRows()
	if n <= rows {
		m.offsets[m.col] = 0
		return
	}
	shown := rows - 1
	offset := m.offsets[m.col]
	if m.row < offset {
		offset = m.row
	}
	if m.row >= offset+shown {
		offset = m.row - shown + 1
	}
	if offset > n-shown {
		offset = n - shown
	}
	if offset < 0 {
		offset = 0
	}
	m.offsets[m.col] = offset
}

func (m BoardModel) targets() []drag.Target {
	l := m.layout()
	statuses := models.AllStatuses()
	targets := make([]drag.Target, 0, len(statuses))
	for i, s := range statuses {
		targets = append(targets, drag.Target{
			Kind:   drag.TargetStatusColumn,
			Status: s,
			Bounds: l.columnRect(i),
		})
	}
	return targets
}

// cardHit is one card located under the pointer.
type cardHit struct {
	task   models.Task
	target drag.Target
	bounds drag.Rect
	group  int
	index  int
}

func (m BoardModel) cardAt(p drag.Point) (cardHit, bool) {
	l := m.layout()
	targets := m.targets()
	for c, g := range m.groups() {
		start, end, _ := visibleWindow(len(g.Tasks), m.offsets[c], l.cardRows())
		for i := start; i < end; i++ {
			r := l.cardRect(c, i-start)
			if r.Contains(p) {
				return cardHit{task: g.Tasks[i], target: targets[c], bounds: r, group: c, index: i}, true
			}
		}
	}
	return cardHit{}, false
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handled, cmd := m.handleShared(msg); handled {
		m.ensureVisible()
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m BoardModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
		case "esc":
			m.filtering = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.deps.Composer.SetText("")
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.deps.Composer.SetText(m.filterInput.Value())
			m.ensureVisible()
			return m, cmd
		}
		m.ensureVisible()
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Cancel):
		switch {
		case m.drag.Dragging():
			m.drag.Cancel()
		case m.deps.Composer.Active():
			m.deps.Composer.ResetAll()
			m.filterInput.SetValue("")
			m.ensureVisible()
		default:
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, keys.Left), key.Matches(msg, keys.PrevPane):
		m.col = (m.col + 2) % 3
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextPane):
		m.col = (m.col + 1) % 3
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, keys.Up):
		m.row--
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, keys.Down):
		m.row++
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			kind := mutation.CommandComplete
			if t.Status == models.StatusDone {
				kind = mutation.CommandUncomplete
			}
			cmd := m.submit(mutation.Command{Kind: kind, TaskID: t.ID})
			m.ensureVisible()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if t, ok := m.selectedTask(); ok {
			cmd := m.submit(mutation.Command{Kind: mutation.CommandDelete, TaskID: t.ID})
			m.ensureVisible()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, keys.Move):
		if t, ok := m.selectedTask(); ok {
			if next, ok := adjacentStatus(t.Status, msg.String() == "]"); ok {
				cmd := m.submit(mutation.Command{Kind: mutation.CommandStatusChange, TaskID: t.ID, Status: next})
				m.ensureVisible()
				return m, cmd
			}
		}
		return m, nil

	case key.Matches(msg, keys.Quad):
		if t, ok := m.selectedTask(); ok {
			q := models.AllQuadrants()[int(msg.String()[0]-'1')]
			urgent, important := q.Attributes()
			if t.Urgent != urgent || t.Important != important {
				cmd := m.submit(mutation.Command{Kind: mutation.CommandReclassify, TaskID: t.ID, Urgent: urgent, Important: important})
				m.ensureVisible()
				return m, cmd
			}
		}
		return m, nil

	case key.Matches(msg, keys.Filter):
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, m.loadCmd()
	}
	return m, nil
}

func (m BoardModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	pt := drag.Point{X: msg.X, Y: msg.Y}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.row--
		m.ensureVisible()
		return m, nil

	case msg.Button == tea.MouseButtonWheelDown:
		m.row++
		m.ensureVisible()
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if hit, ok := m.cardAt(pt); ok {
			m.col, m.row = hit.group, hit.index
			m.ensureVisible()
			m.drag.Press(hit.task, hit.target, hit.bounds, pt)
		}
		return m, nil

	case msg.Action == tea.MouseActionMotion:
		m.drag.Move(pt)
		return m, nil

	case msg.Action == tea.MouseActionRelease:
		if cmd, ok := m.drag.Release(m.targets()); ok {
			teaCmd := m.submit(dragCommand(cmd))
			m.ensureVisible()
			return m, teaCmd
		}
		return m, nil
	}
	return m, nil
}

// adjacentStatus steps through the column order. The second return is false
// at either end.
func adjacentStatus(s models.Status, forward bool) (models.Status, bool) {
	order := models.AllStatuses()
	for i, cur := range order {
		if cur != s {
			continue
		}
		if forward && i+1 < len(order) {
			return order[i+1], true
		}
		if !forward && i > 0 {
			return order[i-1], true
		}
		return s, false
	}
	return s, false
}

func (m BoardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Quadro Board ")
	help := helpLine(keys.Toggle, keys.Move, keys.Delete, keys.Filter, keys.Refresh, keys.Quit)

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading tasks...\n\n%s", title, help)
	}
	if m.loadErr != nil {
		return fmt.Sprintf("%s\n\n  Error: %v\n\n%s", title, m.loadErr, helpLine(keys.Refresh, keys.Quit))
	}

	l := m.layout()
	gs := m.groups()
	cols := make([]string, 0, len(gs))
	for i, g := range gs {
		cols = append(cols, m.renderColumn(i, g, l))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	return strings.Join([]string{title, "", m.filterLine(), "", body, m.noticeLine(), help}, "\n")
}

func (m BoardModel) renderColumn(i int, g projection.Group, l boardLayout) string {
	status := models.AllStatuses()[i]
	header := columnHeaderStyle.Foreground(statusColors[status]).Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Tasks)))
	lines := []string{header, ""}

	selRow := m.row
	if selRow >= len(g.Tasks) {
		selRow = len(g.Tasks) - 1
	}

	start, end, footer := visibleWindow(len(g.Tasks), m.offsets[i], l.cardRows())
	for idx := start; idx < end; idx++ {
		t := g.Tasks[idx]
		selected := i == m.col && idx == selRow
		lines = append(lines, m.renderCard(t, l.colW-4, selected, quadrantColors[t.Quadrant()]))
	}
	if footer != "" {
		lines = append(lines, helpStyle.Render(footer))
	}

	style := columnStyle
	if m.dropHover(l.columnRect(i)) {
		style = columnActiveStyle
	}
	return style.Width(l.colW - 2).Height(l.innerH).Render(strings.Join(lines, "\n"))
}
