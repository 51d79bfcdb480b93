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

// MatrixModel is the 2x2 Eisenhower grid: one cell per quadrant, open tasks
// only, cards draggable between cells. The digit keys 1 to 4 reclassify the
// selected card into the numbered cell.
type MatrixModel struct {
	session

	cell    int
	row     int
	offsets [4]int
}

// NewMatrix creates the matrix view over the shared machinery.
func NewMatrix(deps Deps) MatrixModel {
	return MatrixModel{session: newSession(deps)}
}

func (m MatrixModel) Init() tea.Cmd {
	return m.loadCmd()
}

// matrixLayout fixes the grid geometry one frame renders with. Cells are
// indexed in quadrant priority order: do-first top left, schedule top right,
// delegate bottom left, eliminate bottom right.
type matrixLayout struct {
	cellW  int
	innerH int
	top    int
}

func (m MatrixModel) layout() matrixLayout {
	w := m.width
	if w < 40 {
		w = 40
	}
	h := m.height
	if h < 18 {
		h = 18
	}
	innerH := (h-6)/2 - 2
	if innerH < 4 {
		innerH = 4
	}
	return matrixLayout{cellW: w / 2, innerH: innerH, top: 4}
}

func (l matrixLayout) cellRect(i int) drag.Rect {
	return drag.Rect{
		X: (i % 2) * l.cellW,
		Y: l.top + (i/2)*(l.innerH+2),
		W: l.cellW,
		H: l.innerH + 2,
	}
}

func (l matrixLayout) cardRect(i, vi int) drag.Rect {
	c := l.cellRect(i)
	return drag.Rect{X: c.X + 2, Y: c.Y + 3 + vi, W: l.cellW - 4, H: 1}
}

func (l matrixLayout) cardRows() int {
	return l.innerH - 2
}

// groups projects the open tasks into the four quadrant cells. Done tasks
// leave the matrix, except for just-completed cards held through the grace
// period.
func (m MatrixModel) groups() []projection.Group {
	snap := m.deps.Collection.Snapshot()
	spec := m.deps.Composer.Spec(projection.GroupByQuadrant, projection.SortByPriority)

	inner := spec.Filter
	spec.Filter = func(t models.Task) bool {
		if t.Status == models.StatusDone {
			return false
		}
		return inner == nil || inner(t)
	}
	spec.FilterKey = "open|" + spec.FilterKey

	gs := m.deps.Engine.Project(snap, spec, m.now())
	return m.applyHolds(gs, func(t models.Task) string { return string(t.Quadrant()) })
}

func (m MatrixModel) selectedTask() (models.Task, bool) {
	gs := m.groups()
	if m.cell < 0 || m.cell >= len(gs) {
		return models.Task{}, false
	}
	tasks := gs[m.cell].Tasks
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	row := m.row
	if row >= len(tasks) {
		row = len(tasks) - 1
	}
	return tasks[row], true
}

func (m *MatrixModel) ensureVisible() {
	gs := m.groups()
	if m.cell < 0 {
		m.cell = 0
	}
	if m.cell >= len(gs) {
		m.cell = len(gs) - 1
	}
	n := len(gs[m.cell].Tasks)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}

	rows := m.layout().cardRows()
	if n <= rows {
		m.offsets[m.cell] = 0
		return
	}
	shown := rows - 1
	offset := m.offsets[m.cell]
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
	m.offsets[m.cell] = offset
}

func (m MatrixModel) targets() []drag.Target {
	l := m.layout()
	quadrants := models.AllQuadrants()
	targets := make([]drag.Target, 0, len(quadrants))
	for i, q := range quadrants {
		targets = append(targets, drag.Target{
			Kind:     drag.TargetQuadrantCell,
			Quadrant: q,
			Bounds:   l.cellRect(i),
		})
	}
	return targets
}

func (m MatrixModel) cardAt(p drag.Point) (cardHit, bool) {
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

func (m MatrixModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (m MatrixModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		m.cell = (m.cell + 3) % 4
		m.ensureVisible()
		return m, nil

	case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextPane):
		m.cell = (m.cell + 1) % 4
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

func (m MatrixModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
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
			m.cell, m.row = hit.group, hit.index
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

func (m MatrixModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Quadro Matrix ")
	help := helpLine(keys.Toggle, keys.Quad, keys.Delete, keys.Filter, keys.Refresh, keys.Quit)

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading tasks...\n\n%s", title, help)
	}
	if m.loadErr != nil {
		return fmt.Sprintf("%s\n\n  Error: %v\n\n%s", title, m.loadErr, helpLine(keys.Refresh, keys.Quit))
	}

	l := m.layout()
	gs := m.groups()
	cells := make([]string, 0, len(gs))
	for i, g := range gs {
		cells = append(cells, m.renderCell(i, g, l))
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, cells[0], cells[1])
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, cells[2], cells[3])
	body := lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow)

	return strings.Join([]string{title, "", m.filterLine(), "", body, m.noticeLine(), help}, "\n")
}

func (m MatrixModel) renderCell(i int, g projection.Group, l matrixLayout) string {
	quadrant := models.AllQuadrants()[i]
	header := columnHeaderStyle.Foreground(quadrantColors[quadrant]).
		Render(fmt.Sprintf("%d %s (%d)", i+1, g.Label, len(g.Tasks)))
	lines := []string{header, ""}

	selRow := m.row
	if selRow >= len(g.Tasks) {
		selRow = len(g.Tasks) - 1
	}

	start, end, footer := visibleWindow(len(g.Tasks), m.offsets[i], l.cardRows())
	for idx := start; idx < end; idx++ {
		t := g.Tasks[idx]
		selected := i == m.cell && idx == selRow
		lines = append(lines, m.renderCard(t, l.cellW-4, selected, statusColors[t.Status]))
	}
	if footer != "" {
		lines = append(lines, helpStyle.Render(footer))
	}

	style := columnStyle
	if m.dropHover(l.cellRect(i)) {
		style = columnActiveStyle
	}
	return style.Width(l.cellW - 2).Height(l.innerH).Render(strings.Join(lines, "\n"))
}
