// Package tui implements the interactive status board and Eisenhower matrix.
// Both views run on the Bubble Tea update loop, project from the shared task
// collection, and funnel every mutation through the optimistic coordinator.
// Terminal mouse gestures feed the drag controller; a resolved drop becomes
// a single mutation command like any keyboard intent.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Amna-05/quadro/internal/drag"
	"github.com/Amna-05/quadro/internal/filter"
	"github.com/Amna-05/quadro/internal/mutation"
	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

// noticeTTL is how long the rollback notice stays on the status bar.
const noticeTTL = 5 * time.Second

// LoadResult is one refresh of the working set. Stale marks data served from
// the offline cache after a failed fetch; Err is set only when neither the
// service nor the cache could provide anything.
type LoadResult struct {
	Tasks      []models.Task
	Categories []models.Category
	Stale      bool
	StaleSince time.Time
	Err        error
}

// LoadFunc fetches the working set. The command layer supplies an
// implementation that asks the task service and falls back to the snapshot
// cache.
type LoadFunc func() LoadResult

// Deps carries the shared machinery both views run on. Now is optional and
// defaults to time.Now; tests pin it.
type Deps struct {
	Collection  store.Collection
	Engine      *projection.Engine
	Coordinator *mutation.Coordinator
	Composer    *filter.Composer
	Load        LoadFunc
	Now         func() time.Time
}

// dataLoadedMsg carries a refresh result back into the update loop.
type dataLoadedMsg struct {
	result LoadResult
}

// outcomeMsg re-enters the loop when one dispatched mutation finishes.
type outcomeMsg struct {
	outcome mutation.Outcome
}

// holdExpiredMsg releases a completion hold after the grace period.
type holdExpiredMsg struct {
	taskID string
	seq    int
}

// clearNoticeMsg blanks the notice bar once it has stood long enough.
type clearNoticeMsg struct {
	seq int
}

// completionHold keeps a just-completed task in its former group while the
// grace period runs. task is the record as it looked before the completion
// applied; seq guards against a stale expiry tick releasing a newer hold.
type completionHold struct {
	task models.Task
	seq  int
}

// session is the state both views share: loaded data flags, filter entry,
// completion holds, drag bookkeeping, and the notice bar.
type session struct {
	deps Deps

	width  int
	height int

	loading bool
	loadErr error
	stale   bool
	staleAt time.Time

	filterInput textinput.Model
	filtering   bool

	notice    string
	noticeSeq int

	holds   map[string]completionHold
	holdSeq int

	drag *drag.Controller
}

func newSession(deps Deps) session {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search tasks"
	ti.CharLimit = 64
	ti.Width = 40

	return session{
		deps:        deps,
		loading:     true,
		filterInput: ti,
		holds:       make(map[string]completionHold),
		drag:        drag.NewController(),
	}
}

func (s *session) now() time.Time {
	if s.deps.Now != nil {
		return s.deps.Now()
	}
	return time.Now()
}

func (s *session) loadCmd() tea.Cmd {
	load := s.deps.Load
	return func() tea.Msg {
		return dataLoadedMsg{result: load()}
	}
}

// dispatchCmd runs one coordinator dispatch off the update loop and feeds
// the outcome back in as a message.
func dispatchCmd(d mutation.Dispatch) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg{outcome: d(context.Background())}
	}
}

func holdTick(taskID string, seq int, grace time.Duration) tea.Cmd {
	return tea.Tick(grace, func(time.Time) tea.Msg {
		return holdExpiredMsg{taskID: taskID, seq: seq}
	})
}

// handleShared consumes the messages both views treat identically. The
// second return is the follow-up command, nil for pure state updates.
func (s *session) handleShared(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return true, nil

	case dataLoadedMsg:
		s.applyLoad(msg.result)
		return true, nil

	case outcomeMsg:
		return true, s.resolve(msg.outcome)

	case holdExpiredMsg:
		if h, ok := s.holds[msg.taskID]; ok && h.seq == msg.seq {
			delete(s.holds, msg.taskID)
		}
		return true, nil

	case clearNoticeMsg:
		if msg.seq == s.noticeSeq {
			s.notice = ""
		}
		return true, nil
	}
	return false, nil
}

func (s *session) applyLoad(res LoadResult) {
	s.loading = false
	if res.Err != nil {
		s.loadErr = res.Err
		return
	}
	s.loadErr = nil
	s.stale = res.Stale
	s.staleAt = res.StaleSince
	s.deps.Collection.Replace(res.Tasks)
	s.deps.Composer.SetCategories(res.Categories)
}

// submit funnels one command through the coordinator. Completions arm the
// grace-period hold; the returned command runs the dispatch, when the
// coordinator produced one immediately.
func (s *session) submit(cmd mutation.Command) tea.Cmd {
	before, ok := s.deps.Collection.Effective(cmd.TaskID)
	if !ok {
		return nil
	}

	dispatch, err := s.deps.Coordinator.Submit(cmd)
	if err != nil {
		return s.setNotice(err.Error())
	}

	var cmds []tea.Cmd
	switch cmd.Kind {
	case mutation.CommandComplete:
		if grace := s.deps.Coordinator.Grace(); grace > 0 {
			s.holdSeq++
			s.holds[cmd.TaskID] = completionHold{task: before, seq: s.holdSeq}
			cmds = append(cmds, holdTick(cmd.TaskID, s.holdSeq, grace))
		}
	case mutation.CommandUncomplete, mutation.CommandDelete:
		delete(s.holds, cmd.TaskID)
	}
	if dispatch != nil {
		cmds = append(cmds, dispatchCmd(dispatch))
	}
	return tea.Batch(cmds...)
}

// resolve reconciles one outcome. A rollback drops the hold and raises the
// notice; a queued successor surfaces as the next dispatch command.
func (s *session) resolve(out mutation.Outcome) tea.Cmd {
	res := s.deps.Coordinator.Resolve(out)

	var cmds []tea.Cmd
	if !res.Committed {
		if res.Kind == mutation.CommandComplete {
			delete(s.holds, res.TaskID)
		}
		cmds = append(cmds, s.setNotice(res.Notice))
	}
	if res.Next != nil {
		cmds = append(cmds, dispatchCmd(res.Next))
	}
	return tea.Batch(cmds...)
}

func (s *session) setNotice(text string) tea.Cmd {
	s.notice = text
	s.noticeSeq++
	seq := s.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (s *session) isHeld(taskID string) bool {
	_, ok := s.holds[taskID]
	return ok
}

// applyHolds keeps just-completed tasks rendered in their former group until
// the grace period ends. keyFor maps the held pre-completion record to the
// group it should stay in. Group slices are copied; the projection memo may
// share the originals.
func (s *session) applyHolds(groups []projection.Group, keyFor func(models.Task) string) []projection.Group {
	if len(s.holds) == 0 {
		return groups
	}

	out := make([]projection.Group, len(groups))
	for i, g := range groups {
		tasks := make([]models.Task, 0, len(g.Tasks))
		for _, t := range g.Tasks {
			if s.isHeld(t.ID) {
				continue
			}
			tasks = append(tasks, t)
		}
		out[i] = projection.Group{Key: g.Key, Label: g.Label, Tasks: tasks}
	}

	ids := make([]string, 0, len(s.holds))
	for id := range s.holds {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		held := s.holds[id].task
		key := keyFor(held)
		for i := range out {
			if out[i].Key == key {
				out[i].Tasks = append(out[i].Tasks, held)
				break
			}
		}
	}
	return out
}

func (s *session) dropHover(r drag.Rect) bool {
	return s.drag.Dragging() && r.Contains(s.drag.Position())
}

// filterLine renders the row under the title: the live filter input while
// typing, otherwise the stale-data warning and the active filter chips.
func (s *session) filterLine() string {
	if s.filtering {
		return s.filterInput.View()
	}

	var parts []string
	if s.stale {
		parts = append(parts, staleStyle.Render("offline, cached "+humanize.Time(s.staleAt)))
	}
	for _, chip := range s.deps.Composer.Chips() {
		parts = append(parts, chipStyle.Render(chip.Label))
	}
	return strings.Join(parts, " ")
}

// noticeLine renders the status bar: a rollback notice wins over the drag
// hint.
func (s *session) noticeLine() string {
	if s.notice != "" {
		return noticeStyle.Render(s.notice)
	}
	if s.drag.Dragging() {
		return helpStyle.Render(fmt.Sprintf("moving %q (esc cancels)", s.drag.Task().Title))
	}
	return ""
}

// renderCard draws one single-line card, exactly width cells wide. accent
// colors the leading marker; selection, completion, and the grace-period
// flash restyle the whole line.
func (s *session) renderCard(t models.Task, width int, selected bool, accent lipgloss.Color) string {
	if width < 6 {
		width = 6
	}

	held := s.isHeld(t.ID)
	done := held || t.Status == models.StatusDone
	marker := "●"
	if done {
		marker = "✓"
	}

	title := t.Title
	if s.deps.Coordinator.Pending(t.ID) {
		title += " *"
	}

	hint := dueHint(t, s.now())
	titleWidth := width - 2
	if hint != "" {
		if w := titleWidth - runeLen(hint) - 1; w >= 4 {
			titleWidth = w
		} else {
			hint = ""
		}
	}
	title = truncate(title, titleWidth)
	pad := strings.Repeat(" ", width-2-runeLen(title)-runeLen(hint))

	plain := marker + " " + title + pad + hint
	switch {
	case selected:
		return selectedCardStyle.Render(plain)
	case held:
		return heldCardStyle.Render(plain)
	case done:
		return doneCardStyle.Render(plain)
	}

	out := lipgloss.NewStyle().Foreground(accent).Render(marker) + " " + title + pad
	if hint != "" {
		hintStyle := helpStyle
		if hint == "overdue" {
			hintStyle = overdueStyle
		}
		out += hintStyle.Render(hint)
	}
	return out
}

// dueHint is the short due-date cue at the right edge of a card.
func dueHint(t models.Task, now time.Time) string {
	switch {
	case t.DueDate == nil, t.Status == models.StatusDone:
		return ""
	case t.OverdueAt(now):
		return "overdue"
	case t.DueToday(now):
		return "today"
	default:
		return humanize.RelTime(*t.DueDate, now, "ago", "left")
	}
}

// dragCommand converts a resolved drop into the coordinator's command form.
func dragCommand(c drag.Command) mutation.Command {
	switch c.Kind {
	case drag.CommandStatusChange:
		return mutation.Command{Kind: mutation.CommandStatusChange, TaskID: c.TaskID, Status: c.Status}
	case drag.CommandReclassify:
		return mutation.Command{Kind: mutation.CommandReclassify, TaskID: c.TaskID, Urgent: c.Urgent, Important: c.Important}
	}
	panic(fmt.Sprintf("tui: unknown drag command kind %q", c.Kind))
}

// visibleWindow returns the row range a column can show. When the tasks
// overflow the window the last row is surrendered to the range footer.
func visibleWindow(n, offset, rows int) (start, end int, footer string) {
	if rows < 1 {
		rows = 1
	}
	if n <= rows {
		return 0, n, ""
	}

	shown := rows - 1
	if shown < 1 {
		shown = 1
	}
	start = offset
	if start > n-shown {
		start = n - shown
	}
	if start < 0 {
		start = 0
	}
	end = start + shown
	return start, end, fmt.Sprintf("%d-%d of %d", start+1, end, n)
}

func runeLen(s string) int {
	return len([]rune(s))
}

// truncate caps s at w cells, ending in an ellipsis when it was cut.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
