package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/router"
	"taskboard/internal/selector"
	"taskboard/internal/state"
	"taskboard/internal/store"
)

type storeChangedMsg struct{ version uint64 }

// dispatchedMsg carries the result of a dispatch run as a command.
type dispatchedMsg struct{ change store.Change }

type inputMode int

const (
	inputNone inputMode = iota
	inputRename
	inputComment
)

type model struct {
	st      *store.Store
	route   router.Route
	tree    state.Tree
	version uint64

	dashboard list.Model
	input     textinput.Model
	mode      inputMode

	width  int
	height int
	status string
}

func newModel(st *store.Store, route router.Route) model {
	if route.View == "" {
		route = router.Dashboard()
	}
	l := list.New(nil, rowDelegate{}, 80, 20)
	l.Title = "Dashboard"
	l.Styles.Title = styleTitle
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	in := textinput.New()
	in.CharLimit = 200

	m := model{st: st, route: route, dashboard: l, input: in, width: 80, height: 24}
	m.refresh()
	return m
}

func (m *model) refresh() {
	m.tree, m.version = m.st.Snapshot()
	idx := m.dashboard.Index()
	m.dashboard.SetItems(dashboardRows(m.tree))
	if n := len(m.dashboard.Items()); idx >= n && n > 0 {
		idx = n - 1
	}
	m.dashboard.Select(idx)
}

func (m model) Init() tea.Cmd { return nil }

// dispatch runs through a command so store listeners never execute on the program loop.
func (m model) dispatch(h func(selector.TaskDetailHandlers) store.Change) tea.Cmd {
	handlers := selector.BindTaskDetail(m.st, selector.TaskContext{TaskID: m.route.Params.ID})
	return func() tea.Msg {
		return dispatchedMsg{change: h(handlers)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.dashboard.SetSize(msg.Width, max(msg.Height-3, 3))
		m.input.Width = max(msg.Width-14, 10)
		return m, nil
	case storeChangedMsg:
		if msg.version != m.version {
			m.refresh()
		}
		return m, nil
	case dispatchedMsg:
		m.refresh()
		if !msg.change.Changed {
			m.status = "no change"
		} else {
			m.status = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		if m.route.View == router.ViewTaskDetail {
			return m.updateDetail(msg)
		}
		return m.updateDashboard(msg)
	}
	return m, nil
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		if r, ok := m.dashboard.SelectedItem().(taskRow); ok {
			m.route = router.Task(r.task.ID)
			m.status = ""
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)
	return m, cmd
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p, err := selector.TaskDetail(m.tree, m.route.Params)
	switch msg.String() {
	case "esc", "d":
		m.route = router.Dashboard()
		m.status = ""
		return m, nil
	case "q":
		return m, tea.Quit
	}
	if errors.Is(err, selector.ErrNotFound) {
		return m, nil
	}

	switch msg.String() {
	case " ", "x":
		next := !p.IsComplete
		return m, m.dispatch(func(h selector.TaskDetailHandlers) store.Change { return h.SetTaskCompletion(next) })
	case "g":
		next := nextGroup(p)
		if next == "" {
			m.status = "no groups"
			return m, nil
		}
		return m, m.dispatch(func(h selector.TaskDetailHandlers) store.Change { return h.SetTaskGroup(next) })
	case "e":
		m.mode = inputRename
		m.input.Prompt = "Name: "
		m.input.SetValue(p.Task.Name)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "c":
		m.mode = inputComment
		m.input.Prompt = "Comment: "
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

// nextGroup cycles through groups in order. A task in an unknown group moves to the first.
func nextGroup(p selector.TaskDetailProps) string {
	if len(p.Groups) == 0 {
		return ""
	}
	for i, g := range p.Groups {
		if g.ID == p.Task.Group {
			return p.Groups[(i+1)%len(p.Groups)].ID
		}
	}
	return p.Groups[0].ID
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		if mode == inputRename {
			return m, m.dispatch(func(h selector.TaskDetailHandlers) store.Change { return h.SetTaskName(value) })
		}
		return m, m.dispatch(func(h selector.TaskDetailHandlers) store.Change { return h.AddComment(value) })
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.route.View == router.ViewTaskDetail {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.dashboard.View())
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m model) header() string {
	nav := selector.Navigation(m.tree, router.DashboardPath())
	counts := styleMuted.Render(fmt.Sprintf("%d open / %d tasks", nav.OpenCount, nav.TaskCount))
	return styleTitle.Render(nav.Title) + "  " + counts
}

func (m model) footer() string {
	if m.mode != inputNone {
		return m.input.View() + "\n" + styleMuted.Render("enter: save  esc: cancel")
	}
	help := "↑/↓: move  enter: open  q: quit"
	if m.route.View == router.ViewTaskDetail {
		help = "space: toggle  e: rename  g: group  c: comment  esc: done"
	}
	out := styleMuted.Render(help)
	if m.status != "" {
		out = styleWarn.Render(m.status) + "  " + out
	}
	return out
}

func (m model) detailView() string {
	p, err := selector.TaskDetail(m.tree, m.route.Params)
	if err != nil {
		return styleWarn.Render("Task not found") + "\n" + styleMuted.Render("No task has id "+m.route.Params.ID+". Press esc to return.")
	}

	group := styleWarn.Render("(unknown group: " + p.Task.Group + ")")
	if p.GroupKnown {
		if g, ok := m.tree.FindGroup(p.Task.Group); ok {
			group = g.Name
		}
	}
	status := "open"
	if p.IsComplete {
		status = styleDone.Render("complete")
	}

	rows := []string{
		styleHeading.Render(truncate(p.Task.Name, max(m.width, 20))),
		"",
		styleLabel.Render("Group") + group,
		styleLabel.Render("Status") + checkbox(p.IsComplete) + " " + status,
		"",
		styleHeading.Render(fmt.Sprintf("Comments (%d)", len(p.Comments))),
	}
	for _, c := range p.Comments {
		rows = append(rows, renderMarkdown(c.Contents, max(m.width-4, 20)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
