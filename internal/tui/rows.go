package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	tbmodel "taskboard/internal/model"
	"taskboard/internal/selector"
	"taskboard/internal/state"
)

// taskRow is one dashboard line. heading is set on the first task of each group.
type taskRow struct {
	task    tbmodel.Task
	heading string
}

func (r taskRow) FilterValue() string { return r.task.Name }

// dashboardRows lists tasks group by group, in group order, followed by tasks whose group
// does not exist.
func dashboardRows(t state.Tree) []list.Item {
	var rows []list.Item
	for _, g := range selector.Dashboard(t).Groups {
		p := selector.TaskList(t, g.ID)
		for i, task := range p.Tasks {
			r := taskRow{task: task}
			if i == 0 {
				r.heading = p.Name
			}
			rows = append(rows, r)
		}
	}
	// Missing groups in first-seen order, one heading each.
	var missing []string
	byGroup := map[string][]tbmodel.Task{}
	for _, task := range t.DanglingGroupRefs() {
		if _, seen := byGroup[task.Group]; !seen {
			missing = append(missing, task.Group)
		}
		byGroup[task.Group] = append(byGroup[task.Group], task)
	}
	for _, gid := range missing {
		for i, task := range byGroup[gid] {
			r := taskRow{task: task}
			if i == 0 {
				r.heading = "(unknown group: " + gid + ")"
			}
			rows = append(rows, r)
		}
	}
	return rows
}

func checkbox(done bool) string {
	if done {
		return styleDone.Render("[x]")
	}
	return "[ ]"
}

type rowDelegate struct{}

const groupColumn = 14

func (rowDelegate) Height() int                             { return 1 }
func (rowDelegate) Spacing() int                            { return 0 }
func (rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(taskRow)
	if !ok {
		return
	}
	width := m.Width()
	if width < 8 {
		return
	}
	head := pad(truncate(r.heading, groupColumn-1), groupColumn)
	if r.heading != "" {
		head = styleHeading.Render(head)
	}
	line := truncate(head+checkbox(r.task.IsComplete)+" "+r.task.Name, width)
	if index == m.Index() {
		line = styleSelected.Render(pad(line, width))
	}
	fmt.Fprint(w, line)
}

// truncate cuts s to width terminal cells, ending with an ellipsis when cut.
func truncate(s string, width int) string {
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return xansi.Cut(s, 0, width)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

func pad(s string, width int) string {
	if w := xansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
