package publish

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/router"
	"taskboard/internal/selector"
	"taskboard/internal/state"
)

// RenderTaskMarkdown renders one task page: name, meta and comments.
func RenderTaskMarkdown(t state.Tree, taskID string) (string, error) {
	p, err := selector.TaskDetail(t, selector.RouteParams{ID: taskID})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(p.Task.Name))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + p.ID)
	writeLn("- Group: " + groupLabel(t, p.Task.Group))
	if p.IsComplete {
		writeLn("- Status: complete")
	} else {
		writeLn("- Status: open")
	}
	writeLn("- Route: " + router.TaskPath(p.ID))

	if len(p.Comments) > 0 {
		writeLn("")
		writeLn("## Comments")
		for _, c := range p.Comments {
			writeLn("")
			head := "### " + c.ID
			if !c.CreatedAt.IsZero() {
				head += " (" + c.CreatedAt.UTC().Format(time.RFC3339) + ")"
			}
			writeLn(head)
			writeLn("")
			writeLn(strings.TrimSpace(c.Contents))
		}
	}
	return buf.String(), nil
}

// RenderIndexMarkdown renders the dashboard: one checklist per group, then tasks whose group
// is missing.
func RenderIndexMarkdown(t state.Tree) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	nav := selector.Navigation(t, router.DashboardPath())
	writeLn("# " + nav.Title)
	writeLn("")
	writeLn(plural(nav.OpenCount, "open task") + " of " + plural(nav.TaskCount, "task") + ".")

	for _, g := range selector.Dashboard(t).Groups {
		l := selector.TaskList(t, g.ID)
		writeLn("")
		writeLn("## " + strings.TrimSpace(l.Name))
		writeLn("")
		if len(l.Tasks) == 0 {
			writeLn("_No tasks._")
			continue
		}
		for _, task := range l.Tasks {
			writeLn(checklistLine(task.ID, task.Name, task.IsComplete))
		}
	}

	if dangling := t.DanglingGroupRefs(); len(dangling) > 0 {
		writeLn("")
		writeLn("## Unknown group")
		writeLn("")
		for _, task := range dangling {
			writeLn(checklistLine(task.ID, task.Name, task.IsComplete) + " (group: " + task.Group + ")")
		}
	}
	return buf.String()
}

func checklistLine(id, name string, done bool) string {
	box := "[ ]"
	if done {
		box = "[x]"
	}
	return "- " + box + " [" + escapeLinkText(strings.TrimSpace(name)) + "](tasks/" + fileName(id) + ")"
}

func groupLabel(t state.Tree, groupID string) string {
	if g, ok := t.FindGroup(groupID); ok {
		return strings.TrimSpace(g.Name) + " (" + g.ID + ")"
	}
	return "(unknown group: " + groupID + ")"
}

func escapeLinkText(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`)
	return r.Replace(s)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
