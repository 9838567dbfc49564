package state

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (e ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid state: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid state: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks the load-time invariants: ids are present, unique per collection and free of
// surrounding whitespace, every task references an existing group, every comment references an
// existing task.
func Validate(t Tree) error {
	var problems []string
	padded := func(what, id string) {
		problems = append(problems, fmt.Sprintf("%s has surrounding whitespace: %q", what, id))
	}

	groups := map[string]struct{}{}
	for i, g := range t.Groups {
		id := strings.TrimSpace(g.ID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("groups[%d]: missing id", i))
			continue
		}
		if id != g.ID {
			padded("group id", g.ID)
			continue
		}
		if _, dup := groups[id]; dup {
			problems = append(problems, "duplicate group id: "+id)
			continue
		}
		groups[id] = struct{}{}
	}

	tasks := map[string]struct{}{}
	for i, task := range t.Tasks {
		id := strings.TrimSpace(task.ID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("tasks[%d]: missing id", i))
			continue
		}
		if id != task.ID {
			padded("task id", task.ID)
			continue
		}
		if _, dup := tasks[id]; dup {
			problems = append(problems, "duplicate task id: "+id)
			continue
		}
		tasks[id] = struct{}{}
		if strings.TrimSpace(task.Group) != task.Group {
			padded(fmt.Sprintf("task %s: group", id), task.Group)
			continue
		}
		if _, ok := groups[task.Group]; !ok {
			problems = append(problems, fmt.Sprintf("task %s: group not found: %s", id, task.Group))
		}
	}

	comments := map[string]struct{}{}
	for i, c := range t.Comments {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("comments[%d]: missing id", i))
			continue
		}
		if id != c.ID {
			padded("comment id", c.ID)
			continue
		}
		if _, dup := comments[id]; dup {
			problems = append(problems, "duplicate comment id: "+id)
			continue
		}
		comments[id] = struct{}{}
		if strings.TrimSpace(c.TaskID) != c.TaskID {
			padded(fmt.Sprintf("comment %s: task", id), c.TaskID)
			continue
		}
		if _, ok := tasks[c.TaskID]; !ok {
			problems = append(problems, fmt.Sprintf("comment %s: task not found: %s", id, c.TaskID))
		}
	}

	if len(problems) > 0 {
		return ValidationError{Problems: problems}
	}
	return nil
}
