package state

import "taskboard/internal/model"

// Tree is the single in-memory structure holding all application data.
//
// A Tree is treated as immutable once it has been handed to a store: mutations build a new
// Tree that shares untouched slices with the old one. Callers must never write into the
// slices of a Tree they did not just allocate.
type Tree struct {
	Groups   []model.Group   `json:"groups" yaml:"groups"`
	Tasks    []model.Task    `json:"tasks" yaml:"tasks"`
	Comments []model.Comment `json:"comments" yaml:"comments"`
}

// Empty returns a tree with non-nil collections so JSON output is stable.
func Empty() Tree {
	return Tree{
		Groups:   []model.Group{},
		Tasks:    []model.Task{},
		Comments: []model.Comment{},
	}
}

// Normalize replaces nil collections with empty ones.
func (t Tree) Normalize() Tree {
	if t.Groups == nil {
		t.Groups = []model.Group{}
	}
	if t.Tasks == nil {
		t.Tasks = []model.Task{}
	}
	if t.Comments == nil {
		t.Comments = []model.Comment{}
	}
	return t
}

func (t Tree) FindTask(id string) (model.Task, bool) {
	i := t.TaskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	return t.Tasks[i], true
}

// TaskIndex returns the position of the task with id, or -1.
// Ids are compared exactly; callers trim input at the boundary (action creators, router).
func (t Tree) TaskIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range t.Tasks {
		if t.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (t Tree) FindGroup(id string) (model.Group, bool) {
	for _, g := range t.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return model.Group{}, false
}

// TasksInGroup returns the tasks owned by groupID in state order.
func (t Tree) TasksInGroup(groupID string) []model.Task {
	out := []model.Task{}
	for _, task := range t.Tasks {
		if task.Group == groupID {
			out = append(out, task)
		}
	}
	return out
}

// CommentsForTask returns the comments of taskID in state order.
func (t Tree) CommentsForTask(taskID string) []model.Comment {
	out := []model.Comment{}
	for _, c := range t.Comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out
}

// DanglingGroupRefs lists tasks whose group is not present in Groups.
// setTaskGroup does not validate its argument, so these can appear after load.
func (t Tree) DanglingGroupRefs() []model.Task {
	known := make(map[string]struct{}, len(t.Groups))
	for _, g := range t.Groups {
		known[g.ID] = struct{}{}
	}
	var out []model.Task
	for _, task := range t.Tasks {
		if _, ok := known[task.Group]; !ok {
			out = append(out, task)
		}
	}
	return out
}

func (t Tree) OpenTaskCount() int {
	n := 0
	for _, task := range t.Tasks {
		if !task.IsComplete {
			n++
		}
	}
	return n
}
