// Package query filters tasks with expr-lang boolean expressions, as used by
// `tasks list --where`.
//
// Expressions see one task at a time:
//
//	id, name, group, groupName   string
//	isComplete, groupKnown       bool
//	comments                     int
//
// Example: `!isComplete && groupName == "Work"`.
package query

import (
	"errors"
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"taskboard/internal/model"
	"taskboard/internal/state"
)

type TaskEnv struct {
	ID         string `expr:"id"`
	Name       string `expr:"name"`
	Group      string `expr:"group"`
	GroupName  string `expr:"groupName"`
	GroupKnown bool   `expr:"groupKnown"`
	IsComplete bool   `expr:"isComplete"`
	Comments   int    `expr:"comments"`
}

type FilterError struct {
	Expression string
	Err        error
}

func (e FilterError) Error() string {
	return fmt.Sprintf("filter %q: %v", e.Expression, e.Err)
}

func (e FilterError) Unwrap() error { return e.Err }

// Filter is a compiled --where expression. The zero Filter matches every task.
type Filter struct {
	src     string
	program *exprvm.Program
}

func Compile(src string) (Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return Filter{}, nil
	}
	program, err := exprlang.Compile(src, exprlang.Env(TaskEnv{}), exprlang.AsBool())
	if err != nil {
		return Filter{}, FilterError{Expression: src, Err: err}
	}
	return Filter{src: src, program: program}, nil
}

func (f Filter) String() string { return f.src }

func (f Filter) Match(env TaskEnv) (bool, error) {
	if f.program == nil {
		return true, nil
	}
	out, err := exprlang.Run(f.program, env)
	if err != nil {
		return false, FilterError{Expression: f.src, Err: err}
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, FilterError{Expression: f.src, Err: errors.New("expression did not return a bool")}
	}
	return ok, nil
}

func EnvFor(t state.Tree, task model.Task) TaskEnv {
	env := TaskEnv{
		ID:         task.ID,
		Name:       task.Name,
		Group:      task.Group,
		IsComplete: task.IsComplete,
		Comments:   len(t.CommentsForTask(task.ID)),
	}
	if g, ok := t.FindGroup(task.Group); ok {
		env.GroupName = g.Name
		env.GroupKnown = true
	}
	return env
}

// Tasks returns the tasks of t matching f, in state order.
func Tasks(t state.Tree, f Filter) ([]model.Task, error) {
	out := []model.Task{}
	for _, task := range t.Tasks {
		ok, err := f.Match(EnvFor(t, task))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, task)
		}
	}
	return out, nil
}
