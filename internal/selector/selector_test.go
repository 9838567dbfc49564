package selector

import (
	"errors"
	"reflect"
	"testing"

	"taskboard/internal/action"
	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/state"
	"taskboard/internal/store"
)

func fixture() state.Tree {
	return state.Tree{
		Groups: []model.Group{{ID: "g1", Name: "Home"}, {ID: "g2", Name: "Work"}},
		Tasks: []model.Task{
			{ID: "t1", Name: "Buy milk", Group: "g1"},
			{ID: "t2", Name: "Ship release", Group: "g2", IsComplete: true},
		},
		Comments: []model.Comment{
			{ID: "c1", TaskID: "t1", Contents: "oat?"},
			{ID: "c2", TaskID: "t2", Contents: "v2"},
		},
	}
}

func TestDashboard_Passthrough(t *testing.T) {
	tr := fixture()
	p := Dashboard(tr)
	if &p.Groups[0] != &tr.Groups[0] || len(p.Groups) != len(tr.Groups) {
		t.Fatalf("expected the groups collection itself")
	}
}

func TestTaskList(t *testing.T) {
	p := TaskList(fixture(), "g2")
	if p.Name != "Work" || len(p.Tasks) != 1 || p.Tasks[0].ID != "t2" {
		t.Fatalf("unexpected props: %+v", p)
	}
	if p := TaskList(fixture(), "gX"); p.Name != "" || len(p.Tasks) != 0 {
		t.Fatalf("unexpected props for unknown group: %+v", p)
	}
}

func TestTaskDetail(t *testing.T) {
	p, err := TaskDetail(fixture(), RouteParams{ID: "t1"})
	if err != nil {
		t.Fatalf("TaskDetail: %v", err)
	}
	if p.ID != "t1" || p.Task.Name != "Buy milk" || p.IsComplete || !p.GroupKnown {
		t.Fatalf("unexpected props: %+v", p)
	}
	if len(p.Groups) != 2 {
		t.Fatalf("expected all groups, got %+v", p.Groups)
	}
	if len(p.Comments) != 1 || p.Comments[0].ID != "c1" {
		t.Fatalf("expected only t1 comments: %+v", p.Comments)
	}
}

func TestTaskDetail_Pure(t *testing.T) {
	tr := fixture()
	a, errA := TaskDetail(tr, RouteParams{ID: "t2"})
	b, errB := TaskDetail(tr, RouteParams{ID: "t2"})
	if errA != nil || errB != nil {
		t.Fatalf("errors: %v %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("selector not pure:\n a: %+v\n b: %+v", a, b)
	}
	if !reflect.DeepEqual(tr, fixture()) {
		t.Fatalf("selector mutated the tree")
	}
}

func TestTaskDetail_NotFound(t *testing.T) {
	_, err := TaskDetail(fixture(), RouteParams{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "task" || nf.ID != "missing" {
		t.Fatalf("unexpected error: %#v", err)
	}
	if err.Error() != "task not found: missing" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestTaskDetail_UnknownGroup(t *testing.T) {
	tr := mutate.SetTaskGroup(fixture(), "t1", "g9").Tree
	p, err := TaskDetail(tr, RouteParams{ID: "t1"})
	if err != nil {
		t.Fatalf("TaskDetail: %v", err)
	}
	if p.GroupKnown {
		t.Fatalf("expected GroupKnown=false")
	}
}

func TestTaskDetailProps_Validate(t *testing.T) {
	if err := (TaskDetailProps{}).Validate(); err == nil {
		t.Fatalf("expected error for empty props")
	}
	if err := (TaskDetailProps{ID: "t1", Task: model.Task{ID: "t2"}}).Validate(); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestNavigation(t *testing.T) {
	p := Navigation(fixture(), "/dashboard")
	want := NavigationProps{Title: AppTitle, DashboardPath: "/dashboard", TaskCount: 2, OpenCount: 1}
	if p != want {
		t.Fatalf("Navigation = %+v, want %+v", p, want)
	}
}

func TestBindTaskDetail_DispatchesForBoundTask(t *testing.T) {
	s := store.New(fixture(), mutate.Reduce)
	var seen []action.Action
	s.Subscribe(func(c store.Change) { seen = append(seen, c.Action) })

	h := BindTaskDetail(s, TaskContext{TaskID: " t1 "})
	if h.TaskID() != "t1" {
		t.Fatalf("TaskID = %q", h.TaskID())
	}
	h.SetTaskName("Buy oat milk")
	h.SetTaskGroup("g2")
	h.SetTaskCompletion(true)
	h.AddComment("bought")

	got, _ := s.State().FindTask("t1")
	want := model.Task{ID: "t1", Name: "Buy oat milk", Group: "g2", IsComplete: true}
	if got != want {
		t.Fatalf("t1 = %+v, want %+v", got, want)
	}
	if len(s.State().CommentsForTask("t1")) != 2 {
		t.Fatalf("expected the new comment")
	}
	for _, a := range seen {
		if a.TaskID() != "t1" {
			t.Fatalf("action bound to wrong task: %#v", a)
		}
	}
	other, _ := s.State().FindTask("t2")
	if other != fixture().Tasks[1] {
		t.Fatalf("t2 changed: %+v", other)
	}
}
