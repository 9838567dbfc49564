package backend

import (
	"context"
	"reflect"
	"testing"
	"time"

	"taskboard/internal/action"
	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/state"
)

func fixture() state.Tree {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return state.Tree{
		Groups: []model.Group{{ID: "g1", Name: "Home"}, {ID: "g2", Name: "Work"}},
		Tasks: []model.Task{
			{ID: "t1", Name: "Buy milk", Group: "g1"},
			{ID: "t2", Name: "Ship release", Group: "g2"},
		},
		Comments: []model.Comment{{ID: "c1", TaskID: "t1", Contents: "oat", CreatedAt: at}},
	}
}

func openTemp(t *testing.T) (*SQLite, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := OpenSQLite(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, dir
}

func TestSQLite_EmptyLoad(t *testing.T) {
	b, _ := openTemp(t)
	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, state.Empty()) {
		t.Fatalf("expected empty tree, got %+v", got)
	}
}

func TestSQLite_ReplaceLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b, dir := openTemp(t)
	if err := b.Replace(ctx, fixture()); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	_ = b.Close()

	b2, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	got, err := b2.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, fixture()) {
		t.Fatalf("round trip mismatch:\n got: %+v\nwant: %+v", got, fixture())
	}
}

func TestSQLite_ApplyKeepsOrderAndLogsEvents(t *testing.T) {
	ctx := context.Background()
	b, _ := openTemp(t)
	tr := fixture()
	if err := b.Replace(ctx, tr); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	acts := []action.Action{
		action.SetTaskName("t1", "Buy oat milk"),
		action.SetTaskGroup("t2", "g1"),
		action.SetTaskCompletion("t1", true),
		action.AddComment("t2", "shipped"),
	}
	for _, a := range acts {
		var changed bool
		tr, changed = mutate.Reduce(tr, a)
		if !changed {
			t.Fatalf("expected %s to change the tree", a.Type())
		}
		if err := b.Apply(ctx, a, tr); err != nil {
			t.Fatalf("Apply %s: %v", a.Type(), err)
		}
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Tasks, tr.Tasks) {
		t.Fatalf("tasks mismatch:\n got: %+v\nwant: %+v", got.Tasks, tr.Tasks)
	}
	if len(got.Comments) != 2 || got.Comments[1].Contents != "shipped" {
		t.Fatalf("comments: %+v", got.Comments)
	}

	evs, err := b.Events(ctx, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(evs) != 5 {
		t.Fatalf("expected replace + 4 events, got %d", len(evs))
	}
	if evs[0].Type != "REPLACE_STATE" || evs[1].Type != string(action.TypeSetTaskName) || evs[4].Type != string(action.TypeAddComment) {
		t.Fatalf("unexpected event order: %+v", evs)
	}
	if evs[1].EntityID != "t1" {
		t.Fatalf("entity id = %q", evs[1].EntityID)
	}
	p, ok := evs[1].Payload.(map[string]any)
	if !ok || p["name"] != "Buy oat milk" {
		t.Fatalf("payload = %#v", evs[1].Payload)
	}

	last, err := b.Events(ctx, 2)
	if err != nil {
		t.Fatalf("Events(2): %v", err)
	}
	if len(last) != 2 || last[0].ID != evs[3].ID || last[1].ID != evs[4].ID {
		t.Fatalf("limit should keep the newest events oldest-first: %+v", last)
	}
}

func TestSQLite_ApplyUnknownTask(t *testing.T) {
	b, _ := openTemp(t)
	if err := b.Apply(context.Background(), action.SetTaskName("nope", "x"), fixture()); err == nil {
		t.Fatalf("expected error for task missing from state")
	}
}
