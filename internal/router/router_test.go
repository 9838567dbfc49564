package router

import "testing"

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   Route
		wantOK bool
	}{
		{name: "root", in: "/", want: Dashboard(), wantOK: true},
		{name: "empty", in: "", want: Dashboard(), wantOK: true},
		{name: "dashboard", in: "/dashboard", want: Dashboard(), wantOK: true},
		{name: "dashboard trailing slash", in: "/dashboard/", want: Dashboard(), wantOK: true},
		{name: "dashboard query", in: "/dashboard?x=1", want: Dashboard(), wantOK: true},
		{name: "task", in: "/tasks/t1", want: Task("t1"), wantOK: true},
		{name: "task escaped", in: "/tasks/a%20b", want: Task("a b"), wantOK: true},
		{name: "task missing id", in: "/tasks/", wantOK: false},
		{name: "task nested", in: "/tasks/t1/name", wantOK: false},
		{name: "unknown", in: "/wat", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Match(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok=%v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("Match(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoutePath(t *testing.T) {
	if got := Task("a b").Path(); got != "/tasks/a%20b" {
		t.Fatalf("Task path = %q", got)
	}
	if got := Dashboard().Path(); got != "/dashboard" {
		t.Fatalf("Dashboard path = %q", got)
	}
	r, ok := Match(Task("t-9").Path())
	if !ok || r != Task("t-9") {
		t.Fatalf("round trip failed: %+v %v", r, ok)
	}
}
