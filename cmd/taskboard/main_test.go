package main

import (
	"reflect"
	"testing"
)

func TestRewriteRouteArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"taskboard"},
			want: []string{"taskboard"},
		},
		{
			name: "task route first token",
			in:   []string{"taskboard", "/tasks/t1"},
			want: []string{"taskboard", "tui", "--route", "/tasks/t1"},
		},
		{
			name: "dashboard route",
			in:   []string{"taskboard", "/dashboard"},
			want: []string{"taskboard", "tui", "--route", "/dashboard"},
		},
		{
			name: "route after value flag",
			in:   []string{"taskboard", "--dir", "./tmp-board", "/tasks/t1"},
			want: []string{"taskboard", "--dir", "./tmp-board", "tui", "--route", "/tasks/t1"},
		},
		{
			name: "route after equals flag",
			in:   []string{"taskboard", "--dir=./tmp-board", "/tasks/t1"},
			want: []string{"taskboard", "--dir=./tmp-board", "tui", "--route", "/tasks/t1"},
		},
		{
			name: "route after bool flag",
			in:   []string{"taskboard", "--pretty", "/tasks/t1"},
			want: []string{"taskboard", "--pretty", "tui", "--route", "/tasks/t1"},
		},
		{
			name: "route after double dash",
			in:   []string{"taskboard", "--dir", "./tmp-board", "--", "/tasks/t1"},
			want: []string{"taskboard", "--dir", "./tmp-board", "tui", "--route", "/tasks/t1"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"taskboard", "tasks", "show", "t1"},
			want: []string{"taskboard", "tasks", "show", "t1"},
		},
		{
			name: "route-looking argument to subcommand not rewritten",
			in:   []string{"taskboard", "tui", "--route", "/tasks/t1"},
			want: []string{"taskboard", "tui", "--route", "/tasks/t1"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteRouteArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteRouteArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
