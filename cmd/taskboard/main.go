package main

import (
	"os"
	"strings"

	"taskboard/internal/cli"
)

func isRoute(s string) bool {
	s = strings.TrimSpace(s)
	return s == "/" || strings.HasPrefix(s, "/dashboard") || strings.HasPrefix(s, "/tasks/")
}

// rewriteRouteArgs turns `taskboard [flags] <route>` into `taskboard [flags] tui --route <route>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first, so the first positional token is searched for, not argv[1].
func rewriteRouteArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":        true,
		"--config":     true,
		"--format":     true,
		"--seed":       true,
		"--log-level":  true,
		"--log-format": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "tui", "--route", argv[i])
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isRoute(argv[i+1]) {
				out := make([]string, 0, len(argv)+2)
				out = append(out, argv[:i]...)
				out = append(out, "tui", "--route", argv[i+1])
				return append(out, argv[i+2:]...)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isRoute(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteRouteArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
