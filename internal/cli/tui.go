package cli

import (
	"fmt"
	"strings"

	"taskboard/internal/router"
	"taskboard/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	var route string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, route)
		},
	}
	cmd.Flags().StringVar(&route, "route", "", "Initial route (/dashboard or /tasks/<id>)")
	return cmd
}

func runTUI(cmd *cobra.Command, app *App, route string) error {
	r := router.Dashboard()
	if strings.TrimSpace(route) != "" {
		var ok bool
		r, ok = router.Match(route)
		if !ok {
			return writeErr(cmd, fmt.Errorf("unknown route: %s (expected /dashboard or /tasks/<id>)", route))
		}
	}
	err := withSession(cmd, app, func(s *session) error {
		return tui.Run(cmd.Context(), tui.Options{Store: s.store, Route: r, Logger: app.Log})
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
