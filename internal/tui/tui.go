// Package tui is the terminal client: a dashboard of tasks grouped by group, and a detail
// screen for one task.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/router"
	"taskboard/internal/store"
)

type Options struct {
	Store *store.Store
	// Route is the initial screen; the zero Route opens the dashboard.
	Route  router.Route
	Logger *slog.Logger
}

// Run blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	applyColorProfilePreference()

	m := newModel(opts.Store, opts.Route)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Listeners run inside Dispatch; hand off so the program loop is never waited on.
	detach := opts.Store.Subscribe(func(c store.Change) {
		if c.Changed {
			go p.Send(storeChangedMsg{version: c.Version})
		}
	})
	defer detach()

	_, err := p.Run()
	if err != nil {
		opts.Logger.Error("tui exited", "err", err)
	}
	return err
}
