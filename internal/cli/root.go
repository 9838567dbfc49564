// Package cli is the taskboard command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigFile string
	Config     config.Config
	Log        *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Task board: terminal UI, web UI and scriptable commands",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI on the dashboard
  taskboard

  # Open one task directly (shortcut for: taskboard tui --route /tasks/t1)
  taskboard /tasks/t1

  # Serve the web UI
  taskboard web --addr 127.0.0.1:3333

  # Scriptable commands
  taskboard tasks list --where 'groupName == "Work" && !isComplete'
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigFile, "config", "", "Config file (merged over ~/.taskboard/config.yaml and ./.taskboard/config.yaml)")
	pf.String("dir", "", "Directory holding taskboard.sqlite (default ~/.taskboard/board)")
	pf.String("format", "json", "Output format (json|edn|yaml)")
	pf.Bool("pretty", false, "Pretty-print output")
	pf.String("seed", "", "Seed YAML loaded when the board is empty")
	pf.String("log-level", "info", "Log level (debug|info|warn|error)")
	pf.String("log-format", "text", "Log format (text|json)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newGroupsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func (app *App) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{File: app.ConfigFile, Flags: cmd.Flags()})
	if err != nil {
		return writeErr(cmd, err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Config = cfg
	app.Log = logger
	return nil
}

func newLogger(w io.Writer, c config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Config.Format, app.Config.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
