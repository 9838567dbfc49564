package cli

import (
	"taskboard/internal/backend"

	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Replace the whole board with the groups, tasks and comments of a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := backend.LoadSeed(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var version uint64
			err = withSession(cmd, app, func(s *session) error {
				version = s.store.Replace(tree).Version
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"groups":   len(tree.Groups),
					"tasks":    len(tree.Tasks),
					"comments": len(tree.Comments),
					"version":  version,
					"dir":      app.Config.Dir,
				},
			})
		},
	}
}
