package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/backend"
	"taskboard/internal/mutate"
	"taskboard/internal/store"

	"github.com/spf13/cobra"
)

const syncCloseTimeout = 10 * time.Second

// session is one open board: the SQLite backend, the in-memory store loaded from it, and the
// syncer writing every change back.
type session struct {
	backend *backend.SQLite
	store   *store.Store
	syncer  *backend.Syncer
	detach  func()
}

func openSession(ctx context.Context, app *App) (*session, error) {
	b, err := backend.OpenSQLite(ctx, app.Config.Dir)
	if err != nil {
		return nil, err
	}
	tree, err := b.Load(ctx)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if len(tree.Groups) == 0 && len(tree.Tasks) == 0 && strings.TrimSpace(app.Config.Seed) != "" {
		seeded, err := backend.LoadSeed(app.Config.Seed)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		if err := b.Replace(ctx, seeded); err != nil {
			_ = b.Close()
			return nil, err
		}
		app.Log.Info("seeded empty board", "seed", app.Config.Seed, "tasks", len(seeded.Tasks))
		tree = seeded
	}

	st := store.New(tree, mutate.Reduce)
	sy := backend.NewSyncer(b, backend.SyncerOptions{Timeout: 5 * time.Second, Logger: app.Log})
	return &session{
		backend: b,
		store:   st,
		syncer:  sy,
		detach:  sy.Attach(st),
	}, nil
}

// Close drains pending writes, then closes the database.
func (s *session) Close() error {
	s.detach()
	ctx, cancel := context.WithTimeout(context.Background(), syncCloseTimeout)
	defer cancel()
	var errs []error
	if err := s.syncer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}
	if err := s.backend.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withSession runs fn against an open board and reports write failures as the command's error.
func withSession(cmd *cobra.Command, app *App, fn func(*session) error) error {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return err
	}
	runErr := fn(s)
	closeErr := s.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}
