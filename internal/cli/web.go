package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the web UI (dashboard, task pages, live updates)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := withSession(cmd, app, func(s *session) error {
				return serveWeb(ctx, cmd, app, s)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Bind address (host:port or :port; default 127.0.0.1:3333)")
	cmd.Flags().Bool("read-only", false, "Reject every change from the browser")
	return cmd
}

func serveWeb(ctx context.Context, cmd *cobra.Command, app *App, s *session) error {
	srv, err := web.NewServer(web.ServerConfig{
		Addr:        app.Config.Addr,
		Store:       s.store,
		ReadOnly:    app.Config.Web.ReadOnly,
		DatastarSrc: app.Config.Web.DatastarSrc,
		Logger:      app.Log,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return err
	}
	url := "http://" + ln.Addr().String()

	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	served := make(chan error, 1)
	go func() { served <- hs.Serve(ln) }()

	_ = writeOut(cmd, app, map[string]any{
		"data": map[string]any{
			"addr":      ln.Addr().String(),
			"url":       url,
			"dir":       app.Config.Dir,
			"readOnly":  app.Config.Web.ReadOnly,
			"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
	fmt.Fprintf(cmd.ErrOrStderr(), "taskboard web running at %s\n", url)

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// Live streams only return once the hub is closed.
	srv.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		app.Log.Warn("web shutdown", "err", err)
		_ = hs.Close()
	}
	return nil
}
