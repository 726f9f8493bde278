package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modhouse/pkg/api"
	"github.com/matzehuels/modhouse/pkg/buildinfo"
)

// serveCommand creates the serve command: the HTTP configurator API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		maxHouses int
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configurator HTTP API",
		Long: `Serve houses over HTTP. Clients create a house from a house type, then
drive stretch gestures, clip planes and handle visibility on it.

Routes:
  POST   /houses                              create a house
  GET    /houses                              list house ids
  GET    /houses/{id}                         snapshot
  DELETE /houses/{id}                         discard
  PUT    /houses/{id}/clip                    set clip planes
  PUT    /houses/{id}/handles                 show or hide handles
  POST   /houses/{id}/stretch/{axis}/{action} start, progress or end a gesture`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), maxHouses, watch)
		},
	}

	cmd.Flags().StringVar(&c.Config.Addr, "addr", c.Config.Addr, "listen address (env MODHOUSE_ADDR)")
	cmd.Flags().IntVar(&maxHouses, "max-houses", api.DefaultMaxHouses, "maximum number of live houses")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the catalog for new houses when its file changes")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, maxHouses int, watch bool) error {
	logger := loggerFromContext(ctx)

	idx, _, err := c.loadCatalog()
	if err != nil {
		return err
	}
	ch, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer ch.Close()

	srv, err := api.NewServer(api.Config{
		Catalog:   idx,
		Provider:  c.provider(ch),
		Strict:    c.Config.Strict,
		MaxDepth:  c.Config.MaxDepth,
		MaxHouses: maxHouses,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	var watcher *catalogWatcher
	if watch {
		if watcher, err = newCatalogWatcher(c.Config.Catalog); err != nil {
			return err
		}
	}

	httpSrv := &http.Server{
		Addr:              c.Config.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", c.Config.Addr, "catalog", c.Config.Catalog, "version", buildinfo.Version)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx, func() error {
				idx, _, err := c.loadCatalog()
				if err != nil {
					return err
				}
				srv.SetCatalog(idx)
				return nil
			})
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", c.Config.ShutdownTimeout)
		sctx, cancel := context.WithTimeout(context.Background(), c.Config.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
