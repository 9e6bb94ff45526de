package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/flatblog/internal/config"
	"github.com/yourusername/flatblog/internal/post"
	"github.com/yourusername/flatblog/internal/storage"
	"github.com/yourusername/flatblog/internal/views"
	"github.com/yourusername/flatblog/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the blog HTTP server",
		Long: `Start the blog HTTP server.

Posts are loaded from storage.path; a missing file is created empty and an
unreadable one is moved aside so the server starts with no posts.

The server holds storage.path + ".lock" while it runs, so "posts create"
and "posts delete" refuse to rewrite the file underneath it.

Example:
  flatblog serve
  flatblog serve --addr :8080 --config ./config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

// openStore builds the post store described by cfg and loads it. A load
// failure is logged and leaves the store empty.
func openStore(cfg *config.Config, logger *slog.Logger) (*post.Store, error) {
	dates, err := post.NewDateFormatter(cfg.Blog.DateLocale)
	if err != nil {
		return nil, err
	}

	store := post.NewStore(storage.NewJSONStore[post.Post](cfg.Storage.Path),
		post.WithDateFormatter(dates),
		post.WithLogger(logger))
	if err := store.Load(); err != nil {
		logger.Error("Starting with no posts", "path", cfg.Storage.Path, "error", err)
	}
	return store, nil
}

// openLockedStore is openStore for callers that rewrite the data file. The
// returned func releases the lock.
func openLockedStore(cfg *config.Config, logger *slog.Logger) (*post.Store, func(), error) {
	lock, err := storage.Lock(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	unlock := func() {
		if err := lock.Unlock(); err != nil {
			logger.Error("Failed to release data file lock", "path", lock.Path(), "error", err)
		}
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return store, unlock, nil
}

func runServer(parent context.Context, opts *ServeOptions) error {
	cfg, logger := opts.Config, opts.Logger
	if parent == nil {
		parent = context.Background()
	}

	store, unlock, err := openLockedStore(cfg, logger)
	if err != nil {
		return err
	}
	defer unlock()

	renderer, err := views.New(cfg.Views.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to load views: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := web.NewRouter(store, renderer, web.Options{
		HomeExcerptWords: cfg.Blog.HomeExcerptWords,
		ListExcerptWords: cfg.Blog.ListExcerptWords,
		StaticDir:        cfg.Static.Dir,
	}, logger)

	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening", "addr", addr, "posts", len(store.List()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Views.Watch {
		g.Go(func() error {
			return renderer.Watch(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
