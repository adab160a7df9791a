package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"researchoffice/internal/cache"
	"researchoffice/internal/config"
	"researchoffice/internal/database"
	"researchoffice/internal/handlers"
	"researchoffice/internal/render"
	"researchoffice/internal/router"
	"researchoffice/internal/search"
	"researchoffice/internal/session"
	"researchoffice/internal/storage"
	"researchoffice/internal/store"
	"researchoffice/web"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 30 * time.Second

// Server timeouts. Headers must arrive quickly, but ReadTimeout covers the
// whole body and WriteTimeout runs from the end of the headers, so both
// leave room for a 50 MiB research upload on a slow link.
const (
	readHeaderTimeout = 10 * time.Second
	bodyTimeout       = 10 * time.Minute
	idleTimeout       = 120 * time.Second
)

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       bodyTimeout,
		WriteTimeout:      bodyTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// serveCmd runs the HTTP server until SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sync, err := setup()
		if err != nil {
			return err
		}
		defer sync()
		return serve(cfg)
	},
}

func serve(cfg *config.Config) error {
	// Connect to PostgreSQL and run pending migrations.
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, seedOptions(cfg)); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Connect to Valkey (sessions + page cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()

	// In dev mode, layouts load Tailwind from the CDN; in production they
	// use the stylesheet embedded in the binary.
	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	files, err := uploadStore(cfg)
	if err != nil {
		return err
	}

	meili := connectMeili(cfg)
	indexer := search.NewIndexer(meili)
	sessions := session.NewStore(valkeyClient, secureCookies)

	deps := &handlers.Deps{
		Renderer: renderer,
		Sessions: sessions,
		News:     store.NewNewsStore(db),
		Research: store.NewResearchStore(db),
		Projects: store.NewProjectStore(db),
		Users:    store.NewUserStore(db),
		Content:  store.NewContentStore(db),
		CacheLog: store.NewCacheLogStore(db),
		Pages:    cache.NewPageCache(valkeyClient, cache.DefaultPageTTL),
		Files:    files,
		Indexer:  indexer,
		Searcher: search.NewSearcher(meili),
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	opts := router.Options{
		Sessions:       sessions,
		TLS:            secureCookies,
		AllowedOrigins: cfg.AllowedOrigins(),
		Static:         static,
	}
	if !cfg.S3Enabled() {
		opts.PublicDir = cfg.PublicDir
	}

	r := router.New(opts, router.Handlers{
		API:       handlers.NewAPI(deps),
		Pages:     handlers.NewPages(deps),
		Dashboard: handlers.NewDashboard(deps),
		Auth:      handlers.NewAuth(deps),
	})

	srv := newHTTPServer(cfg.Addr(), r)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Let detached index writes finish before the clients close.
	indexer.Wait()

	slog.Info("server stopped gracefully")
	return nil
}

// uploadStore picks S3 when configured and the local public directory
// otherwise.
func uploadStore(cfg *config.Config) (storage.Store, error) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil
	}

	local, err := storage.NewLocal(cfg.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("init local storage: %w", err)
	}
	slog.Info("storing uploads locally", "dir", local.Root())
	return local, nil
}
