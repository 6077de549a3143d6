package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"songvote/internal/broadcast"
	"songvote/internal/config"
	"songvote/internal/domain/admin"
	api "songvote/internal/http"
	"songvote/internal/metrics"
	jwtpkg "songvote/internal/platform/jwt"
	"songvote/internal/platform/logging"
	"songvote/internal/repository"
	"songvote/internal/session"
	"songvote/internal/state"
	"songvote/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	api.SetLogger(logger)
	metrics.Register()

	opened, err := repository.Open(ctx, repository.Options{
		StateURL:           cfg.StateURL,
		GCSCredentialsFile: cfg.GCSCredentialsFile,
	})
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer opened.Closer.Close()

	store := state.NewStore(opened.Repo, logger)
	votes := store.LoadVotes(ctx)
	states := store.LoadStates(ctx)
	logger.Info("session loaded", "backend", opened.Kind, "votes", votes.Len(), "states", states.Len())

	hub := broadcast.NewHub(logger)

	var persister session.Persister = store
	var writer *worker.StateWriter
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()
	if cfg.WriteBehind(opened.Remote) {
		writer = worker.NewStateWriter(store, logger)
		persister = writer
		go writer.Run(writerCtx)
		logger.Info("write-behind persistence enabled")
	}

	coord := session.NewCoordinator(votes, states, persister, hub, logger)
	dispatcher := session.NewDispatcher(coord)

	adminSvc := admin.NewService(cfg.AdminPasswordHash, jwtpkg.NewManager(cfg.JWTSecret, "songvote"), cfg.AdminTokenTTL)
	if !adminSvc.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH not set, operator routes are open")
	}

	router := api.NewRouter(api.Deps{
		Coordinator: coord,
		Loader:      store,
		Admin:       adminSvc,
		Store:       store,
		Stream: broadcast.NewWSHandler(hub, dispatcher, broadcast.WSOptions{
			AllowedOrigins: cfg.WSAllowedOrigins,
			EventRate:      rate.Limit(cfg.VoteRatePerSec),
			EventBurst:     cfg.VoteBurst,
		}, logger),
		Events: broadcast.NewSSEHandler(hub, coord, logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-sigCtx.Done():
		logger.Info("shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	coord.Flush(shutdownCtx)
	if writer != nil {
		stopWriter()
		<-writer.Done()
	}

	logger.Info("server stopped")
	return nil
}
