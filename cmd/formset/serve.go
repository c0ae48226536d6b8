package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formset/pkg/httpapi"
	"github.com/goliatone/go-formset/pkg/session"
)

var (
	serveAddr     string
	shutdownGrace time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve form-set sessions over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().DurationVar(&shutdownGrace, "shutdown-grace", 5*time.Second, "graceful shutdown timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	rt, err := buildRuntime(cfg, cfg.Server.BasePath, logger)
	if err != nil {
		return err
	}

	store := session.NewStore(
		session.WithTTL(cfg.Server.SessionTTL.Duration),
		session.WithMaxSize(cfg.Server.MaxSessions),
		session.WithLogger(logger.Named("session")),
	)

	apiOpts := []httpapi.Option{
		httpapi.WithBasePath(cfg.Server.BasePath),
		httpapi.WithLogger(logger.Named("http")),
		httpapi.WithControllerOptions(rt.controller...),
	}
	if rt.catalog != nil {
		apiOpts = append(apiOpts, httpapi.WithCatalog(rt.catalog))
	}
	handler, err := httpapi.New(store, rt.renderer, apiOpts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr), zap.String("base", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
			return err
		}
		store.Purge()
		return nil
	})
	return g.Wait()
}
