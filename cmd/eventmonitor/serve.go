package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/eventmonitor/config"
	"github.com/jonwraymond/eventmonitor/eventlog"
	"github.com/jonwraymond/eventmonitor/health"
	"github.com/jonwraymond/eventmonitor/identity"
	"github.com/jonwraymond/eventmonitor/observe"
	"github.com/jonwraymond/eventmonitor/observe/exporters"
	"github.com/jonwraymond/eventmonitor/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "listen port, overrides PORT")
	return cmd
}

func newPinger(ctx context.Context, dsn string) (health.Pinger, func(), error) {
	if dsn == "" {
		return health.AlwaysUp(), func() {}, nil
	}
	pg, err := health.NewPostgresPinger(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func newHealth(cfg config.Config, pinger health.Pinger) *health.Aggregator {
	return health.NewStandard(health.StandardConfig{
		CPUThreshold: cfg.Health.CPUThreshold,
		Database:     pinger,
		Timeout:      cfg.Health.Timeout,
	})
}

// serve runs the server until ctx is cancelled, then drains in-flight
// requests and flushes telemetry within the shutdown timeout.
func serve(ctx context.Context, cfg config.Config) error {
	obs, err := observe.NewObserver(ctx, cfg.ObserverConfig())
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	logger := obs.Logger()

	mw, metrics, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}

	resolver, err := identity.New(cfg.ResolverConfig(), logger)
	if err != nil {
		return err
	}

	pinger, closePinger, err := newPinger(ctx, cfg.Health.DatabaseURL)
	if err != nil {
		return err
	}
	defer closePinger()

	mux := server.New(&server.Handler{
		ServiceName: cfg.Service.Name,
		Identity:    resolver,
		Health:      newHealth(cfg, pinger),
		Events:      eventlog.New(server.CountEvents(metrics)),
		Logger:      logger,
		Metrics:     metrics,
	}, mw)
	if cfg.Observe.MetricsExporter == exporters.Prometheus {
		server.MountMetrics(mux, mw)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "listening",
			observe.Field{Key: "addr", Value: srv.Addr},
			observe.Field{Key: "identity_source", Value: cfg.Identity.Source},
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), obs.Shutdown(shutdownCtx))
	})
	return g.Wait()
}
