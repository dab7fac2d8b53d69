// Command wxshell hosts the weather shell: the interception layer, page
// contexts, their websocket bridge and the persistent slots.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/wxshell/auth"
	"github.com/jonwraymond/wxshell/bridge"
	"github.com/jonwraymond/wxshell/cache"
	"github.com/jonwraymond/wxshell/health"
	"github.com/jonwraymond/wxshell/intercept"
	"github.com/jonwraymond/wxshell/internal/config"
	"github.com/jonwraymond/wxshell/internal/server"
	"github.com/jonwraymond/wxshell/observe"
	"github.com/jonwraymond/wxshell/secret"
	"github.com/jonwraymond/wxshell/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wxshell:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, secret.NewDefaultResolver())
	if err != nil {
		return err
	}

	tel, err := observe.New(ctx, cfg.Observe())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()
	logger := tel.Logger()
	if cfg.EphemeralSecret {
		logger.Warn(ctx, "no token secret configured; bridge tokens will not survive a restart")
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	client := &http.Client{}
	network := func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return client.Do(req.WithContext(ctx))
	}

	pages := bridge.NewRegistry()
	storage := cache.NewStorage(cache.NewStoreBackend(st),
		cache.WithFetch(network), cache.WithPolicy(cfg.CachePolicy()))
	worker, err := intercept.New(cfg.Worker(), storage,
		intercept.WithNetwork(network),
		intercept.WithClients(pages),
		intercept.WithMiddleware(tel.Middleware()),
		intercept.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	worker.Start(ctx)

	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret: []byte(cfg.TokenSecret),
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return err
	}

	agg := health.NewAggregator(health.DefaultTimeout)
	agg.Register(health.NewPingChecker("store", st))
	agg.Register(health.NewStateChecker("worker", func() (string, bool) {
		s := worker.State()
		return s.String(), s == intercept.StateActive
	}))

	deps := server.Deps{
		Worker:        worker,
		Pages:         pages,
		Store:         st,
		Glue:          bridge.NewGlue(st, bridge.WithGlueLogger(logger)),
		Tokens:        tokens,
		Health:        agg,
		Logger:        logger,
		MaxInflight:   cfg.MaxInflight,
		AttachTimeout: cfg.TokenTTL,
	}
	if cfg.MetricsExporter == "prometheus" {
		deps.Metrics = promhttp.Handler()
	}
	srv, err := server.New(ctx, deps)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "wxshell started",
			observe.F("addr", cfg.Addr),
			observe.F("origin", cfg.Origin),
			observe.F("store", cfg.Store))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info(shutdownCtx, "shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.StoreDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := store.OpenRedis(ctx, cfg.StoreDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
}
