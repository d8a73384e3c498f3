// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
//
//	card-issuance              run the HTTP API
//	card-issuance token <addr> print a bearer token for addr
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shivanand-hulikatti/card-issuance/internal/auth"
	"github.com/Shivanand-hulikatti/card-issuance/internal/clock"
	"github.com/Shivanand-hulikatti/card-issuance/internal/config"
	"github.com/Shivanand-hulikatti/card-issuance/internal/database"
	"github.com/Shivanand-hulikatti/card-issuance/internal/handler"
	"github.com/Shivanand-hulikatti/card-issuance/internal/ledger"
	"github.com/Shivanand-hulikatti/card-issuance/internal/metrics"
	"github.com/Shivanand-hulikatti/card-issuance/internal/notify"
	"github.com/Shivanand-hulikatti/card-issuance/internal/ownership"
	"github.com/Shivanand-hulikatti/card-issuance/internal/payment"
	"github.com/Shivanand-hulikatti/card-issuance/internal/repository"
	"github.com/Shivanand-hulikatti/card-issuance/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings() {
		logger.Warn("insecure configuration", "detail", w)
	}

	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer)

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(tokens, os.Args[2:], cfg.JWTTTL); err != nil {
			fmt.Fprintf(os.Stderr, "token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger, tokens); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func printToken(tokens *auth.TokenService, args []string, ttl time.Duration) error {
	if len(args) != 1 {
		return errors.New("usage: card-issuance token <address>")
	}
	token, err := tokens.Issue(args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(cfg config.Config, logger *slog.Logger, tokens *auth.TokenService) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Metrics ────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── 2. Notification sinks ─────────────────────────────────────────────
	sinks := []notify.Sink{notify.NewLogSink(logger)}
	var journal handler.Journal

	if cfg.Database.Enabled {
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		repo := repository.NewNotificationRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, repo)
		journal = repo
		logger.Info("connected to postgres", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	}

	if cfg.Redis.URL != "" {
		client, err := notify.DialRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()

		sinks = append(sinks, notify.NewRedisSink(client, cfg.Redis.Stream, cfg.Redis.MaxLen))
		logger.Info("connected to redis", "stream", cfg.Redis.Stream)
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyBuffer, sinks,
		notify.WithLogger(logger),
		notify.WithMetrics(m),
		notify.WithDrainTimeout(cfg.ShutdownTimeout),
	)
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_ = dispatcher.Run(dispatchCtx)
	}()

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	owners := ownership.NewRegistry()
	svc, err := service.NewIssuanceService(
		ledger.New(cfg.LedgerAddress, owners),
		owners,
		auth.NewGate(cfg.AdminAddress),
		payment.NewTreasury(),
		clock.NewSystem(),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithNotifier(dispatcher),
	)
	if err != nil {
		stopDispatch()
		return err
	}
	ledgerHandler := handler.NewLedgerHandler(svc, journal)

	// ── 4. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(ledgerHandler, handler.RouterConfig{
		Logger:      logger,
		Tokens:      tokens,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "admin", cfg.AdminAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stopDispatch()
			<-dispatchDone
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)

	// Handlers have returned, so nothing else is enqueued.
	stopDispatch()
	<-dispatchDone

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}
	logger.Info("server stopped")
	return nil
}
