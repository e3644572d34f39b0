package main

import (
	"context"
	"errors"
	"fmt"
	"interaction-lab/auth"
	grpcserver "interaction-lab/infrastructure/grpc/server"
	"interaction-lab/infrastructure/http/server"
	"interaction-lab/infrastructure/rest"
	"interaction-lab/infrastructure/storage"
	"interaction-lab/internal"
	"interaction-lab/runtime"
	"interaction-lab/runtime/workers"
	"interaction-lab/views"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment alone may be enough.
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Views must all fit the custom id budget before any traffic is served
	registry := runtime.NewRegistry()
	if err := registry.Register(views.All()...); err != nil {
		return exitConfig, fmt.Errorf("view registration failed: %w", err)
	}
	if err := registry.VerifyBudgets(); err != nil {
		return exitConfig, err
	}

	verifier, err := auth.NewVerifier(config.PublicKey, config.SignatureMaxAge)
	if err != nil {
		return exitConfig, err
	}

	// 3. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, OffloadMapper)
	}

	offloads := storage.NewOffloadRepository(db, logger, config.OffloadRetention)
	// Continuations never survive a restart.
	if _, err := offloads.Abandon(ctx, "process restarted"); err != nil {
		return exitRuntime, err
	}

	sup := workers.NewSupervisor(logger).
		Add(workers.NewValueLogGC(db, logger, config.GCInterval, config.GCDiscardRatio))

	// 4. Dispatch
	restClient := rest.NewClient(logger, nil, config.APIBaseURL, config.ApplicationID, config.BotToken,
		config.RestRateLimit, config.RestBurst)
	background := runtime.NewBackground(logger)
	defer background.Stop()
	offloader := runtime.NewOffloader(logger, restClient, background, offloads, config.OffloadTimeout, config.Verbose())
	engine := runtime.NewEngine(logger, registry, restClient, offloader, config.Verbose())

	if config.SyncCommands {
		if err := syncCommands(ctx, logger, restClient, registry); err != nil {
			return exitRuntime, err
		}
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 6. Servers
	address := net.JoinHostPort(config.Host, fmt.Sprint(config.Port))
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.NewInteractionServer(logger, engine, verifier, config.RequestMaxBytes).Routes(config.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting interactions endpoint", "address", address, "path", config.Path, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	healthAddress := net.JoinHostPort(config.Host, fmt.Sprint(config.HealthPort))
	listener, err := net.Listen("tcp", healthAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
	}
	health := grpcserver.NewHealthServer(logger)
	s := grpcserver.NewGRPCServer(logger, health)
	go func() {
		logger.Info("Starting gRPC health server", "address", healthAddress)
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	health.MarkServing()

	if config.AnnounceChannelID != "" {
		if err := announce(ctx, engine, config.AnnounceChannelID, config.AnnounceTopic); err != nil {
			logger.Warn("Start-up announcement failed", "channel_id", config.AnnounceChannelID, "error", err)
		}
	}

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		health.MarkNotServing()
		s.Stop()
		sup.Stop()
		<-supDone
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	// No new interaction is accepted, running continuations get the grace period.
	logger.Info("Shutting down gracefully...")
	health.MarkNotServing()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server did not stop cleanly", "error", err)
	}
	if err := background.Wait(shutdownCtx); err != nil {
		logger.Warn("Continuations cancelled at shutdown", "error", err)
	}
	s.GracefulStop()
	sup.Stop()
	<-supDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLogger(storage.NewBadgerLogger(logger))

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}
