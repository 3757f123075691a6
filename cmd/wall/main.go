package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wish-wall/api"
	"wish-wall/auth"
	"wish-wall/contract"
	"wish-wall/domain/wall"
	"wish-wall/infrastructure/grpc/server"
	"wish-wall/infrastructure/storage"
	"wish-wall/internal"
	"wish-wall/moderation"
	"wish-wall/runtime"
	"wish-wall/runtime/workers"
	"wish-wall/services"

	"github.com/Netflix/go-env"
	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Wall terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component explicitly, serves gRPC and HTTP, and shuts
// down in reverse order once a signal arrives.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	links, err := wall.NewGuestLinks(config.PublicBaseURL, config.QRServiceURL)
	if err != nil {
		return exitConfig, fmt.Errorf("invalid PUBLIC_BASE_URL: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Message store
	store, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStore()

	// 4. Moderator hints
	dictionary, err := moderation.NewLoader(nil).LoadAll(moderation.DefaultDictionaryPath)
	if err != nil {
		return exitRuntime, fmt.Errorf("flagged words loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(dictionary.Words, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}

	// 5. Services & Supervision
	collection := config.Collection()
	registry := runtime.NewRegistry()
	issuer := auth.NewIssuer(config.SessionSecret, config.AuthTokenDuration)
	submission := services.NewSubmissionService(store, collection, logger)
	moderationService := services.NewModerationService(store, collection, registry, moderator, logger, config.SinkTimeout)
	broadcastService := services.NewBroadcastService(store, collection, registry, logger, config.SinkTimeout)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		moderationService,
		broadcastService,
		workers.NewHeartbeatWorker(logger, registry, config.HeartbeatInterval),
	)
	supDone := make(chan struct{})
	go func() {
		logger.Info("Starting supervisor...", "collection", collection)
		sup.Run(workerCtx)
		close(supDone)
	}()

	errChan := make(chan error, 2)

	// 6. gRPC Server Setup
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	interceptor := auth.NewInterceptor(issuer, server.WallService_CreateSession_FullMethodName)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(logger),
			interceptor.Unary,
		),
		grpc.ChainStreamInterceptor(interceptor.Stream),
	)
	server.RegisterWallServiceServer(s, server.NewWallServer(logger, issuer, submission, moderationService, broadcastService))

	go func() {
		logger.Info("Starting gRPC server", "address", grpcAddress, "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("📡 gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. HTTP Server Setup
	handler := api.NewHandler(logger, issuer, submission, moderationService, broadcastService, registry, links, config.StreamKeepAlive)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.HTTPPort),
		Handler:           api.NewRouter(logger, issuer, handler),
		ReadHeaderTimeout: 10 * time.Second,
		// SSE requests end with the workers.
		BaseContext: func(net.Listener) context.Context { return workerCtx },
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "guest_url", links.GuestURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 9. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	cancelWorkers()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	// Watch streams only end when their client leaves, so they get a bounded grace period.
	grpcStopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(grpcStopped)
	}()
	select {
	case <-grpcStopped:
	case <-shutdownCtx.Done():
		logger.Warn("Forcing gRPC stop, watchers still connected")
		s.Stop()
	}
	<-supDone
	logger.Info("Program stopped cleanly")

	return code, runErr
}

// openStore builds the configured backend. The returned func releases it and
// whatever it runs on.
func openStore(ctx context.Context, config internal.Config, logger *slog.Logger) (contract.DocumentStore, func(), error) {
	switch config.StoreBackend {
	case internal.BackendRedis:
		return openRedis(ctx, config, logger)
	default:
		return openBadger(ctx, config, logger)
	}
}

func openBadger(ctx context.Context, config internal.Config, logger *slog.Logger) (contract.DocumentStore, func(), error) {
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s?prefix=%s", config.DebugPort, endpoint, storage.BadgerKeyPrefix)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, endpoint, storage.InspectMapper)
	}

	store := storage.NewBadgerStore(db, logger)
	return store, func() {
		_ = store.Close()
		// The database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}, nil
}

func openRedis(ctx context.Context, config internal.Config, logger *slog.Logger) (contract.DocumentStore, func(), error) {
	addr := config.RedisAddr
	var mr *miniredis.Miniredis
	if addr == "" {
		// temporary redis server for development
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("error creating redis db: %w", err)
		}
		addr = mr.Addr()
		logger.Warn("REDIS_ADDR is empty, using an in-process redis", "address", addr)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
		return nil, nil, fmt.Errorf("cannot connect to redis db: %w", err)
	}

	store := storage.NewRedisStore(client, logger)
	return store, func() {
		_ = store.Close()
		logger.Info("Closing Redis client...")
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
	}, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
