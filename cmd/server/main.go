// Command salesgate starts the sales API: HTTP on HTTP_ADDR, gRPC health on GRPC_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/salesgate/internal/config"
	"github.com/and161185/salesgate/internal/crypto/fieldcipher"
	"github.com/and161185/salesgate/internal/logger"
	"github.com/and161185/salesgate/internal/migrate"
	"github.com/and161185/salesgate/internal/repository/postgres"
	grpcserver "github.com/and161185/salesgate/internal/server/grpc"
	httpserver "github.com/and161185/salesgate/internal/server/http"
	"github.com/and161185/salesgate/internal/service"
	"github.com/and161185/salesgate/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http", cfg.HTTPAddr),
		zap.String("grpc", cfg.GRPCAddr),
	)

	cipher, err := fieldcipher.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("field cipher", zap.Error(err))
	}
	issuer, err := token.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL)
	if err != nil {
		log.Fatal("token issuer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		log.Fatal("migrate up", zap.Error(err))
	}
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	saleRepo := postgres.NewSaleRepo(db, cipher, log)
	blacklistRepo := postgres.NewBlacklistRepo(db)
	activityRepo := postgres.NewActivityRepo(db)

	// Services
	revocations := service.NewRevocationStore(blacklistRepo, issuer)
	tracker := service.NewActivityTracker(activityRepo, revocations, issuer, cfg.InactivityTimeout, log)
	gate := service.NewGate(revocations, tracker, log)
	authSvc := service.NewAuthService(userRepo, issuer, revocations, tracker, service.LogNotifier{Log: log}, cfg.ResetTTL, log)
	saleSvc := service.NewSaleService(saleRepo)
	cleanup := service.NewCleanup(revocations, tracker, cfg.ActivityRetention, cfg.CleanupAt, log)

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		cleanup.Run(ctx)
	}()

	errCh := make(chan error, 2)

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpserver.NewRouter(httpserver.Deps{
			Auth:   authSvc,
			Sales:  saleSvc,
			Tokens: issuer,
			Gate:   gate,
			Log:    log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatal("grpc listen", zap.Error(err))
		}
		grpcSrv = grpcserver.New(log, issuer, gate)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	// Wait for stop
	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		exitCode = 1
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.Shutdown(shutdownTimeout)
	}
	<-cleanupDone

	log.Info("shutdown complete")
	if exitCode != 0 {
		_ = log.Sync()
		os.Exit(exitCode)
	}
}
