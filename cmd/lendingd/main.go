package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/credimart/lending-service/internal/application/usecase"
	"github.com/credimart/lending-service/internal/domain/service"
	"github.com/credimart/lending-service/internal/infrastructure/config"
	"github.com/credimart/lending-service/internal/infrastructure/configstore"
	"github.com/credimart/lending-service/internal/infrastructure/messaging"
	pgRepo "github.com/credimart/lending-service/internal/infrastructure/persistence/postgres"
	"github.com/credimart/lending-service/internal/infrastructure/queue"
	redisAdapter "github.com/credimart/lending-service/internal/infrastructure/redis"
	grpcPresentation "github.com/credimart/lending-service/internal/presentation/grpc"
	"github.com/credimart/lending-service/internal/presentation/rest"
	"github.com/credimart/lending-service/pkg/auth"
	pkgkafka "github.com/credimart/lending-service/pkg/kafka"
	"github.com/credimart/lending-service/pkg/observability"
	pkgpostgres "github.com/credimart/lending-service/pkg/postgres"
	pkgredis "github.com/credimart/lending-service/pkg/redis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting lending-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPAddr,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(ctx) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Warn("failed to initialize metrics, continuing without metrics", "error", err)
	} else {
		defer func() { _ = meterProvider.Shutdown(ctx) }() //nolint:errcheck // best-effort shutdown
	}

	// Database.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Redis.
	redisClient, err := pkgredis.NewClient(ctx, pkgredis.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to redis")

	// Kafka.
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg)
	defer kafkaProducer.Close()

	// Infrastructure adapters.
	borrowerRepo := pgRepo.NewBorrowerRepo(pool)
	loanRepo := pgRepo.NewLoanRepo(pool)
	historyRepo := pgRepo.NewScoreHistoryRepo(pool)
	txRepo := pgRepo.NewTransactionRepo(pool)
	cfgStore := configstore.NewStore(pool)

	eligCache := redisAdapter.NewEligibilityCache(redisClient)
	sessionStore := redisAdapter.NewOfferSessionStore(redisClient)
	idemCache := redisAdapter.NewIdempotencyCache(redisClient)
	locker := redisAdapter.NewLocker(redisClient, logger)

	publisher := messaging.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.EventTopic, logger)
	disburseQueue := queue.NewKafkaDisbursementQueue(kafkaProducer, cfg.Kafka.DisburseTopic)

	// Domain services.
	engine := service.NewScoringEngine()
	calculator := service.NewEligibilityCalculator()

	// Use cases.
	computeOfferUC := usecase.NewComputeOfferUseCase(
		borrowerRepo, loanRepo, eligCache, sessionStore, cfgStore, calculator, publisher,
		usecase.ComputeOfferConfig{
			SessionTTL:     cfg.Issuance.SessionTTL,
			EligibilityTTL: cfg.Issuance.EligibilityTTL,
		}, logger)
	acceptOfferUC := usecase.NewAcceptOfferUseCase(
		borrowerRepo, loanRepo, sessionStore, idemCache, eligCache, locker, disburseQueue, publisher,
		usecase.AcceptOfferConfig{
			IdempotencyTTL: cfg.Issuance.IdempotencyTTL,
			LockTTL:        cfg.Issuance.LockTTL,
			CooldownWindow: cfg.Issuance.CooldownWindow,
		}, logger)
	disburseUC := usecase.NewDisburseLoanUseCase(loanRepo, sessionStore, publisher, logger)
	recordRepaymentUC := usecase.NewRecordRepaymentUseCase(
		txRepo, loanRepo, borrowerRepo, historyRepo, engine, calculator, cfgStore, eligCache, publisher, logger)
	getLoanUC := usecase.NewGetLoanUseCase(loanRepo)

	// Disbursement workers.
	workerCfg := queue.DefaultWorkerConfig()
	workerCfg.Workers = cfg.Issuance.WorkerCount
	workers := queue.NewWorkerPool(
		workerCfg, kafkaCfg, cfg.Kafka.DisburseTopic, cfg.Kafka.DeadLetterTopic,
		kafkaProducer, disburseUC, logger)
	defer workers.Close()
	go workers.Start(ctx)

	// JWT service (validation-only: public key preferred, secret as fallback).
	jwtCfg := auth.JWTConfig{
		Issuer: getEnv("JWT_ISSUER", "credimart-gateway"),
	}
	switch {
	case os.Getenv("JWT_PUBLIC_KEY") != "":
		jwtCfg.PublicKeyPEM = os.Getenv("JWT_PUBLIC_KEY")
	case os.Getenv("JWT_PUBLIC_KEY_FILE") != "":
		keyData, loadErr := auth.LoadKeyFromFile(os.Getenv("JWT_PUBLIC_KEY_FILE"))
		if loadErr != nil {
			logger.Error("failed to load JWT public key file", "error", loadErr)
			os.Exit(1)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = getEnv("JWT_SECRET", "dev-secret")
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// gRPC server.
	handler := grpcPresentation.NewLendingHandler(computeOfferUC, acceptOfferUC, recordRepaymentUC, getLoanUC)
	grpcServer := grpcPresentation.NewServer(handler, logger, jwtSvc)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(logger, map[string]rest.Pinger{
		"postgres": pool,
		"redis":    redisClient,
	})
	healthHandler.RegisterRoutes(mux)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("lending-service stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
