package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/certificate"
	"github.com/stemsi/acequiz-backend/internal/config"
	"github.com/stemsi/acequiz-backend/internal/database"
	"github.com/stemsi/acequiz-backend/internal/handler"
	"github.com/stemsi/acequiz-backend/internal/logger"
	"github.com/stemsi/acequiz-backend/internal/repository"
	"github.com/stemsi/acequiz-backend/internal/router"
	"github.com/stemsi/acequiz-backend/internal/service"
	"github.com/stemsi/acequiz-backend/internal/validator"
	"github.com/stemsi/acequiz-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting " + cfg.AppName)

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Set Catalog ─────────────────────────────────────
	registry, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("Failed to load catalog")
	}
	log.Info().
		Str("path", cfg.CatalogPath).
		Int("question_sets", registry.Len()).
		Int("available", len(registry.ListAvailable(catalog.Filter{}))).
		Msg("Catalog loaded")

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	if pool != nil {
		defer pool.Close()
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	signer := certificate.NewSigner(cfg.CertSigningSecret, cfg.CertIssuer)
	if !signer.Enabled() {
		log.Warn().Msg("CERT_SIGNING_SECRET not set, certificates carry no verification token")
	}

	var certRepo *repository.CertificateRepository
	if pool != nil {
		certRepo = repository.NewCertificateRepository(pool)
	}
	certService := service.NewCertificateService(certRepo, rdb, signer, cfg.CertCacheTTL, log)

	// Results are only queued when a worker can drain the queue.
	var archiver service.ResultArchiver
	if certRepo != nil && rdb != nil {
		archiver = certService
	}

	portalService := service.NewPortalService(cfg, registry, signer, archiver, log)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Portal:      handler.NewPortalHandler(portalService, mediaService, log),
		Exam:        handler.NewExamHandler(portalService),
		Certificate: handler.NewCertificateHandler(certService, log),
		WS:          handler.NewWSHandler(portalService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if archiver != nil {
		certWorker := worker.NewCertificateWorker(certRepo, rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			certWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the exam countdown. A running exam stays unfinished.
	portalService.Close()

	// 3. Stop background workers and wait for the last batch to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
