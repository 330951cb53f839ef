package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/audit"
	"github.com/tildelab/tildes-backend/internal/config"
	"github.com/tildelab/tildes-backend/internal/database"
	"github.com/tildelab/tildes-backend/internal/handler"
	"github.com/tildelab/tildes-backend/internal/logger"
	"github.com/tildelab/tildes-backend/internal/modelservice"
	"github.com/tildelab/tildes-backend/internal/repository"
	"github.com/tildelab/tildes-backend/internal/router"
	"github.com/tildelab/tildes-backend/internal/service"
	"github.com/tildelab/tildes-backend/internal/validator"
	"github.com/tildelab/tildes-backend/internal/worker"
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
		Msg("Starting Tildes Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	classRepo := repository.NewClassRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	counterRepo := repository.NewErrorCounterRepository(pool)
	logRepo := repository.NewLogRepository(pool)

	// ─── External model service & audit trail ──────────────────────────
	models := modelservice.NewClient(cfg, log)
	recorder := audit.NewRecorder(rdb, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, classRepo)
	classService := service.NewClassService(pool, classRepo, models, recorder, log)
	enrollmentService := service.NewEnrollmentService(classRepo, studentRepo, models, recorder, log)
	studentService := service.NewStudentService(studentRepo)
	errorService := service.NewErrorTallyService(counterRepo)
	trainingService := service.NewTrainingService(models, cfg.TrainIterations, recorder, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Class:    handler.NewClassHandler(classService, enrollmentService),
		Student:  handler.NewStudentHandler(studentService),
		Errors:   handler.NewErrorsHandler(errorService),
		Training: handler.NewTrainingHandler(trainingService),
		Monitor:  handler.NewMonitorHandler(studentService, cfg.MonitorInterval, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(logRepo, rdb, log)
	go auditWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop the audit worker and let its queue drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
