package main

import (
	"alcyxob/hyrox-trainer/internal/api"
	"alcyxob/hyrox-trainer/internal/config"
	"alcyxob/hyrox-trainer/internal/logging"
	"alcyxob/hyrox-trainer/internal/repository"
	"alcyxob/hyrox-trainer/internal/repository/memory"
	"alcyxob/hyrox-trainer/internal/repository/mongo"
	"alcyxob/hyrox-trainer/internal/repository/sqlite"
	"alcyxob/hyrox-trainer/internal/service"
	"alcyxob/hyrox-trainer/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title HYROX Trainer API
// @version 1.0
// @description Adaptive HYROX training programs: enrollment, completion tracking, missed workouts and race readiness.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Repositories ---
	programs, completions, closeDB, err := openRepositories(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		if fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger); err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		logger.LogAttrs(ctx, slog.LevelInfo, "S3 disabled, program export unavailable")
	}

	// --- Initialize Services ---
	programService := service.NewProgramService(programs, completions, fileStorage,
		cfg.Engine.Missed, cfg.Engine.Analysis, logger,
		service.WithExportExpiry(cfg.S3.PresignExpiry))

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(logger, cfg.JWT.Secret, programService)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "server starting",
			slog.String("address", cfg.Server.Address), slog.String("driver", cfg.Database.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.LogAttrs(shutdownCtx, slog.LevelInfo, "server exited")
	return nil
}

// openRepositories connects the configured database driver and returns the
// repositories with a function releasing the connection.
func openRepositories(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (
	repository.ProgramRepository, repository.CompletionRepository, func(), error,
) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err = mongo.EnsureIndexes(indexCtx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		closeDB := func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.LogAttrs(context.Background(), slog.LevelError, "failed to disconnect MongoDB", slog.Any("error", err))
			}
		}
		return mongo.NewMongoProgramRepository(db), mongo.NewMongoCompletionRepository(db), closeDB, nil

	case config.DriverSQLite:
		db, err := sqlite.NewDatabase(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite database: %w", err)
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.LogAttrs(context.Background(), slog.LevelError, "failed to close sqlite database", slog.Any("error", err))
			}
		}
		return sqlite.NewSQLiteProgramRepository(db), sqlite.NewSQLiteCompletionRepository(db), closeDB, nil

	case config.DriverMemory:
		store := memory.NewStore()
		return store, store, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
