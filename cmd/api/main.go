package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mestre-da-redacao/backend/internal/api/handlers"
	"github.com/mestre-da-redacao/backend/internal/api/router"
	"github.com/mestre-da-redacao/backend/internal/config"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/validator"
	"github.com/mestre-da-redacao/backend/internal/repository/postgres"
	"github.com/mestre-da-redacao/backend/internal/services"
	"github.com/mestre-da-redacao/backend/internal/storage"
	"github.com/mestre-da-redacao/backend/internal/worker"
	"github.com/mestre-da-redacao/backend/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	val := validator.New()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	resetRepo := postgres.NewPasswordResetRepository(db)
	essayRepo := postgres.NewEssayRepository(db)
	lessonRepo := postgres.NewLessonRepository(db)
	materialRepo := postgres.NewMaterialRepository(db)
	chatRepo := postgres.NewChatRepository(db)

	// Services
	mailer := services.NewMailer(cfg.Mail, log)
	subService := services.NewSubscriptionService(subRepo, log)
	userService := services.NewUserService(userRepo, subRepo, log, cfg.Auth.BCryptCost)
	resetService := services.NewPasswordResetService(
		resetRepo, userService, mailer, log,
		cfg.Server.SiteURL, cfg.Auth.ResetTokenExpiry, cfg.Auth.BCryptCost,
	)
	essayService := services.NewEssayService(essayRepo, subService, userService, mailer, log)
	lessonService := services.NewLessonService(lessonRepo, log)
	materialService := services.NewMaterialService(materialRepo, log)
	chatService := services.NewChatService(chatRepo, log)

	// Handlers
	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(db, log),
		Auth:         handlers.NewAuthHandler(userService, cfg, log, val),
		Reset:        handlers.NewResetHandler(resetService, log, val),
		Subscription: handlers.NewSubscriptionHandler(subService, log, val),
		Essay:        handlers.NewEssayHandler(essayService, log, val),
		Theme:        handlers.NewThemeHandler(essayService, log, val),
		Lesson:       handlers.NewLessonHandler(lessonService, subService, log, val),
		Material:     handlers.NewMaterialHandler(materialService, subService, log, val),
		Chat:         handlers.NewChatHandler(chatService, subService, log, val),
	}

	// Object storage is optional; without it presigned URL endpoints are off
	if cfg.Storage.Endpoint != "" {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		h.File = handlers.NewFileHandler(store, log, val)
	} else {
		log.Warn("Object storage not configured; file URL endpoints disabled")
	}

	handler := router.New(cfg, log, h)

	// Scheduled token maintenance
	var maintenance *worker.TokenMaintenanceWorker
	if cfg.Worker.Enabled {
		maintenance = worker.NewTokenMaintenanceWorker(subService, cfg.Worker.TokenSchedule, log)
		if err := maintenance.Start(); err != nil {
			log.Fatalf("Failed to start token maintenance worker: %v", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	if maintenance != nil {
		maintenance.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server stopped")
}
