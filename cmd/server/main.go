package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"coachfit/server/internal/api"
	"coachfit/server/internal/config"
	"coachfit/server/internal/repository"
	"coachfit/server/internal/repository/memory"
	mongorepo "coachfit/server/internal/repository/mongo"
	"coachfit/server/internal/service"
	"coachfit/server/internal/storage"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	setupLogging(cfg.Log)
	log.Info("starting coachfit server")

	// --- Repositories ---
	var (
		userRepo       repository.UserRepository
		templateRepo   repository.TemplateRepository
		activePlanRepo repository.ActivePlanRepository
		logRepo        repository.WorkoutLogRepository
		assignmentRepo repository.AssignmentRepository
		uploadRepo     repository.UploadRepository
	)

	if cfg.Database.URI == "" {
		log.Warn("no database URI configured, using transient in-memory store")
		store := memory.NewStore()
		userRepo = store.Users()
		templateRepo = store.Templates()
		activePlanRepo = store.ActivePlans()
		logRepo = store.WorkoutLogs()
		assignmentRepo = store.Assignments()
		uploadRepo = store.Uploads()
	} else {
		dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Info("disconnecting MongoDB")
			if err := mongorepo.DisconnectDB(dbClient); err != nil {
				log.Errorf("failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.WithField("database", cfg.Database.Name).Info("database connection established")

		go func() { // Run index creation in the background
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users"))
			mongorepo.EnsureTemplateIndexes(ctx, appDB.Collection("templates"))
			mongorepo.EnsureActivePlanIndexes(ctx, appDB.Collection("active_plans"))
			mongorepo.EnsureWorkoutLogIndexes(ctx, appDB.Collection("workout_logs"))
			mongorepo.EnsureAssignmentIndexes(ctx, appDB.Collection("assignments"))
			mongorepo.EnsureUploadIndexes(ctx, appDB.Collection("uploads"))
			log.Info("index creation process completed")
		}()

		userRepo = mongorepo.NewMongoUserRepository(appDB)
		templateRepo = mongorepo.NewMongoTemplateRepository(appDB)
		activePlanRepo = mongorepo.NewMongoActivePlanRepository(appDB)
		logRepo = mongorepo.NewMongoWorkoutLogRepository(appDB)
		assignmentRepo = mongorepo.NewMongoAssignmentRepository(appDB)
		uploadRepo = mongorepo.NewMongoUploadRepository(appDB)
	}

	// --- File storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		fileStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %v", err)
		}
		log.WithField("bucket", cfg.S3.BucketName).Info("file storage initialized")
	} else {
		log.Warn("file storage disabled, session video endpoints will be unavailable")
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	templateService := service.NewTemplateService(templateRepo)
	planService := service.NewPlanService(templateRepo, activePlanRepo, logRepo, assignmentRepo, uploadRepo, fileStorage)
	coachService := service.NewCoachService(userRepo, templateRepo, assignmentRepo, logRepo)

	// --- HTTP ---
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, authService, templateService, planService, coachService)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Info("server exiting")
}

func setupLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
