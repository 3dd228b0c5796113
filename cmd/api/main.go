package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-profile-portal/config"
	_ "go-profile-portal/docs" // Important for Swagger
	v1 "go-profile-portal/internal/delivery/http/v1"
	"go-profile-portal/internal/domain"
	"go-profile-portal/internal/repository/cache"
	"go-profile-portal/internal/repository/postgres"
	"go-profile-portal/internal/usecase"
	"go-profile-portal/migrations"
	"go-profile-portal/pkg/audit"
	"go-profile-portal/pkg/database"
	"go-profile-portal/pkg/events"
	"go-profile-portal/pkg/logger"
	"go-profile-portal/pkg/metrics"
	"go-profile-portal/pkg/redis"
	"go-profile-portal/pkg/scan"
	"go-profile-portal/pkg/storage"
	"go-profile-portal/pkg/token"
	"go-profile-portal/pkg/tracing"
	"go-profile-portal/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Profile Portal API
// @version         1.0
// @description     Candidate profiles with staff filtering and spreadsheet export.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel, "profile-portal", cfg.AppEnv)
	logger.Log.Info("Starting profile portal", "port", cfg.Port, "env", cfg.AppEnv)

	auditLog := audit.Init("profile-portal", cfg.AppEnv)
	defer auditLog.Sync()

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
		ServiceName: "profile-portal",
		Environment: cfg.AppEnv,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool, migrations.FS); err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// 4. Redis is optional; rate limiting falls back to memory
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup Storage
	files, mediaRoot, storageCheck, err := setupStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialise storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	profileRepo := cache.NewProfileRepository(
		postgres.NewProfileRepository(dbPool),
		redis.NewCache("profile-portal:"),
		10*time.Minute,
	)

	// 7. Setup UseCases
	m := metrics.New()
	validate := validation.New()
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	optionalChecks := map[string]usecase.HealthCheck{
		"redis": redis.HealthCheck,
	}
	var scanner scan.Scanner = scan.Nop{}
	if cfg.ClamAVAddress != "" {
		clam := scan.NewClamAV(cfg.ClamAVAddress, 30*time.Second)
		scanner = clam
		optionalChecks["scanner"] = clam.Ping
	} else {
		logger.Log.Warn("CLAMAV_ADDRESS not configured, uploads will not be scanned")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := events.NewKafka(events.KafkaConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			RequiredAcks: "one",
		})
		if err != nil {
			logger.Log.Error("Failed to configure event publisher", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPub
	}
	defer publisher.Close()

	authUC := usecase.NewAuthUsecase(userRepo, tokens, validate, auditLog, m)
	profileUC := usecase.NewProfileUsecase(profileRepo, userRepo, files, validate, usecase.ProfileConfig{
		MaxUploadBytes:    cfg.MaxUploadBytes,
		PhotoMaxDimension: cfg.PhotoMaxDimension,
		Scanner:           scanner,
		Events:            publisher,
	}, auditLog, m)
	exportUC := usecase.NewExportUsecase(profileRepo, cfg.Location, auditLog, m)
	healthUC := usecase.NewHealthUsecase(
		map[string]usecase.HealthCheck{
			"database": dbPool.Ping,
			"storage":  storageCheck,
		},
		optionalChecks,
		2*time.Second,
	)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:    authUC,
		ProfileUC: profileUC,
		ExportUC:  exportUC,
		HealthUC:  healthUC,
		Files:     files,
		Tokens:    tokens,
		Metrics:   m,
		Config:    cfg,
		MediaRoot: mediaRoot,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           tracing.Handler(router, "profile-portal"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// setupStorage picks the blob driver. mediaRoot is non-empty only for the
// local driver, whose files the router serves itself.
func setupStorage(ctx context.Context, cfg *config.Config) (domain.FileStorage, string, usecase.HealthCheck, error) {
	switch cfg.StorageDriver {
	case "s3":
		s3Store, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", nil, err
		}
		return s3Store, "", s3Store.Ping, nil
	case "minio":
		minioStore, err := storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKeyID,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
		})
		if err != nil {
			return nil, "", nil, err
		}
		return minioStore, "", minioStore.Ping, nil
	default:
		local, err := storage.NewLocal(cfg.MediaRoot, v1.MediaURLPrefix)
		if err != nil {
			return nil, "", nil, err
		}
		return local, local.Root(), local.Ping, nil
	}
}
