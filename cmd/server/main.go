// Package main runs the volunteer-bridge HTTP server with the notification stream and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/volunteer-bridge/backend/config"
	"github.com/volunteer-bridge/backend/internal/applications"
	"github.com/volunteer-bridge/backend/internal/attendance"
	"github.com/volunteer-bridge/backend/internal/auth"
	"github.com/volunteer-bridge/backend/internal/events"
	"github.com/volunteer-bridge/backend/internal/hours"
	"github.com/volunteer-bridge/backend/internal/matching"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/notifications"
	"github.com/volunteer-bridge/backend/internal/opportunities"
	"github.com/volunteer-bridge/backend/internal/realtime"
	"github.com/volunteer-bridge/backend/internal/users"
	"github.com/volunteer-bridge/backend/internal/worker"
	"github.com/volunteer-bridge/backend/pkg/database"
	"github.com/volunteer-bridge/backend/pkg/queue"
	"github.com/volunteer-bridge/backend/pkg/redis"
	"github.com/volunteer-bridge/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: time.Duration(cfg.Database.MaxConnLifetime) * time.Minute,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if _, err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var exporter hours.Exporter
	if cfg.AWS.ExportsEnabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			Endpoint:             cfg.AWS.Endpoint,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("hours export disabled", zap.Error(err))
		} else {
			exporter = s3Client
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Notifications
	notificationRepo := notifications.NewRepository(pool)
	notificationSvc := notifications.NewService(notificationRepo, jobQueue, logger)
	dispatcher := worker.NewNotificationDispatcher(notificationRepo, redisPubSub, jobQueue, logger)

	// Accounts
	userRepo := users.NewRepository(pool)
	matcher := matching.NewService(userRepo, notificationSvc, notificationSvc, cfg.Matching.NotifyDedup, logger)

	// Opportunities, applications, hours
	opportunityRepo := opportunities.NewRepository(pool)
	opportunitySvc := opportunities.NewService(opportunityRepo, userRepo, matcher, logger)
	applicationSvc := applications.NewService(applications.NewRepository(pool), opportunityRepo, notificationSvc, logger)
	hoursSvc := hours.NewService(hours.NewRepository(pool), opportunityRepo, notificationSvc, exporter, logger)

	// Events and attendance
	attendanceSvc := attendance.NewService(attendance.NewRepository(pool), notificationSvc, logger)
	eventSvc := events.NewService(events.NewRepository(pool), opportunityRepo, attendanceSvc, logger)

	limiterCtx, limiterCancel := context.WithCancel(context.Background())
	defer limiterCancel()
	limiter := middleware.NewRateLimiter(limiterCtx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)

	tokenValidate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	registerRoutes(router, routeDeps{
		jwt:           jwtService,
		limiter:       limiter,
		health:        healthCheck(pool, rdb),
		auth:          auth.NewHandler(userRepo, jwtService, logger),
		profile:       users.NewHandler(userRepo, logger),
		opportunities: opportunities.NewHandler(opportunitySvc, logger),
		applications:  applications.NewHandler(applicationSvc, logger),
		hours:         hours.NewHandler(hoursSvc, logger),
		events:        events.NewHandler(eventSvc, logger),
		attendance:    attendance.NewHandler(attendanceSvc, logger),
		notifications: notifications.NewHandler(notificationSvc),
		ws:            realtime.ServeWs(hub, logger, tokenValidate, cfg.Server.CORSAllowedOrigins),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (notification delivery)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Worker.InProcess {
		go dispatcher.Run(workerCtx)
		logger.Info("notification worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
