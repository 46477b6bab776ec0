package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/davrot/questionnaire-backend/handlers"
	"github.com/davrot/questionnaire-backend/internal/config"
	"github.com/davrot/questionnaire-backend/internal/database"
	"github.com/davrot/questionnaire-backend/internal/questionnaire/repository"
	"github.com/davrot/questionnaire-backend/internal/questionnaire/service"
	"github.com/davrot/questionnaire-backend/internal/storage"
	"github.com/davrot/questionnaire-backend/pkg/logger"
	"github.com/davrot/questionnaire-backend/pkg/metrics"
	"github.com/davrot/questionnaire-backend/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v storage=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Upload.Backend)

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate-limiter can use it when configured
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := importedRedis.Ping(context.Background()).Err(); err == nil {
			logger.Infof("Connected to Redis for rate limiting: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		}
	}
	// Optional global rate limiter (per-IP; the API is unauthenticated)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// Connect to MongoDB. The document store is the one hard dependency: the
	// process exits non-zero when it cannot be reached at startup.
	ctx := context.Background()
	client, err := database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	col := client.Database(cfg.MongoDB.Database).Collection("questionnaire")
	repo := repository.NewMongoRepo(col)

	// Image store: local disk by default, MinIO when configured
	var images storage.ImageStore
	var diskStore *storage.DiskStore
	switch cfg.Upload.Backend {
	case "minio":
		images, err = storage.NewMinIOStore(storage.LoadMinIOConfig())
		if err != nil {
			logger.Fatalf("failed to initialize MinIO storage: %v", err)
		}
		logger.Infof("using MinIO image storage")
	default:
		diskStore, err = storage.NewDiskStore(cfg.Upload.Dir)
		if err != nil {
			logger.Fatalf("failed to initialize upload dir: %v", err)
		}
		images = diskStore
		// serve stored uploads back under the same path prefix they are saved with
		r.Static("/"+diskStore.Dir(), diskStore.Dir())
	}

	svc := service.NewService(repo, images)
	h := handlers.NewQuestionnaireHandler(svc, images)
	h.Register(r)

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{"storage": true}
		mongoOK := client.Ping(c.Request.Context(), nil) == nil
		deps["mongodb"] = mongoOK
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = importedRedis != nil
		} else {
			deps["redis"] = true
		}
		status := http.StatusOK
		state := "ready"
		if !mongoOK || !deps["redis"] {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting questionnaire service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
