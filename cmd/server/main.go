package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pawgrove/pawgrove/backend/internal/auth"
	"github.com/pawgrove/pawgrove/backend/internal/cache"
	"github.com/pawgrove/pawgrove/backend/internal/database"
	"github.com/pawgrove/pawgrove/backend/internal/feed"
	"github.com/pawgrove/pawgrove/backend/internal/handlers"
	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/metrics"
	"github.com/pawgrove/pawgrove/backend/internal/middleware"
	"github.com/pawgrove/pawgrove/backend/internal/store"
	"github.com/pawgrove/pawgrove/backend/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Pawgrove server starting ===")

	// Initialize database
	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database: " + err.Error())
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations: " + err.Error())
	}

	// Prometheus metrics
	metrics.Initialize()

	// Tracing (optional, enabled via OTEL_ENABLED)
	samplingRate := 1.0
	if v := os.Getenv("OTEL_SAMPLING_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			samplingRate = parsed
		}
	}
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "pawgrove-backend",
		Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		OTLPEndpoint: getEnvOrDefault("OTLP_ENDPOINT", "localhost:4318"),
		Enabled:      os.Getenv("OTEL_ENABLED") == "true",
		SamplingRate: samplingRate,
	})
	if err != nil {
		logger.WarnWithFields("Failed to initialize tracing, continuing without it", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	// Redis backs the distributed rate limiter; the server still runs
	// without it
	redisClient, err := cache.NewRedisClient(
		os.Getenv("REDIS_HOST"),
		os.Getenv("REDIS_PORT"),
		os.Getenv("REDIS_PASSWORD"),
	)
	if err != nil {
		logger.WarnWithFields("Redis unavailable, rate limiting disabled", err)
	} else {
		defer redisClient.Close()
	}

	// Auth service
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}
	authService := auth.NewService(jwtSecret)

	// Feed pipeline: GORM store + bounded in-process cache
	feedCache := feed.NewLRUCache(feed.DefaultCacheSize, feed.DefaultCacheTTL)
	feedService := feed.NewService(store.NewGormStore(database.DB), feedCache, feed.Config{})

	h := handlers.NewHandlers(feedService, authService)

	// Gin router
	gin.SetMode(getEnvOrDefault("GIN_MODE", gin.DebugMode))
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(otelgin.Middleware("pawgrove-backend"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if redisClient != nil {
		maxRequests := 300
		if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				maxRequests = parsed
			}
		}
		r.Use(middleware.RedisRateLimitMiddleware(maxRequests, time.Minute))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "pawgrove-backend",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// The feed endpoint authenticates by viewerId query parameter
		api.GET("/posts/feed", h.GetFeed)

		v1 := api.Group("/v1")
		{
			v1.GET("/posts/feed", h.GetFeed)

			users := v1.Group("/users")
			{
				users.Use(h.AuthMiddleware())
				users.POST("/:id/mute", h.MuteUser)
				users.DELETE("/:id/mute", h.UnmuteUser)
				users.GET("/me/muted", h.GetMutedUsers)
				users.PUT("/me/muted-keywords", h.UpdateMutedKeywords)
				users.GET("/me/saved", h.GetSavedPosts)
				users.POST("/:id/block", h.BlockUser)
				users.DELETE("/:id/block", h.UnblockUser)
				users.POST("/:id/follow", h.FollowUser)
				users.DELETE("/:id/follow", h.UnfollowUser)
			}

			posts := v1.Group("/posts")
			{
				posts.Use(h.AuthMiddleware())
				posts.POST("/:id/save", h.SavePost)
				posts.DELETE("/:id/save", h.UnsavePost)
				posts.POST("/:id/hide", h.HidePost)
				posts.DELETE("/:id/hide", h.UnhidePost)
				posts.POST("/:id/reactions", h.ReactToPost)
				posts.DELETE("/:id/reactions", h.RemoveReaction)
			}

			pets := v1.Group("/pets")
			{
				pets.Use(h.AuthMiddleware())
				pets.POST("/:id/follow", h.FollowPet)
				pets.DELETE("/:id/follow", h.UnfollowPet)
			}
		}
	}

	// Server configuration
	port := getEnvOrDefault("PORT", "8787")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Pawgrove backend listening on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server: " + err.Error())
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown: " + err.Error())
	}

	logger.Log.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
