package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"regional-storefront-go/internal/auth"
	"regional-storefront-go/internal/cache"
	"regional-storefront-go/internal/canonical"
	"regional-storefront-go/internal/content"
	"regional-storefront-go/internal/handler"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/internal/middleware"
	"regional-storefront-go/internal/region"
	"regional-storefront-go/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, cfgErr := config.LoadConfig()

	level, development := "info", false
	if cfgErr == nil {
		level, development = cfg.LogLevel, !cfg.IsProduction()
	}
	log, err := logger.New(level, development)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Fatal("Failed to load configuration", logger.Error(cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", logger.Error(err))
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Region cache, shared by every lookup in this process
	regionCache := cache.New(
		cache.WithSingleFlight(cfg.CacheSingleFlight),
		cache.WithMetrics(cache.NewMetrics(registry)),
		cache.WithLogger(log),
	)
	go regionCache.RunJanitor(ctx, cfg.CacheJanitorInterval)

	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	broadcaster := cache.NewBroadcaster(regionCache, redisClient, log)
	go func() {
		if err := broadcaster.Listen(ctx); err != nil {
			log.Error("Cache invalidation listener stopped", logger.Error(err))
		}
	}()

	// Initialize services
	subdomains := region.DefaultRegistry()
	regionService := region.NewService(region.NewSQLRepository(db), regionCache, broadcaster, subdomains, cfg.RegionCacheTTL, log)
	builder := canonical.NewBuilder(cfg.BaseDomain, cfg.CanonicalMainDomain, subdomains)
	contentService := content.NewService(regionService, builder, log)
	authService := auth.NewAuthService(db, cfg.JWTSecret, cfg.EncryptionKey, log)

	// Initialize handlers
	regionHandler := handler.NewRegionHandler(regionService, contentService, log)
	seoHandler := handler.NewSEOHandler(builder)
	adminHandler := handler.NewAdminHandler(regionService, regionCache, broadcaster, log)
	authHandler := handler.NewAuthHandler(authService, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RegionHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RegionMiddleware(subdomains))
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Public routes
	api := router.Group("/api")
	api.GET("/region", regionHandler.GetRegion)
	api.GET("/regions", regionHandler.ListRegions)
	api.GET("/categories/:id/content", regionHandler.GetCategoryContent)
	api.GET("/seo/canonical", seoHandler.Canonical)
	api.POST("/login", authHandler.Login)

	// Protected routes
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		admin.POST("/2fa/setup", authHandler.SetupTwoFactor)
		admin.POST("/2fa/verify", authHandler.VerifyTwoFactor)
		admin.POST("/2fa/disable", authHandler.DisableTwoFactor)
		admin.GET("/profile", authHandler.GetUserProfile)
		admin.POST("/users", authHandler.CreateAdmin)

		admin.PUT("/regions/:code", adminHandler.UpsertRegion)
		admin.DELETE("/regions/:code", adminHandler.DeleteRegion)
		admin.PUT("/categories/:id/regions/:code", adminHandler.UpsertCategoryOverride)
		admin.DELETE("/categories/:id/regions/:code", adminHandler.DeleteCategoryOverride)

		admin.POST("/shortcodes/preview", adminHandler.PreviewShortcodes)
		admin.POST("/cache/invalidate", adminHandler.InvalidateCache)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server",
			logger.String("port", cfg.Port),
			logger.String("base_domain", cfg.BaseDomain),
			logger.Bool("redis", redisClient != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", logger.Error(err))
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// cache then invalidates locally only.
func connectRedis(cfg *config.Config, log logger.Logger) *redis.Client {
	client, err := cache.NewRedisClient(cache.RedisConfig{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		if errors.Is(err, cache.ErrEmptyAddress) {
			log.Info("Redis not configured, cache invalidation is local only")
		} else {
			log.Warn("Redis unavailable, cache invalidation is local only", logger.Error(err))
		}
		return nil
	}
	return client
}
