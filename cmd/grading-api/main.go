package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-grading-api/api/swagger"
	"github.com/noah-isme/sma-grading-api/internal/handler"
	"github.com/noah-isme/sma-grading-api/internal/middleware"
	"github.com/noah-isme/sma-grading-api/internal/repository"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/cache"
	"github.com/noah-isme/sma-grading-api/pkg/config"
	"github.com/noah-isme/sma-grading-api/pkg/database"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-grading-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-grading-api/pkg/middleware/requestid"
)

// @title SMA Grading API
// @version 0.1.0
// @description Grading and ranking engine for subject results
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, locks and listing cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	markRepo := repository.NewMarkRepository(db)
	resultRepo := repository.NewResultRepository(db)
	weightRepo := repository.NewWeightConfigRepository(db)
	bandRepo := repository.NewGradeBandRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	lockRepo := repository.NewGroupLockRepository(redisClient)

	bandSvc := service.NewGradeBandService(bandRepo, validate, logr)
	weightSvc := service.NewWeightConfigService(weightRepo, cacheRepo, logr)
	aggregator := service.NewAggregator(markRepo, weightRepo, bandSvc, logr)
	ranker := service.NewRanker(logr)
	markSvc := service.NewMarkService(markRepo, resultRepo, weightRepo, aggregator, ranker, lockRepo, cacheRepo, metricsSvc, validate, logr, service.MarkServiceOptions{
		LockTTL:          cfg.Grading.LockTTL,
		LockRetries:      cfg.Grading.LockRetries,
		LockRetryBackoff: cfg.Grading.LockRetryBackoff,
		ListingCacheTTL:  cfg.Grading.ListingCacheTTL,
	})

	markHandler := handler.NewMarkHandler(markSvc)
	weightHandler := handler.NewWeightConfigHandler(weightSvc)
	bandHandler := handler.NewGradeBandHandler(bandSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/marks", markHandler.Record)
		api.DELETE("/marks", markHandler.Delete)
		api.GET("/marks", markHandler.Details)
		api.POST("/marks/recalculate", markHandler.Recalculate)
		api.GET("/results", markHandler.GroupResults)
		api.GET("/weights", weightHandler.Get)
		api.PUT("/weights", weightHandler.Save)
		api.GET("/grade-bands", bandHandler.List)
		api.PUT("/grade-bands", bandHandler.Save)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
