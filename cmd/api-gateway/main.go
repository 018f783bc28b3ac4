package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/alerta-utec/alerta-api/api/swagger"
	"github.com/alerta-utec/alerta-api/internal/authorizer"
	"github.com/alerta-utec/alerta-api/internal/handler"
	"github.com/alerta-utec/alerta-api/internal/middleware"
	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/realtime"
	"github.com/alerta-utec/alerta-api/internal/repository"
	"github.com/alerta-utec/alerta-api/internal/secret"
	"github.com/alerta-utec/alerta-api/internal/service"
	"github.com/alerta-utec/alerta-api/internal/token"
	"github.com/alerta-utec/alerta-api/pkg/cache"
	"github.com/alerta-utec/alerta-api/pkg/config"
	"github.com/alerta-utec/alerta-api/pkg/database"
	"github.com/alerta-utec/alerta-api/pkg/logger"
	corsmiddleware "github.com/alerta-utec/alerta-api/pkg/middleware/cors"
	reqidmiddleware "github.com/alerta-utec/alerta-api/pkg/middleware/requestid"
)

// @title AlertaUTEC API
// @version 1.0.0
// @description Identity, access-token and incident reporting API
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

	// Redis backs the managed secret store and the realtime fan-out; skip the
	// connection when neither is in play.
	var redisClient *redis.Client
	if cfg.JWT.SecretRef != "" || cfg.Realtime.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	var secretSource secret.Source
	if redisClient != nil {
		secretSource = secret.NewRedisSource(redisClient)
	}
	resolver := secret.NewResolver(cfg.JWT.SecretValue, cfg.JWT.SecretRef, secretSource)
	signingSecret, err := resolver.Resolve(context.Background())
	if err != nil {
		// no secret means no token can be issued or verified; refuse to start
		logr.Sugar().Fatalw("failed to resolve signing secret", "error", err)
	}

	tokens := token.NewService(signingSecret, logr)
	validate := validator.New()

	userRepo := repository.NewUserRepository(db, cfg.Tables.Users)
	incidentRepo := repository.NewIncidentRepository(db, cfg.Tables.Incidents, cfg.Tables.IncidentComments)

	authSvc := service.NewAuthService(userRepo, tokens, validate, logr, service.AuthConfig{
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	var broadcaster *realtime.Broadcaster
	var registry *realtime.Registry
	if cfg.Realtime.Enabled && redisClient != nil {
		broadcaster = realtime.NewBroadcaster(redisClient, cfg.Realtime.EventChannel, cfg.Realtime.AlertChannel, logr)
		registry = realtime.NewRegistry(redisClient, cfg.Realtime.ConnectionTTL)
	}

	var incidentSvc *service.IncidentService
	if broadcaster != nil {
		incidentSvc = service.NewIncidentService(incidentRepo, broadcaster, validate, logr)
	} else {
		incidentSvc = service.NewIncidentService(incidentRepo, nil, validate, logr)
	}

	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	authzHandler := handler.NewAuthorizerHandler(authorizer.New(tokens), metricsSvc)
	incidentHandler := handler.NewIncidentHandler(incidentSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(tokens), authHandler.Me)

	authz := api.Group("/authz")
	authz.GET("/simple", authzHandler.Simple)
	authz.POST("/policy", authzHandler.Policy)

	incidents := api.Group("/incidents", middleware.JWT(tokens))
	incidents.POST("", incidentHandler.Create)
	incidents.GET("", incidentHandler.List)
	incidents.GET("/:id", incidentHandler.Get)
	incidents.PATCH("/:id", middleware.RequireRoles(models.RoleStaff, models.RoleAuthority), incidentHandler.Update)
	incidents.POST("/:id/comments", incidentHandler.AddComment)
	incidents.GET("/:id/comments", incidentHandler.ListComments)

	if registry != nil {
		realtimeHandler := handler.NewRealtimeHandler(registry)
		rt := api.Group("/realtime", middleware.JWT(tokens))
		rt.POST("/connections", realtimeHandler.Connect)
		rt.GET("/connections", middleware.RequireRoles(models.RoleStaff, models.RoleAuthority), realtimeHandler.List)
		rt.DELETE("/connections/:id", realtimeHandler.Disconnect)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
