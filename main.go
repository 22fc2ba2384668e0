package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civiclens/auth"
	"civiclens/classifier"
	"civiclens/config"
	"civiclens/database"
	"civiclens/handlers"
	"civiclens/metrics"
	"civiclens/middleware"
	"civiclens/rabbitmq"
	"civiclens/routing"
	"civiclens/service"
	"civiclens/websocket"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Register()

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQEnabled {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			// The broker is an optional downstream; run without it.
			log.Warnf("RabbitMQ unavailable, continuing without publisher: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	feed := service.NewFeed(cfg, db, websocket.NewHub())
	if err := feed.Start(); err != nil {
		log.Fatalf("Failed to start live feed: %v", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry)
	cls := classifier.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	router := routing.NewClient(cfg.GoogleMapsAPIKey)

	h := handlers.NewHandlers(cfg, db, authSvc, cls, router, feed, publisher)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(cfg, authSvc, h),
	}

	go func() {
		log.Infof("Starting CivicLens server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	feed.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func setupRouter(cfg *config.Config, authSvc *auth.Service, h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	api := router.Group("/api/v1")
	{
		api.POST("/login", h.Login)

		// Public read surface
		api.GET("/reports", h.ListReports)
		api.GET("/reports/markers", h.Markers)
		api.GET("/reports/heatmap", h.Heatmap)
		api.GET("/reports/geojson", h.ReportsGeoJSON)
		api.GET("/reports/:seq/share", h.ShareLinks)

		// WebSocket live feed
		api.GET("/reports/listen", h.ListenReports)

		// Authenticated citizen surface
		authed := api.Group("")
		authed.Use(middleware.AuthRequired(authSvc))
		{
			authed.POST("/classify", h.ClassifyImage)
			authed.POST("/reports", h.CreateReport)
			authed.POST("/reports/:seq/upvote", h.ToggleUpvote)
		}

		// Admin dispatch surface
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(authSvc), middleware.AdminRequired())
		{
			admin.GET("/reports/triage", h.TriageBoard)
			admin.POST("/reports/:seq/status", h.SetStatus)
			admin.GET("/dispatch/candidates", h.DispatchCandidates)
			admin.POST("/dispatch/route", h.OptimizeRoute)
		}
	}

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
