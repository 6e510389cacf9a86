package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"kingdom-server/internal/authutils"
	"kingdom-server/internal/config"
	"kingdom-server/internal/database"
	"kingdom-server/internal/handler/admin"
	"kingdom-server/internal/logger"
	"kingdom-server/internal/middleware"
	"kingdom-server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "admin.yml", "path to the admin config file")
	flag.Parse()

	cfg, err := config.LoadAdminConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgPool, err := database.NewPool(ctx, cfg.Database(), appLogger)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.ClosePool(pgPool, appLogger)

	catalogRepo := database.NewPgEventCatalogRepository(pgPool, appLogger)
	blockRepo := database.NewPgNarrativeBlockRepository(pgPool, appLogger)
	playerRepo := database.NewPgPlayerRepository(pgPool, appLogger)
	catalogAdmin := service.NewCatalogAdmin(catalogRepo, blockRepo, playerRepo, appLogger)

	verifier, err := authutils.NewJWTVerifier(cfg.InterServiceSecret, appLogger)
	if err != nil {
		zap.L().Fatal("Failed to create token verifier", zap.Error(err))
	}
	adminHandler := admin.NewHandler(catalogAdmin, verifier, appLogger)

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(appLogger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.ServiceTokenHeader}
	corsConfig.AllowCredentials = !slices.Contains(corsConfig.AllowOrigins, "*")
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	adminHandler.RegisterRoutes(router)

	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting admin HTTP server", zap.String("port", cfg.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

