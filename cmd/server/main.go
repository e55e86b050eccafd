package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	orderapp "github.com/reparto/backend/internal/application/orders"
	tripapp "github.com/reparto/backend/internal/application/trips"
	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/infrastructure/auth"
	"github.com/reparto/backend/internal/infrastructure/cache"
	"github.com/reparto/backend/internal/infrastructure/config"
	"github.com/reparto/backend/internal/infrastructure/event"
	"github.com/reparto/backend/internal/infrastructure/logger"
	"github.com/reparto/backend/internal/infrastructure/persistence"
	"github.com/reparto/backend/internal/interfaces/http/handler"
	"github.com/reparto/backend/internal/interfaces/http/middleware"
	"github.com/reparto/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting reparto backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	tripRepo := persistence.NewGormTripRepository(db.DB)

	// Event bus with the operational log listener
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore := cache.NewIdempotencyStore(cfg.Redis, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()
	eventBus.Subscribe(event.NewIdempotentHandler("oplog", event.NewLoggingHandler(log), idempotencyStore, log))

	// Application services
	orderService := orderapp.NewService(orderRepo)
	orderService.SetEventPublisher(eventBus)
	orderService.SetAllowedZones(cfg.App.Zones)

	tripService := tripapp.NewService(tripRepo, orderRepo)
	tripService.SetEventPublisher(eventBus)
	if !cfg.Trips.PaymentTolerance.IsZero() {
		tripService.SetPaymentTolerance(cfg.Trips.PaymentTolerance)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.JWTAuthMiddleware(jwtService, "/api/v1/health", "/api/v1/system/info"),
		middleware.Idempotency(idempotencyStore, shared.DefaultIdempotencyConfig()),
	)

	router.NewRouter(engine).
		Register(
			handler.NewOrderHandler(orderService),
			handler.NewTripHandler(tripService),
			handler.NewSystemHandler(cfg, db),
		).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
