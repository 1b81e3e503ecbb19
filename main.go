package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/config"
	"github.com/flavorfleet/admin-dashboard/database"
	"github.com/flavorfleet/admin-dashboard/events"
	"github.com/flavorfleet/admin-dashboard/middlewares"
	"github.com/flavorfleet/admin-dashboard/repository"
	"github.com/flavorfleet/admin-dashboard/router"
	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/storage"
	"github.com/flavorfleet/admin-dashboard/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.JaegerEndpoint != "" {
		tp, err := utils.InitTracer(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			utils.ErrorLogger.Errorf("Tracing disabled: %v", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
		}
		utils.InfoLogger.Println("AutoMigrate completed.")
	}

	images, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to prepare upload directory: %v", err)
	}

	hub := events.NewHub()
	publishers := events.Multi{hub}
	if len(cfg.Events.KafkaBrokers) > 0 {
		producer := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		defer producer.Close()
		publishers = append(publishers, producer)
		utils.InfoLogger.Printf("Publishing catalog events to Kafka topic %s", cfg.Events.KafkaTopic)
	}

	var store services.SessionStore
	switch cfg.Session.Store {
	case "redis":
		rs, err := services.NewRedisSessionStore(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB, cfg.Session.KeyPrefix)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rs.Close()
		store = rs
	default:
		ms := services.NewMemorySessionStore()
		go ms.Cleanup(ctx, 10*time.Minute)
		store = ms
	}
	sessions := services.NewSessionService(store, cfg.Auth.TokenTTL)

	catalog := services.NewCatalogService(repository.NewCatalogRepository(db), images, publishers)
	analyticsService := services.NewAnalyticsService(repository.NewOrderRepository(db), cfg.Reports.Location())

	loginLimiter := middlewares.NewRateLimiter(cfg.Auth.LoginRatePerMin, cfg.Auth.LoginBurst)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				loginLimiter.Sweep(30 * time.Minute)
			}
		}
	}()

	r, err := router.SetupRouter(router.Dependencies{
		DB:           db,
		Config:       cfg,
		Catalog:      catalog,
		Analytics:    analyticsService,
		Sessions:     sessions,
		Hub:          hub,
		LoginLimiter: loginLimiter,
	})
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Graceful shutdown failed: %v", err)
	}
}
