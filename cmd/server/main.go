package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticsapp "github.com/erp/storefront/internal/application/analytics"
	cartapp "github.com/erp/storefront/internal/application/cart"
	catalogapp "github.com/erp/storefront/internal/application/catalog"
	identityapp "github.com/erp/storefront/internal/application/identity"
	orderapp "github.com/erp/storefront/internal/application/order"
	recommendapp "github.com/erp/storefront/internal/application/recommend"
	reviewapp "github.com/erp/storefront/internal/application/review"
	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/erp/storefront/internal/infrastructure/gateway"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/session"
	"github.com/erp/storefront/internal/infrastructure/storage"
	"github.com/erp/storefront/internal/interfaces/http/handler"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/erp/storefront/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Client-state store: Redis when configured, in-memory otherwise
	var store storage.Store
	if cfg.Redis.Enabled() {
		redisStore, err := storage.NewRedisStore(storage.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store = redisStore
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		store = storage.NewMemoryStore()
		log.Info("Using in-memory client-state store")
	}
	defer func() {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Error("Error closing store", zap.Error(err))
			}
		}
	}()

	// Upstream commerce API client
	creds := gateway.NewCredentials(store, cfg.Session.TTL)
	gw := gateway.New(gateway.Config{
		BaseURL:         cfg.Gateway.BaseURL,
		Timeout:         cfg.Gateway.Timeout,
		MaxResponseSize: cfg.Gateway.MaxResponseSize,
	}, creds, log)
	gw.SetOnUnauthorized(func(ctx context.Context, clientKey string) {
		log.Warn("Upstream rejected stored credentials, client must re-authenticate",
			zap.String("client_key", clientKey),
		)
	})

	// Application services
	sessions := session.NewManager(store, cfg.Session.TTL, log)
	catalogSvc := catalogapp.NewService(gw, log)
	analyticsSvc := analyticsapp.NewService(gw, sessions, log)
	cartSvc := cartapp.NewService(gw, store, log)
	identitySvc := identityapp.NewService(gw, creds, log)
	orderSvc := orderapp.NewService(gw, log)
	reviewSvc := reviewapp.NewService(gw, log)
	aggregator := recommendapp.NewAggregator(analyticsSvc, catalogSvc, recommendapp.Limits{
		Trending:         cfg.Recommend.TrendingLimit,
		Personalized:     cfg.Recommend.PersonalizedLimit,
		Similar:          cfg.Recommend.SimilarLimit,
		FrequentlyBought: cfg.Recommend.FrequentlyBoughtLimit,
	}, log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.ClientKey())

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env, store)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler)
	r.Register(handler.NewProductHandler(catalogSvc, analyticsSvc, identitySvc))
	r.Register(handler.NewCartHandler(cartSvc, catalogSvc, identitySvc))
	r.Register(handler.NewAuthHandler(identitySvc, cartSvc))
	r.Register(handler.NewOrderHandler(orderSvc, identitySvc))
	r.Register(handler.NewReviewHandler(reviewSvc, identitySvc))
	r.Register(handler.NewRecommendHandler(aggregator, identitySvc))
	r.Register(handler.NewAnalyticsHandler(analyticsSvc, identitySvc))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
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
