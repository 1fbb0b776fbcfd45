package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	c "github.com/fjod/orderdesk/internal/cache"
	"github.com/fjod/orderdesk/internal/config"
	"github.com/fjod/orderdesk/internal/events"
	"github.com/fjod/orderdesk/internal/gateway"
	h "github.com/fjod/orderdesk/internal/http"
	"github.com/fjod/orderdesk/internal/logger"
	"github.com/fjod/orderdesk/internal/repository"
	s "github.com/fjod/orderdesk/internal/service"
	"github.com/fjod/orderdesk/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	// traceparent flows from incoming requests through to backend calls
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, repository.MongoOptions{
		URI:                    cfg.MongoURI,
		Database:               cfg.MongoDBName,
		MaxPoolSize:            cfg.MongoMaxPoolSize,
		MinPoolSize:            cfg.MongoMinPoolSize,
		ConnectTimeout:         cfg.MongoConnectTimeout,
		ServerSelectionTimeout: cfg.MongoSelectTimeout,
	})
	if err != nil {
		zl.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	repo := repository.NewMongoRepository(mongoDB)
	if err := repo.CreateIndexes(ctx); err != nil {
		zl.Fatal("Failed to create saved cart indexes", zap.Error(err))
	}
	zl.Info("Connected to MongoDB", zap.String("db", cfg.MongoDBName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zl.Fatal("Redis connection failed", zap.Error(err))
	}
	zl.Info("Redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers...)
		zl.Info("Publishing order events to Kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}
	defer publisher.Close()

	backend := gateway.NewClient(cfg.BackendURL, cfg.SubmitTimeout, zl)
	cache := c.NewRedisCache(redisClient)
	catalog := s.NewCatalogService(backend, cache, zl)
	drafts := s.NewSavedCartService(repo, cache, catalog, zl)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	if len(cfg.KafkaBrokers) > 0 {
		consumer := events.NewCatalogConsumer(cache, zl, cfg.KafkaBrokers...)
		defer consumer.Close()
		go consumer.Run(bgCtx)
	}

	registry := session.NewRegistry(backend, publisher, cfg.SubmitTimeout, cfg.SessionIdleTTL, zl)
	go registry.Run(bgCtx, time.Minute)

	router := h.NewRouter(h.RouterConfig{
		JWTSecret:          []byte(cfg.JWTSecret),
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, h.Handlers{
		Products:  h.NewProductHandler(catalog, cfg.RequestTimeout),
		Cart:      h.NewCartHandler(registry, catalog, backend, cfg.RequestTimeout, zl),
		Checkout:  h.NewCheckoutHandler(registry, zl),
		SavedCart: h.NewSavedCartHandler(registry, drafts, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("orderdesk starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	stopBackground()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		zl.Warn("MongoDB disconnect failed", zap.Error(err))
	}

	zl.Info("server exited")
}
