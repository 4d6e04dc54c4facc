package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heroshop/internal/core/auth"
	"heroshop/internal/core/cache"
	"heroshop/internal/core/clock"
	"heroshop/internal/core/config"
	"heroshop/internal/core/database"
	"heroshop/internal/core/logger"
	"heroshop/internal/core/server"
	couponadapter "heroshop/internal/features/coupons/adapters"
	couponhandler "heroshop/internal/features/coupons/handler"
	couponservice "heroshop/internal/features/coupons/service"
	orderadapter "heroshop/internal/features/orders/adapters"
	orderdomain "heroshop/internal/features/orders/domain"
	orderhandler "heroshop/internal/features/orders/handler"
	orderservice "heroshop/internal/features/orders/service"
	productadapter "heroshop/internal/features/products/adapters"
	producthandler "heroshop/internal/features/products/handler"
	productservice "heroshop/internal/features/products/service"

	"go.uber.org/zap"
)

// @title heroshop API
// @version 1.0
// @description Catalog, coupon and checkout API for the superhero apparel storefront.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	// Document store
	mongoDB, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		l.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer func() {
		if err := mongoDB.Close(context.Background()); err != nil {
			l.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()
	l.Info("MongoDB connection verified", zap.String("database", cfg.Mongo.Database))

	// Cache
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Invalid Redis configuration", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		l.Fatal("Invalid auth configuration", zap.Error(err))
	}

	// Repositories
	couponRepo := couponadapter.NewMongoCouponRepository(mongoDB.Collection(database.CollectionCoupons))
	productRepo := productadapter.NewMongoProductRepository(mongoDB.Collection(database.CollectionProducts))
	orderRepo := orderadapter.NewMongoOrderRepository(mongoDB.Collection(database.CollectionOrders))

	if err := couponRepo.EnsureIndexes(ctx); err != nil {
		l.Fatal("Coupon index creation failed", zap.Error(err))
	}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		l.Fatal("Order index creation failed", zap.Error(err))
	}

	coupons := couponadapter.NewCachedCouponRepository(couponRepo, redisCache, cfg.Redis.CouponCacheTTL)

	// Services & Handlers
	clk := clock.System{}

	couponSvc := couponservice.NewCouponService(coupons, clk)
	productSvc := productservice.NewProductService(productRepo, clk)
	orderSvc := orderservice.NewOrderService(orderservice.Dependencies{
		Orders:      orderRepo,
		Products:    productRepo,
		Coupons:     coupons,
		Tx:          database.NewTransactor(mongoDB.Client),
		Idempotency: orderadapter.NewRedisIdempotencyStore(redisCache, cfg.Redis.IdempotencyTTL, cfg.Redis.IdempotencyPendingTTL),
		Pricing: orderdomain.NewPricingPolicy(
			cfg.Pricing.ShippingFlatFee,
			cfg.Pricing.FreeShippingThreshold,
			cfg.Pricing.TaxRate,
		),
		Clock: clk,
	})

	srv := server.New(cfg)
	srv.AddHealthCheck("mongo", mongoDB)
	srv.AddHealthCheck("redis", redisCache)

	registerRoutes(srv.App, tokens, handlers{
		coupons:  couponhandler.NewCouponHandler(couponSvc),
		products: producthandler.NewProductHandler(productSvc),
		orders:   orderhandler.NewOrderHandler(orderSvc),
	})

	go func() {
		if err := srv.Run(); err != nil {
			l.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down")
	if err := srv.Shutdown(10 * time.Second); err != nil {
		l.Error("Graceful shutdown failed", zap.Error(err))
	}
}
