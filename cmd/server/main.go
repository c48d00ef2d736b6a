package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	promotionapp "github.com/walldriyan/pos11v-sub000/internal/application/promotion"
	salesapp "github.com/walldriyan/pos11v-sub000/internal/application/sales"
	"github.com/walldriyan/pos11v-sub000/internal/infrastructure/cache"
	"github.com/walldriyan/pos11v-sub000/internal/infrastructure/config"
	"github.com/walldriyan/pos11v-sub000/internal/infrastructure/logger"
	"github.com/walldriyan/pos11v-sub000/internal/infrastructure/persistence"
	"github.com/walldriyan/pos11v-sub000/internal/interfaces/http/handler"
	"github.com/walldriyan/pos11v-sub000/internal/interfaces/http/middleware"
	"github.com/walldriyan/pos11v-sub000/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting POS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, cfg.Transaction.Timeout, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("Redis connected")

	// Repositories
	saleRecordRepo := persistence.NewGormSaleRecordRepository(db.DB)
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)

	// Application services
	globalTaxRate := decimal.NewFromFloat(cfg.Tax.GlobalRatePercent)
	campaignCache := cache.NewRedisCampaignCache(redisClient)
	saleService := salesapp.NewSaleService(db, saleRecordRepo, installmentRepo, productRepo, batchRepo, campaignRepo, globalTaxRate, log)
	returnService := salesapp.NewReturnService(db, saleRecordRepo, installmentRepo, productRepo, batchRepo, campaignRepo, globalTaxRate, log)
	creditService := salesapp.NewCreditService(db, saleRecordRepo, installmentRepo, log)
	queryService := salesapp.NewSaleQueryService(saleRecordRepo, installmentRepo)
	campaignService := promotionapp.NewCampaignService(campaignRepo, campaignCache, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.Tenant())

	handler.NewSystemHandler(db).RegisterRoutes(engine)

	router.NewRouter(engine).
		Register(handler.NewSaleHandler(saleService, queryService)).
		Register(handler.NewReturnHandler(returnService)).
		Register(handler.NewCreditHandler(creditService)).
		Register(handler.NewCampaignHandler(campaignService)).
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
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
