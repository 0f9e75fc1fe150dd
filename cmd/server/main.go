package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/trading-ledger/internal/config"
	"github.com/trading-ledger/internal/handler"
	"github.com/trading-ledger/internal/marketdata"
	"github.com/trading-ledger/internal/middleware"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/internal/worker"
	"github.com/trading-ledger/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init("logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis
	rdb := initRedis(cfg)

	// Auto migrate database
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	strategyRepo := repository.NewStrategyRepository(db)
	executionLogRepo := repository.NewExecutionLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize market data sources
	var stream marketdata.StreamProvider
	if cfg.MarketData.StreamURL != "" {
		stream = marketdata.NewStreamClient(cfg.MarketData.StreamURL)
	}
	var fetcher marketdata.QuoteFetcher
	if cfg.MarketData.RestURL != "" {
		fetcher = marketdata.NewRestClient(cfg.MarketData.RestURL, cfg.MarketData.Timeout)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	priceService := service.NewPriceService(rdb, stream, fetcher, cfg.MarketData.PriceTTL)
	accountService := service.NewAccountService(
		db,
		accountRepo,
		positionRepo,
		orderRepo,
		tradeRepo,
		cfg.Engine.StartingCash,
	)
	tradingService := service.NewTradingService(
		db,
		accountRepo,
		positionRepo,
		orderRepo,
		tradeRepo,
	)
	strategyService := service.NewStrategyService(strategyRepo, notificationRepo)
	portfolioService := service.NewPortfolioService(portfolioRepo, notificationRepo, executionLogRepo)

	// Initialize rule worker
	ruleWorker := worker.NewRuleWorker(
		db,
		strategyRepo,
		portfolioRepo,
		executionLogRepo,
		notificationRepo,
		priceService,
		cfg.Engine.RuleInterval,
		cfg.Engine.RuleCooldown,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	orderHandler := handler.NewOrderHandler(tradingService)
	tradeHandler := handler.NewTradeHandler(tradingService)
	strategyHandler := handler.NewStrategyHandler(strategyService, ruleWorker)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)
	priceHandler := handler.NewPriceHandler(priceService)

	// Create Gin router
	router := gin.Default()

	// Add request logging middleware
	router.Use(middleware.RequestLoggerMiddleware())

	// Add CORS middleware
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
			"stream":     priceService.IsStreamConnected(),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	authMiddleware := middleware.AuthMiddleware(authService)
	{
		// Auth routes (register/login/refresh public, /auth/me protected)
		authHandler.RegisterRoutes(v1, authMiddleware)

		// Ledger routes (public)
		accountHandler.RegisterRoutes(v1)
		orderHandler.RegisterRoutes(v1)
		tradeHandler.RegisterRoutes(v1)
		priceHandler.RegisterRoutes(v1)

		// Strategy and portfolio routes (protected)
		strategyHandler.RegisterRoutes(v1, authMiddleware)
		portfolioHandler.RegisterRoutes(v1, authMiddleware)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start price service
	ctx := context.Background()
	if err := priceService.Start(ctx, cfg.MarketData.Symbols); err != nil {
		log.Printf("Warning: Failed to start price service: %v", err)
	}

	// Start rule worker
	go ruleWorker.Start()

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background workers
	ruleWorker.Stop()
	priceService.Stop()

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close Redis connection
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	log.Println("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	default:
		dialector = postgres.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// SQLite serializes writers; a single connection avoids lock errors
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Position{},
		&models.Order{},
		&models.Trade{},
		&models.Portfolio{},
		&models.PortfolioOrder{},
		&models.Strategy{},
		&models.StrategyRule{},
		&models.ExecutionLog{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
