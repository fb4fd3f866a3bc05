package main

import (
	"papertrade/config"
	"papertrade/database"
	"papertrade/handlers"
	"papertrade/ledger"
	"papertrade/logger"
	"papertrade/middleware"
	"papertrade/quote"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("failed to load config: ", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		logrus.Fatal("failed to init logger: ", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logrus.Fatal("failed to connect to the database: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("failed to get database instance: ", err)
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		logrus.Fatal("failed to migrate models: ", err)
	}

	rdb := config.NewRedis(cfg)
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		logrus.Fatal("failed to connect to redis: ", err)
	}

	provider := quote.NewCached(quote.NewAlphaVantage(cfg.AlphaVantageKey), rdb, cfg.QuoteCacheTTL)
	svc := ledger.New(db, provider)

	authHandler := handlers.NewAuthHandler(db, rdb, cfg.JWTSecret)
	ledgerHandler := handlers.NewLedgerHandler(svc)

	router := gin.Default()

	// Public routes
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/refresh", authHandler.Refresh)
	router.POST("/logout", authHandler.Logout)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		auth.GET("/quote/:symbol", ledgerHandler.GetQuote)
		auth.POST("/buy", ledgerHandler.Buy)
		auth.POST("/sell", ledgerHandler.Sell)
		auth.POST("/deposit", ledgerHandler.Deposit)
		auth.GET("/portfolio", ledgerHandler.GetPortfolio)
		auth.GET("/history", ledgerHandler.GetHistory)
		auth.GET("/symbols", ledgerHandler.GetSymbols)
	}

	logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := router.Run(cfg.ListenAddr); err != nil {
		logrus.Fatal("server exited: ", err)
	}
}
