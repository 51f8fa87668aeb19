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

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/delivery/consumer"
	delivery "golang-swing-market/internal/analyzer/delivery/http"
	_ "golang-swing-market/internal/analyzer/docs"
	"golang-swing-market/internal/analyzer/repository"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/internal/analyzer/strategy"
	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/postgres"
	"golang-swing-market/pkg/redis"
	"golang-swing-market/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analysis service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analysis Service", logger.Field("name", cfg.App.Name))

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// MKSTREAM creates each stream if it doesn't exist yet.
	streams := []string{
		common.RedisStreamSchedulerTaskExecution,
		common.RedisStreamMarketCollector,
		common.RedisStreamMarketRegime,
		common.RedisStreamEventSync,
	}
	for _, stream := range streams {
		if err := redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", stream))
			}
		}
	}

	// Repositories
	jobRepo := repository.NewJobRepository(db.DB)
	historyRepo := repository.NewTaskExecutionHistoryRepository(db.DB)
	tickerRepo := repository.NewTickerRepository(db.DB)
	dailyPriceRepo := repository.NewDailyPriceRepository(db.DB)
	universeRepo := repository.NewUniverseRepository(db.DB)
	earningsRepo := repository.NewEarningsScheduleRepository(db.DB)
	dividendRepo := repository.NewDividendScheduleRepository(db.DB)
	regimeRepo := repository.NewMarketRegimeRepository(db.DB)
	yahooFinanceRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	calendarRepo := repository.NewEarningsCalendarRepository(cfg, appLogger)

	// Market analysis core
	indicatorEngine := market.NewIndicatorEngine()
	breadthCalc := market.NewBreadthCalculator()
	classifier := market.NewRegimeClassifier(indicatorEngine, breadthCalc, cfg.Market.Regime)
	eventGate := market.NewEventGate(cfg.EventCalendar)
	stitcher := market.NewHistoricalStitcher(indicatorEngine, appLogger)

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	} else {
		appLogger.Warn("Telegram notifier disabled, no bot token configured")
	}

	// Domain services
	collectorSvc := service.NewCollectorService(cfg, appLogger, yahooFinanceRepo, tickerRepo, dailyPriceRepo, universeRepo, stitcher)
	regimeSvc := service.NewMarketRegimeService(cfg, appLogger, classifier, tickerRepo, dailyPriceRepo, universeRepo, regimeRepo, telegramNotifier)
	syncSvc := service.NewEventSyncService(cfg, appLogger, yahooFinanceRepo, calendarRepo, tickerRepo, earningsRepo, dividendRepo, universeRepo)
	eventGateSvc := service.NewEventGateService(cfg, appLogger, eventGate, tickerRepo, earningsRepo, dividendRepo)
	publisher := service.NewTaskPublisher(cfg, appLogger, redisClient.Client)

	// Strategies for scheduler-driven jobs
	strategies := []strategy.JobExecutionStrategy{
		strategy.NewHTTPStrategy(appLogger),
		strategy.NewMarketCollectorStrategy(appLogger, publisher),
		strategy.NewMarketRegimeStrategy(appLogger, publisher),
		strategy.NewEventSyncStrategy(appLogger, publisher),
	}

	executorSvc := service.NewExecutorService(redisClient.Client, jobRepo, historyRepo, appLogger, strategies)
	marketTaskSvc := service.NewMarketTaskService(cfg, appLogger, redisClient.Client, collectorSvc, regimeSvc, syncSvc, telegramNotifier)

	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, executorSvc, marketTaskSvc, appLogger)
	redisConsumer.Start(ctx)

	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")

	collectionHandler := delivery.NewCollectionHandler(publisher, appLogger)
	collectionHandler.RegisterRoutes(apiV1.Group("/collections"))

	regimeHandler := delivery.NewRegimeHandler(regimeSvc, appLogger)
	regimeHandler.RegisterRoutes(apiV1.Group("/regimes"))

	eventHandler := delivery.NewEventHandler(eventGateSvc, publisher, appLogger)
	eventHandler.RegisterRoutes(apiV1.Group("/events"))

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	appLogger.Info("Analysis service started. Waiting for tasks...")

	<-ctx.Done()

	appLogger.Info("Shutting down analysis service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	redisConsumer.Stop()
	appLogger.Info("Analysis service stopped.")
}

// @title Swing Market Analysis API
// @version 1.0
// @description Market regime classification, event gating, and price collection for the Japanese market.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analysis-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analysis-service CLI: %s\n", err)
		os.Exit(1)
	}
}
