package consumer

import (
	"context"
	"sync"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of tasks from the Redis streams.
type RedisConsumer struct {
	cfg               *config.Config
	redisClient       *redis.Client
	executorService   service.ExecutorService
	marketTaskService service.MarketTaskService
	logger            *logger.Logger
	stopChan          chan struct{}
	wg                sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	executorService service.ExecutorService,
	marketTaskService service.MarketTaskService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:               cfg,
		redisClient:       redisClient,
		executorService:   executorService,
		marketTaskService: marketTaskService,
		logger:            log,
		stopChan:          make(chan struct{}),
	}
}

// Start begins the consumer's task processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.executorService.ProcessTask, common.RedisStreamSchedulerTaskExecution, c.cfg.Analyzer.RedisStreamTaskExecutionTimeout)
	c.RegisterStreamHandler(ctx, c.marketTaskService.ProcessCollectorTask, common.RedisStreamMarketCollector, c.cfg.Analyzer.RedisStreamMarketCollectorTimeout)
	c.RegisterStreamHandler(ctx, c.marketTaskService.ProcessRegimeTask, common.RedisStreamMarketRegime, c.cfg.Analyzer.RedisStreamMarketRegimeTimeout)
	c.RegisterStreamHandler(ctx, c.marketTaskService.ProcessEventSyncTask, common.RedisStreamEventSync, c.cfg.Analyzer.RedisStreamEventSyncTimeout)

	// handle retry
	c.RegisterTickerHandler(ctx, c.marketTaskService.ProcessCollectorRetries, c.cfg.Analyzer.RedisStreamMarketCollectorRetryInterval, c.cfg.Analyzer.RedisStreamMarketCollectorTimeout, common.RedisStreamMarketCollector+"-retry")
	c.RegisterTickerHandler(ctx, c.marketTaskService.ProcessRegimeRetries, c.cfg.Analyzer.RedisStreamMarketRegimeRetryInterval, c.cfg.Analyzer.RedisStreamMarketRegimeTimeout, common.RedisStreamMarketRegime+"-retry")
	c.RegisterTickerHandler(ctx, c.marketTaskService.ProcessEventSyncRetries, c.cfg.Analyzer.RedisStreamEventSyncRetryInterval, c.cfg.Analyzer.RedisStreamEventSyncTimeout, common.RedisStreamEventSync+"-retry")
}

// RegisterStreamHandler runs fn in a loop until the consumer stops. Each
// iteration gets its own timeout context.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// RegisterTickerHandler runs fn on every tick until the consumer stops.
func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
