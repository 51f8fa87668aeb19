package service

import (
	"context"
	"encoding/json"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/strategy"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// TaskPublisher enqueues ad-hoc analysis tasks onto the Redis streams
// consumed by MarketTaskService. The interface is declared in the strategy
// package so strategies need not import this one.
type TaskPublisher = strategy.TaskPublisher

type taskPublisher struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
}

// NewTaskPublisher creates a new TaskPublisher.
func NewTaskPublisher(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) TaskPublisher {
	return &taskPublisher{cfg: cfg, log: log, redisClient: redisClient}
}

func (p *taskPublisher) EnqueueCollection(ctx context.Context, data dto.StreamDataMarketCollector) error {
	return p.publish(ctx, common.RedisStreamMarketCollector, data)
}

func (p *taskPublisher) EnqueueRegimeAnalysis(ctx context.Context, data dto.StreamDataMarketRegime) error {
	return p.publish(ctx, common.RedisStreamMarketRegime, data)
}

func (p *taskPublisher) EnqueueEventSync(ctx context.Context, data dto.StreamDataEventSync) error {
	return p.publish(ctx, common.RedisStreamEventSync, data)
}

func (p *taskPublisher) publish(ctx context.Context, stream string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: p.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		p.log.Error("Failed to enqueue task", logger.ErrorField(err), logger.StringField("stream", stream))
		return err
	}

	p.log.Info("Task enqueued", logger.StringField("stream", stream))
	return nil
}
