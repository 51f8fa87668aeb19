package strategy

import (
	"context"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/entity"
)

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *entity.Job) (string, error)
	GetType() entity.JobType
}

// TaskPublisher enqueues ad-hoc analysis tasks onto the Redis streams
// consumed by MarketTaskService.
type TaskPublisher interface {
	EnqueueCollection(ctx context.Context, data dto.StreamDataMarketCollector) error
	EnqueueRegimeAnalysis(ctx context.Context, data dto.StreamDataMarketRegime) error
	EnqueueEventSync(ctx context.Context, data dto.StreamDataEventSync) error
}
