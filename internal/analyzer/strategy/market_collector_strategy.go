package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/internal/entity"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"
)

// MarketCollectorPayload defines the structure for market collector job
// payloads. An empty symbol list collects the whole configured universe.
type MarketCollectorPayload struct {
	Symbols    []string `json:"symbols"`
	WindowDays int      `json:"window_days"`
}

// MarketCollectorStrategy enqueues a daily price collection task. The actual
// collection runs on the market collector stream, which carries retry and
// dead-letter handling.
type MarketCollectorStrategy struct {
	logger    *logger.Logger
	publisher service.TaskPublisher
}

// NewMarketCollectorStrategy creates a new MarketCollectorStrategy.
func NewMarketCollectorStrategy(log *logger.Logger, publisher service.TaskPublisher) JobExecutionStrategy {
	return &MarketCollectorStrategy{logger: log, publisher: publisher}
}

// GetType returns the job type this strategy handles.
func (s *MarketCollectorStrategy) GetType() entity.JobType {
	return entity.JobTypeMarketCollector
}

// Execute queues collection of the payload's symbols, or the whole universe
// when none are given.
func (s *MarketCollectorStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload MarketCollectorPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			s.logger.Error("Failed to unmarshal job payload", logger.ErrorField(err), logger.Field("job_id", job.ID))
			return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
	}

	data := dto.StreamDataMarketCollector{Symbols: payload.Symbols, WindowDays: payload.WindowDays}
	if err := s.publisher.EnqueueCollection(ctx, data); err != nil {
		return "", err
	}

	output, err := json.Marshal(dto.CollectionQueuedResponse{
		Stream:   common.RedisStreamMarketCollector,
		QueuedAt: utils.TimeNowJST(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal strategy output: %w", err)
	}
	return string(output), nil
}
