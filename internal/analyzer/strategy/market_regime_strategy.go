package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/service"
	"golang-swing-market/internal/entity"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"
)

// MarketRegimePayload defines the structure for market regime job payloads.
// AnalysisDate is "2006-01-02"; empty means today.
type MarketRegimePayload struct {
	AnalysisDate string `json:"analysis_date"`
	Notify       bool   `json:"notify"`
}

// MarketRegimeStrategy enqueues a market regime classification task onto the
// market regime stream.
type MarketRegimeStrategy struct {
	logger    *logger.Logger
	publisher service.TaskPublisher
}

// NewMarketRegimeStrategy creates a new MarketRegimeStrategy.
func NewMarketRegimeStrategy(log *logger.Logger, publisher service.TaskPublisher) JobExecutionStrategy {
	return &MarketRegimeStrategy{logger: log, publisher: publisher}
}

// GetType returns the job type this strategy handles.
func (s *MarketRegimeStrategy) GetType() entity.JobType {
	return entity.JobTypeMarketRegime
}

// Execute validates the payload and queues the regime classification.
func (s *MarketRegimeStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload MarketRegimePayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			s.logger.Error("Failed to unmarshal job payload", logger.ErrorField(err), logger.Field("job_id", job.ID))
			return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
	}

	if payload.AnalysisDate != "" {
		if _, err := time.Parse("2006-01-02", payload.AnalysisDate); err != nil {
			return "", fmt.Errorf("invalid analysis_date %q: %w", payload.AnalysisDate, err)
		}
	}

	data := dto.StreamDataMarketRegime{AnalysisDate: payload.AnalysisDate, Notify: payload.Notify}
	if err := s.publisher.EnqueueRegimeAnalysis(ctx, data); err != nil {
		return "", err
	}

	output, err := json.Marshal(dto.CollectionQueuedResponse{
		Stream:   common.RedisStreamMarketRegime,
		QueuedAt: utils.TimeNowJST(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal strategy output: %w", err)
	}
	return string(output), nil
}
