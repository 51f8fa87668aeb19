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

// EventSyncPayload defines the structure for event schedule sync job payloads.
// An empty symbol list syncs the whole configured universe.
type EventSyncPayload struct {
	Symbols []string `json:"symbols"`
}

// EventSyncStrategy enqueues an earnings/dividend schedule sync task onto the
// event sync stream.
type EventSyncStrategy struct {
	logger    *logger.Logger
	publisher service.TaskPublisher
}

// NewEventSyncStrategy creates a new EventSyncStrategy.
func NewEventSyncStrategy(log *logger.Logger, publisher service.TaskPublisher) JobExecutionStrategy {
	return &EventSyncStrategy{logger: log, publisher: publisher}
}

// GetType returns the job type this strategy handles.
func (s *EventSyncStrategy) GetType() entity.JobType {
	return entity.JobTypeEventSync
}

// Execute queues a schedule refresh for the payload's symbols, or the whole
// universe when none are given.
func (s *EventSyncStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload EventSyncPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			s.logger.Error("Failed to unmarshal job payload", logger.ErrorField(err), logger.Field("job_id", job.ID))
			return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
	}

	if err := s.publisher.EnqueueEventSync(ctx, dto.StreamDataEventSync{Symbols: payload.Symbols}); err != nil {
		return "", err
	}

	output, err := json.Marshal(dto.CollectionQueuedResponse{
		Stream:   common.RedisStreamEventSync,
		QueuedAt: utils.TimeNowJST(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal strategy output: %w", err)
	}
	return string(output), nil
}
