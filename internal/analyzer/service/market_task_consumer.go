package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/telegram"
	"golang-swing-market/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// MarketTaskService consumes the ad-hoc task streams the HTTP API publishes
// to. Each stream has a blocking-read path for new messages and a reclaim
// path that retries stuck ones, dead-lettering to Telegram after the retry
// budget is spent.
type MarketTaskService interface {
	ProcessCollectorTask(ctx context.Context)
	ProcessCollectorRetries(ctx context.Context)
	ProcessRegimeTask(ctx context.Context)
	ProcessRegimeRetries(ctx context.Context)
	ProcessEventSyncTask(ctx context.Context)
	ProcessEventSyncRetries(ctx context.Context)
}

// NewMarketTaskService creates a new MarketTaskService.
func NewMarketTaskService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	collectorSvc CollectorService,
	regimeSvc MarketRegimeService,
	syncSvc EventSyncService,
	telegramBot telegram.Notifier,
) MarketTaskService {
	return &marketTaskService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		collectorSvc: collectorSvc,
		regimeSvc:    regimeSvc,
		syncSvc:      syncSvc,
		telegramBot:  telegramBot,
	}
}

type marketTaskService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	collectorSvc CollectorService
	regimeSvc    MarketRegimeService
	syncSvc      EventSyncService
	telegramBot  telegram.Notifier
}

type taskHandler func(ctx context.Context, payload string) error

func (s *marketTaskService) ProcessCollectorTask(ctx context.Context) {
	s.processNext(ctx, common.RedisStreamMarketCollector, s.handleCollector)
}

func (s *marketTaskService) ProcessCollectorRetries(ctx context.Context) {
	s.processRetries(ctx, common.RedisStreamMarketCollector,
		s.cfg.Analyzer.RedisStreamMarketCollectorMaxIdleDuration,
		s.cfg.Analyzer.RedisStreamMarketCollectorMaxRetry,
		s.handleCollector)
}

func (s *marketTaskService) ProcessRegimeTask(ctx context.Context) {
	s.processNext(ctx, common.RedisStreamMarketRegime, s.handleRegime)
}

func (s *marketTaskService) ProcessRegimeRetries(ctx context.Context) {
	s.processRetries(ctx, common.RedisStreamMarketRegime,
		s.cfg.Analyzer.RedisStreamMarketRegimeMaxIdleDuration,
		s.cfg.Analyzer.RedisStreamMarketRegimeMaxRetry,
		s.handleRegime)
}

func (s *marketTaskService) ProcessEventSyncTask(ctx context.Context) {
	s.processNext(ctx, common.RedisStreamEventSync, s.handleEventSync)
}

func (s *marketTaskService) ProcessEventSyncRetries(ctx context.Context) {
	s.processRetries(ctx, common.RedisStreamEventSync,
		s.cfg.Analyzer.RedisStreamEventSyncMaxIdleDuration,
		s.cfg.Analyzer.RedisStreamEventSyncMaxRetry,
		s.handleEventSync)
}

// processNext reads one new message from the stream, runs the handler, and
// acknowledges on success. Failed messages stay pending for the retry path.
func (s *marketTaskService) processNext(ctx context.Context, stream string, handle taskHandler) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{stream, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err), logger.StringField("stream", stream))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message",
			logger.Field("message_id", message.ID), logger.StringField("stream", stream))
		return
	}

	if err := handle(ctx, taskData); err != nil {
		s.log.Error("Failed to process task", logger.ErrorField(err),
			logger.Field("message_id", message.ID), logger.StringField("stream", stream))
		return
	}

	if err := s.ackNDel(ctx, stream, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete task", logger.ErrorField(err),
			logger.Field("message_id", message.ID), logger.StringField("stream", stream))
		return
	}

	s.log.Debug("Task processed successfully",
		logger.Field("message_id", message.ID), logger.StringField("stream", stream))
}

// processRetries reclaims one message idle longer than maxIdle and re-runs
// it. Once the retry count exceeds maxRetry the message is dropped with a
// Telegram alert.
func (s *marketTaskService) processRetries(ctx context.Context, stream string, maxIdle time.Duration, maxRetry int, handle taskHandler) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  maxIdle,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim task on retry", logger.ErrorField(err), logger.StringField("stream", stream))
		return
	}

	if len(msgs) == 0 {
		s.log.Debug("Retry No pending messages found", logger.StringField("stream", stream))
		return
	}

	s.log.Info("Found pending messages", logger.StringField("stream", stream))

	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  common.RedisStreamGroup,
		Start:  msgs[0].ID,
		End:    msgs[0].ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err), logger.StringField("stream", stream))
		return
	}

	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim",
			logger.StringField("stream", stream),
			logger.StringField("message_id", msgs[0].ID))
		return
	}

	msg := msgs[0]
	taskData, _ := msg.Values["payload"].(string)

	if pendingInfo[0].RetryCount >= int64(maxRetry) {
		s.log.Error("pending msg retry count exceeded",
			logger.StringField("stream", stream),
			logger.StringField("message_id", msg.ID),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", maxRetry),
		)
		alert := telegram.FormatErrorAlertMessage(utils.TimeNowJST(),
			fmt.Sprintf("Task retry count exceeded on stream %s: %s", stream, truncatePayload(taskData)))
		if err := s.telegramBot.SendMessage(alert); err != nil {
			s.log.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err), logger.StringField("stream", stream))
		}
		if err := s.ackNDel(ctx, stream, msg.ID); err != nil {
			s.log.Error("Failed to acknowledge and delete task", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		}
		return
	}

	if taskData == "" {
		s.log.Error("field 'payload' not found or not a string in stream message",
			logger.Field("message_id", msg.ID), logger.StringField("stream", stream))
		return
	}

	if err := handle(ctx, taskData); err != nil {
		s.log.Error("Failed to process task on retry", logger.ErrorField(err),
			logger.Field("message_id", msg.ID), logger.StringField("stream", stream))
		return
	}

	if err := s.ackNDel(ctx, stream, msg.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete task", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}
	s.log.Info("Retry task processed successfully",
		logger.Field("message_id", msg.ID), logger.StringField("stream", stream))
}

func (s *marketTaskService) ackNDel(ctx context.Context, streamName string, messageID string) error {
	if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		return err
	}
	if err := s.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		return err
	}
	return nil
}

func (s *marketTaskService) handleCollector(ctx context.Context, payload string) error {
	var data dto.StreamDataMarketCollector
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return fmt.Errorf("failed to unmarshal collector task: %w", err)
	}

	var result *dto.CollectionResult
	var err error
	if len(data.Symbols) == 0 {
		result, err = s.collectorSvc.CollectUniverse(ctx, data.WindowDays)
	} else {
		result, err = s.collectorSvc.CollectSymbols(ctx, data.Symbols, data.WindowDays)
	}
	if err != nil {
		return err
	}

	s.log.Info("Collector task done",
		logger.IntField("collected", len(result.SavedRows)),
		logger.IntField("failed", len(result.Errors)),
	)
	return nil
}

func (s *marketTaskService) handleRegime(ctx context.Context, payload string) error {
	var data dto.StreamDataMarketRegime
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return fmt.Errorf("failed to unmarshal regime task: %w", err)
	}

	var asOf time.Time
	if data.AnalysisDate != "" {
		parsed, err := time.Parse("2006-01-02", data.AnalysisDate)
		if err != nil {
			return fmt.Errorf("invalid analysis_date %q: %w", data.AnalysisDate, err)
		}
		asOf = parsed
	}

	regime, err := s.regimeSvc.RunAnalysis(ctx, asOf, data.Notify)
	if err != nil {
		return err
	}

	s.log.Info("Regime task done",
		logger.StringField("environment", string(regime.Environment)),
		logger.IntField("risk_score", regime.Risk.Score),
	)
	return nil
}

func (s *marketTaskService) handleEventSync(ctx context.Context, payload string) error {
	var data dto.StreamDataEventSync
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return fmt.Errorf("failed to unmarshal event sync task: %w", err)
	}

	var result *dto.SyncResult
	var err error
	if len(data.Symbols) == 0 {
		result, err = s.syncSvc.SyncUniverse(ctx)
	} else {
		result, err = s.syncSvc.SyncSymbols(ctx, data.Symbols)
	}
	if err != nil {
		return err
	}

	s.log.Info("Event sync task done",
		logger.IntField("synced", len(result.EarningsUpserted)),
		logger.IntField("failed", len(result.Errors)),
	)
	return nil
}

func truncatePayload(payload string) string {
	const maxLen = 200
	if len(payload) <= maxLen {
		return payload
	}
	return payload[:maxLen] + "..."
}
