package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/entity"
	"golang-swing-market/pkg/common"
	"golang-swing-market/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

type fakePublisher struct {
	collections []dto.StreamDataMarketCollector
	regimes     []dto.StreamDataMarketRegime
	eventSyncs  []dto.StreamDataEventSync
	err         error
}

func (f *fakePublisher) EnqueueCollection(_ context.Context, data dto.StreamDataMarketCollector) error {
	if f.err != nil {
		return f.err
	}
	f.collections = append(f.collections, data)
	return nil
}

func (f *fakePublisher) EnqueueRegimeAnalysis(_ context.Context, data dto.StreamDataMarketRegime) error {
	if f.err != nil {
		return f.err
	}
	f.regimes = append(f.regimes, data)
	return nil
}

func (f *fakePublisher) EnqueueEventSync(_ context.Context, data dto.StreamDataEventSync) error {
	if f.err != nil {
		return f.err
	}
	f.eventSyncs = append(f.eventSyncs, data)
	return nil
}

func job(jobType entity.JobType, payload string) *entity.Job {
	j := &entity.Job{ID: 1, Name: "test-job", Type: jobType}
	if payload != "" {
		j.Payload = datatypes.JSON(payload)
	}
	return j
}

func queuedResponse(t *testing.T, output string) dto.CollectionQueuedResponse {
	t.Helper()
	var resp dto.CollectionQueuedResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	return resp
}

func TestMarketCollectorStrategyQueuesPayloadSymbols(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewMarketCollectorStrategy(testLogger(t), publisher)

	output, err := s.Execute(context.Background(), job(entity.JobTypeMarketCollector, `{"symbols":["7203.T","6758.T"],"window_days":45}`))
	require.NoError(t, err)

	require.Len(t, publisher.collections, 1)
	assert.Equal(t, []string{"7203.T", "6758.T"}, publisher.collections[0].Symbols)
	assert.Equal(t, 45, publisher.collections[0].WindowDays)

	resp := queuedResponse(t, output)
	assert.Equal(t, common.RedisStreamMarketCollector, resp.Stream)
	assert.False(t, resp.QueuedAt.IsZero())
}

func TestMarketCollectorStrategyEmptyPayloadQueuesUniverse(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewMarketCollectorStrategy(testLogger(t), publisher)

	_, err := s.Execute(context.Background(), job(entity.JobTypeMarketCollector, ""))
	require.NoError(t, err)

	require.Len(t, publisher.collections, 1)
	assert.Empty(t, publisher.collections[0].Symbols)
	assert.Zero(t, publisher.collections[0].WindowDays)
}

func TestMarketCollectorStrategyRejectsMalformedPayload(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewMarketCollectorStrategy(testLogger(t), publisher)

	_, err := s.Execute(context.Background(), job(entity.JobTypeMarketCollector, `{"symbols":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal job payload")
	assert.Empty(t, publisher.collections)
}

func TestMarketCollectorStrategyPropagatesPublishError(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("stream down")}
	s := NewMarketCollectorStrategy(testLogger(t), publisher)

	_, err := s.Execute(context.Background(), job(entity.JobTypeMarketCollector, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream down")
}

func TestMarketRegimeStrategyQueuesValidatedDate(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewMarketRegimeStrategy(testLogger(t), publisher)

	output, err := s.Execute(context.Background(), job(entity.JobTypeMarketRegime, `{"analysis_date":"2025-08-08","notify":true}`))
	require.NoError(t, err)

	require.Len(t, publisher.regimes, 1)
	assert.Equal(t, "2025-08-08", publisher.regimes[0].AnalysisDate)
	assert.True(t, publisher.regimes[0].Notify)
	assert.Equal(t, common.RedisStreamMarketRegime, queuedResponse(t, output).Stream)
}

func TestMarketRegimeStrategyRejectsBadAnalysisDate(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewMarketRegimeStrategy(testLogger(t), publisher)

	_, err := s.Execute(context.Background(), job(entity.JobTypeMarketRegime, `{"analysis_date":"08/08/2025"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid analysis_date "08/08/2025"`)
	assert.Empty(t, publisher.regimes)
}

func TestMarketRegimeStrategyEmptyDateMeansLatest(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewMarketRegimeStrategy(testLogger(t), publisher)

	_, err := s.Execute(context.Background(), job(entity.JobTypeMarketRegime, ""))
	require.NoError(t, err)

	require.Len(t, publisher.regimes, 1)
	assert.Empty(t, publisher.regimes[0].AnalysisDate)
}

func TestEventSyncStrategyQueuesSymbols(t *testing.T) {
	publisher := &fakePublisher{}
	s := NewEventSyncStrategy(testLogger(t), publisher)

	output, err := s.Execute(context.Background(), job(entity.JobTypeEventSync, `{"symbols":["8306.T"]}`))
	require.NoError(t, err)

	require.Len(t, publisher.eventSyncs, 1)
	assert.Equal(t, []string{"8306.T"}, publisher.eventSyncs[0].Symbols)
	assert.Equal(t, common.RedisStreamEventSync, queuedResponse(t, output).Stream)
}

func TestStrategyTypes(t *testing.T) {
	log := testLogger(t)
	publisher := &fakePublisher{}

	assert.Equal(t, entity.JobTypeMarketCollector, NewMarketCollectorStrategy(log, publisher).GetType())
	assert.Equal(t, entity.JobTypeMarketRegime, NewMarketRegimeStrategy(log, publisher).GetType())
	assert.Equal(t, entity.JobTypeEventSync, NewEventSyncStrategy(log, publisher).GetType())
	assert.Equal(t, entity.JobTypeHTTP, NewHTTPStrategy(log).GetType())
}
