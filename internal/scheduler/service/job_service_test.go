package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"golang-swing-market/internal/entity"
	"golang-swing-market/internal/scheduler/dto"
	"golang-swing-market/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

type fakeJobRepo struct {
	jobs      map[uint]*entity.Job
	nextID    uint
	createErr error
	deleted   []uint
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uint]*entity.Job)}
}

func (f *fakeJobRepo) Create(_ context.Context, job *entity.Job) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	job.ID = f.nextID
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) FindByID(_ context.Context, id uint) (*entity.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) FindAll(context.Context) ([]entity.Job, error) {
	var jobs []entity.Job
	for _, job := range f.jobs {
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (f *fakeJobRepo) Update(_ context.Context, job *entity.Job) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) Delete(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	delete(f.jobs, id)
	return nil
}

func TestCreateJobPersistsJobAndSchedules(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, testLogger(t))

	resp, err := svc.CreateJob(context.Background(), &dto.CreateJobRequest{
		Name:        "nightly-collection",
		Description: "Collects daily bars after the close",
		Type:        "market_collector",
		Payload:     json.RawMessage(`{"symbols":["7203.T"],"window_days":30}`),
		RetryPolicy: dto.RetryPolicyDTO{MaxRetries: 3, BackoffStrategy: "exponential", InitialInterval: "30s"},
		Timeout:     300,
		Schedules:   []dto.ScheduleDTO{{CronExpression: "30 15 * * 1-5", IsActive: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, "market_collector", resp.Type)
	assert.Equal(t, dto.RetryPolicyDTO{MaxRetries: 3, BackoffStrategy: "exponential", InitialInterval: "30s"}, resp.RetryPolicy)
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, "30 15 * * 1-5", resp.Schedules[0].CronExpression)
	assert.True(t, resp.Schedules[0].IsActive)

	stored := repo.jobs[1]
	require.NotNil(t, stored)
	assert.JSONEq(t, `{"symbols":["7203.T"],"window_days":30}`, string(stored.Payload))
	require.Len(t, stored.Schedules, 1)
}

func TestCreateJobRejectsUnknownType(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, testLogger(t))

	_, err := svc.CreateJob(context.Background(), &dto.CreateJobRequest{Name: "x", Type: "mystery"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidJobType)
	assert.Empty(t, repo.jobs)
}

func TestCreateJobRejectsMalformedCron(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, testLogger(t))

	_, err := svc.CreateJob(context.Background(), &dto.CreateJobRequest{
		Name:      "x",
		Type:      "market_regime",
		Schedules: []dto.ScheduleDTO{{CronExpression: "every monday"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCronExpression)
	assert.Empty(t, repo.jobs)
}

func TestCreateJobAcceptsCronDescriptor(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, testLogger(t))

	_, err := svc.CreateJob(context.Background(), &dto.CreateJobRequest{
		Name:      "daily-sync",
		Type:      "event_sync",
		Schedules: []dto.ScheduleDTO{{CronExpression: "@daily", IsActive: true}},
	})
	require.NoError(t, err)
}

func TestUpdateJobReplacesSchedules(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, testLogger(t))

	created, err := svc.CreateJob(context.Background(), &dto.CreateJobRequest{
		Name:      "regime",
		Type:      "market_regime",
		Schedules: []dto.ScheduleDTO{{CronExpression: "0 16 * * 1-5", IsActive: true}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateJob(context.Background(), created.ID, &dto.UpdateJobRequest{
		Name:      "regime",
		Type:      "market_regime",
		Payload:   json.RawMessage(`{"notify":true}`),
		Schedules: []dto.ScheduleDTO{{CronExpression: "30 16 * * 1-5", IsActive: true}},
	})
	require.NoError(t, err)

	require.Len(t, updated.Schedules, 1)
	assert.Equal(t, "30 16 * * 1-5", updated.Schedules[0].CronExpression)

	stored := repo.jobs[created.ID]
	require.Len(t, stored.Schedules, 1)
	assert.Equal(t, created.ID, stored.Schedules[0].JobID)
	assert.JSONEq(t, `{"notify":true}`, string(stored.Payload))
}

func TestGetJobByIDUnknownFails(t *testing.T) {
	svc := NewJobService(newFakeJobRepo(), testLogger(t))

	_, err := svc.GetJobByID(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteJobRemovesJob(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, testLogger(t))

	created, err := svc.CreateJob(context.Background(), &dto.CreateJobRequest{Name: "x", Type: "http"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteJob(context.Background(), created.ID))
	assert.Equal(t, []uint{created.ID}, repo.deleted)
	assert.Empty(t, repo.jobs)
}
