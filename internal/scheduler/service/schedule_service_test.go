package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"golang-swing-market/internal/entity"
	"golang-swing-market/internal/scheduler/dto"
)

type fakeScheduleRepo struct {
	schedules map[uint]*entity.TaskSchedule
	nextID    uint
	updated   *entity.TaskSchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uint]*entity.TaskSchedule)}
}

func (f *fakeScheduleRepo) Create(_ context.Context, schedule *entity.TaskSchedule) error {
	f.nextID++
	schedule.ID = f.nextID
	f.schedules[schedule.ID] = schedule
	return nil
}

func (f *fakeScheduleRepo) FindByID(_ context.Context, id uint) (*entity.TaskSchedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return schedule, nil
}

func (f *fakeScheduleRepo) FindAll(context.Context) ([]entity.TaskSchedule, error) {
	var schedules []entity.TaskSchedule
	for _, schedule := range f.schedules {
		schedules = append(schedules, *schedule)
	}
	return schedules, nil
}

func (f *fakeScheduleRepo) Update(_ context.Context, schedule *entity.TaskSchedule) error {
	f.updated = schedule
	f.schedules[schedule.ID] = schedule
	return nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id uint) error {
	delete(f.schedules, id)
	return nil
}

func (f *fakeScheduleRepo) FindDueSchedules(context.Context) ([]entity.TaskSchedule, error) {
	return nil, nil
}

func TestCreateSchedulePersists(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, testLogger(t))

	resp, err := svc.CreateSchedule(context.Background(), &dto.CreateScheduleRequest{
		JobID:          7,
		CronExpression: "0 16 * * 1-5",
		IsActive:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, uint(7), resp.JobID)
	assert.Equal(t, "0 16 * * 1-5", resp.CronExpression)
	assert.True(t, resp.IsActive)
}

func TestCreateScheduleRejectsMalformedCron(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, testLogger(t))

	_, err := svc.CreateSchedule(context.Background(), &dto.CreateScheduleRequest{
		JobID:          7,
		CronExpression: "at four pm",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCronExpression)
	assert.Empty(t, repo.schedules)
}

func TestUpdateScheduleRecomputesNextExecution(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, testLogger(t))

	created, err := svc.CreateSchedule(context.Background(), &dto.CreateScheduleRequest{
		JobID:          7,
		CronExpression: "0 9 * * *",
		IsActive:       true,
	})
	require.NoError(t, err)

	resp, err := svc.UpdateSchedule(context.Background(), created.ID, &dto.UpdateScheduleRequest{
		CronExpression: "30 15 * * 1-5",
		IsActive:       false,
	})
	require.NoError(t, err)

	assert.Equal(t, "30 15 * * 1-5", resp.CronExpression)
	assert.False(t, resp.IsActive)
	require.True(t, resp.NextExecution.Valid)
	assert.True(t, resp.NextExecution.Time.After(time.Now().Add(-time.Minute)))
	require.NotNil(t, repo.updated)
}

func TestUpdateScheduleUnknownIDFails(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), testLogger(t))

	_, err := svc.UpdateSchedule(context.Background(), 99, &dto.UpdateScheduleRequest{CronExpression: "0 9 * * *"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
