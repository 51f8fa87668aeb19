package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// JobType identifies which execution strategy runs a job.
type JobType string

const (
	JobTypeMarketCollector JobType = "market_collector"
	JobTypeMarketRegime    JobType = "market_regime"
	JobTypeEventSync       JobType = "event_sync"
	JobTypeHTTP            JobType = "http"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeMarketCollector, JobTypeMarketRegime, JobTypeEventSync, JobTypeHTTP:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of one task execution.
type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job is a schedulable unit of work. Payload carries strategy-specific
// parameters as JSON; Timeout is in seconds.
type Job struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Type        JobType        `gorm:"not null" json:"type"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	RetryPolicy datatypes.JSON `gorm:"type:jsonb" json:"retry_policy"`
	Timeout     int            `gorm:"not null;default:60" json:"timeout"`
	Schedules   []TaskSchedule `gorm:"foreignKey:JobID" json:"schedules"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// TaskSchedule is one cron expression attached to a job.
type TaskSchedule struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	JobID          uint         `gorm:"not null" json:"job_id"`
	CronExpression string       `gorm:"not null" json:"cron_expression"`
	IsActive       bool         `gorm:"not null;default:true" json:"is_active"`
	NextExecution  sql.NullTime `json:"next_execution"`
	LastExecution  sql.NullTime `json:"last_execution"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TaskSchedule) TableName() string {
	return "task_schedules"
}

// TaskExecutionHistory records one enqueued execution of a job. The scheduler
// creates it in the running state and the consumer finalizes it.
type TaskExecutionHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	JobID        uint           `gorm:"not null" json:"job_id"`
	ScheduleID   uint           `json:"schedule_id"`
	Status       JobStatus      `gorm:"not null" json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	ErrorMessage sql.NullString `json:"error_message"`
	Output       sql.NullString `json:"output"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (TaskExecutionHistory) TableName() string {
	return "task_execution_histories"
}
