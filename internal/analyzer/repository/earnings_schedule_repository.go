package repository

import (
	"context"
	"errors"
	"time"

	"golang-swing-market/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EarningsScheduleRepository defines the interface for earnings schedule data
// operations. Lookup methods return nil without error when no row matches.
type EarningsScheduleRepository interface {
	Upsert(ctx context.Context, schedule *entity.EarningsSchedule) error
	NextAnnouncement(ctx context.Context, tickerID uint, onOrAfter time.Time) (*entity.EarningsSchedule, error)
	FindByTicker(ctx context.Context, tickerID uint, limit int) ([]entity.EarningsSchedule, error)
}

// NewEarningsScheduleRepository creates a new GORM-based earnings schedule
// repository.
func NewEarningsScheduleRepository(db *gorm.DB) EarningsScheduleRepository {
	return &earningsScheduleRepository{db: db}
}

type earningsScheduleRepository struct {
	db *gorm.DB
}

func (r *earningsScheduleRepository) Upsert(ctx context.Context, schedule *entity.EarningsSchedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker_id"}, {Name: "announcement_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"fiscal_quarter", "fiscal_year", "is_confirmed", "retrieved_at", "updated_at",
			}),
		}).
		Create(schedule).Error
}

func (r *earningsScheduleRepository) NextAnnouncement(ctx context.Context, tickerID uint, onOrAfter time.Time) (*entity.EarningsSchedule, error) {
	var schedule entity.EarningsSchedule
	err := r.db.WithContext(ctx).
		Where("ticker_id = ? AND announcement_date >= ?", tickerID, onOrAfter).
		Order("announcement_date ASC").
		First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *earningsScheduleRepository) FindByTicker(ctx context.Context, tickerID uint, limit int) ([]entity.EarningsSchedule, error) {
	var schedules []entity.EarningsSchedule
	err := r.db.WithContext(ctx).
		Where("ticker_id = ?", tickerID).
		Order("announcement_date DESC").
		Limit(limit).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}
