package repository

import (
	"context"
	"errors"
	"time"

	"golang-swing-market/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DividendScheduleRepository defines the interface for dividend schedule data
// operations. Lookup methods return nil without error when no row matches.
type DividendScheduleRepository interface {
	Upsert(ctx context.Context, schedule *entity.DividendSchedule) error
	NextExDate(ctx context.Context, tickerID uint, onOrAfter time.Time) (*entity.DividendSchedule, error)
}

// NewDividendScheduleRepository creates a new GORM-based dividend schedule
// repository.
func NewDividendScheduleRepository(db *gorm.DB) DividendScheduleRepository {
	return &dividendScheduleRepository{db: db}
}

type dividendScheduleRepository struct {
	db *gorm.DB
}

func (r *dividendScheduleRepository) Upsert(ctx context.Context, schedule *entity.DividendSchedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker_id"}, {Name: "ex_dividend_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"dividend_rate", "retrieved_at", "updated_at",
			}),
		}).
		Create(schedule).Error
}

func (r *dividendScheduleRepository) NextExDate(ctx context.Context, tickerID uint, onOrAfter time.Time) (*entity.DividendSchedule, error) {
	var schedule entity.DividendSchedule
	err := r.db.WithContext(ctx).
		Where("ticker_id = ? AND ex_dividend_date >= ?", tickerID, onOrAfter).
		Order("ex_dividend_date ASC").
		First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}
