package repository

import (
	"context"
	"errors"
	"time"

	"golang-swing-market/internal/entity"

	"gorm.io/gorm"
)

// MarketRegimeRepository persists regime classifications. GetLatest returns
// nil without error when no snapshot exists yet.
type MarketRegimeRepository interface {
	Save(ctx context.Context, snapshot *entity.MarketRegimeSnapshot) error
	GetLatest(ctx context.Context) (*entity.MarketRegimeSnapshot, error)
	ListRange(ctx context.Context, from, to time.Time) ([]entity.MarketRegimeSnapshot, error)
}

// NewMarketRegimeRepository creates a new GORM-based market regime repository.
func NewMarketRegimeRepository(db *gorm.DB) MarketRegimeRepository {
	return &marketRegimeRepository{db: db}
}

type marketRegimeRepository struct {
	db *gorm.DB
}

func (r *marketRegimeRepository) Save(ctx context.Context, snapshot *entity.MarketRegimeSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *marketRegimeRepository) GetLatest(ctx context.Context) (*entity.MarketRegimeSnapshot, error) {
	var snapshot entity.MarketRegimeSnapshot
	err := r.db.WithContext(ctx).
		Order("analysis_date DESC, created_at DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *marketRegimeRepository) ListRange(ctx context.Context, from, to time.Time) ([]entity.MarketRegimeSnapshot, error) {
	var snapshots []entity.MarketRegimeSnapshot
	err := r.db.WithContext(ctx).
		Where("analysis_date >= ? AND analysis_date <= ?", from, to).
		Order("analysis_date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
