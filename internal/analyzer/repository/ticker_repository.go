package repository

import (
	"context"

	"golang-swing-market/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TickerRepository defines the interface for ticker data operations.
type TickerRepository interface {
	GetActive(ctx context.Context) ([]entity.Ticker, error)
	FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error)
	GetOrCreate(ctx context.Context, symbol, name, marketSegment string, isIndex bool) (*entity.Ticker, error)
}

// NewTickerRepository creates a new GORM-based ticker repository.
func NewTickerRepository(db *gorm.DB) TickerRepository {
	return &tickerRepository{db: db}
}

type tickerRepository struct {
	db *gorm.DB
}

func (r *tickerRepository) GetActive(ctx context.Context) ([]entity.Ticker, error) {
	var tickers []entity.Ticker
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

func (r *tickerRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error) {
	var ticker entity.Ticker
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&ticker).Error; err != nil {
		return nil, err
	}
	return &ticker, nil
}

// GetOrCreate returns the ticker for symbol, inserting it when missing.
func (r *tickerRepository) GetOrCreate(ctx context.Context, symbol, name, marketSegment string, isIndex bool) (*entity.Ticker, error) {
	ticker := entity.Ticker{
		Symbol:   symbol,
		Name:     name,
		Market:   marketSegment,
		IsIndex:  isIndex,
		IsActive: true,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoNothing: true,
		}).
		Create(&ticker).Error
	if err != nil {
		return nil, err
	}
	if ticker.ID == 0 {
		return r.FindBySymbol(ctx, symbol)
	}
	return &ticker, nil
}
