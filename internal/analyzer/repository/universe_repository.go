package repository

import (
	"context"
	"fmt"
	"time"

	"golang-swing-market/internal/entity"
	"golang-swing-market/internal/market"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// UniverseRepository resolves universe membership and supplies the close
// series the breadth calculation runs on.
type UniverseRepository interface {
	FindByName(ctx context.Context, name string) (*entity.Universe, error)
	GetMemberTickers(ctx context.Context, name string) ([]entity.Ticker, error)
	GetUniverseCloses(ctx context.Context, name string, days int) (map[string][]market.ClosePoint, error)
}

// NewUniverseRepository creates a new GORM-based universe repository. Close
// series are cached for five minutes so repeated regime runs within one
// scheduling tick reuse them.
func NewUniverseRepository(db *gorm.DB) UniverseRepository {
	return &universeRepository{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

type universeRepository struct {
	db    *gorm.DB
	cache *gocache.Cache
}

func (r *universeRepository) FindByName(ctx context.Context, name string) (*entity.Universe, error) {
	var universe entity.Universe
	err := r.db.WithContext(ctx).
		Preload("Symbols.Ticker").
		Where("name = ?", name).
		First(&universe).Error
	if err != nil {
		return nil, err
	}
	return &universe, nil
}

func (r *universeRepository) GetMemberTickers(ctx context.Context, name string) ([]entity.Ticker, error) {
	var tickers []entity.Ticker
	err := r.db.WithContext(ctx).
		Joins("JOIN universe_symbols us ON us.ticker_id = tickers.id").
		Joins("JOIN universes u ON u.id = us.universe_id").
		Where("u.name = ? AND tickers.is_active = ?", name, true).
		Find(&tickers).Error
	if err != nil {
		return nil, err
	}
	return tickers, nil
}

type universeCloseRow struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// GetUniverseCloses returns the last days close observations per member
// symbol, ascending by date.
func (r *universeRepository) GetUniverseCloses(ctx context.Context, name string, days int) (map[string][]market.ClosePoint, error) {
	cacheKey := fmt.Sprintf("universe_closes:%s:%d", name, days)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.(map[string][]market.ClosePoint), nil
	}

	var rows []universeCloseRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT symbol, date, close FROM (
			SELECT t.symbol, dp.date, dp.close,
			       ROW_NUMBER() OVER (PARTITION BY t.symbol ORDER BY dp.date DESC) AS rn
			FROM daily_prices dp
			JOIN tickers t ON t.id = dp.ticker_id
			JOIN universe_symbols us ON us.ticker_id = t.id
			JOIN universes u ON u.id = us.universe_id
			WHERE u.name = ? AND t.is_active = TRUE
		) ranked
		WHERE rn <= ?
		ORDER BY symbol, date ASC
	`, name, days).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	closes := make(map[string][]market.ClosePoint)
	for _, row := range rows {
		closes[row.Symbol] = append(closes[row.Symbol], market.ClosePoint{
			Date:  row.Date,
			Close: row.Close,
		})
	}

	r.cache.Set(cacheKey, closes, gocache.DefaultExpiration)
	return closes, nil
}
