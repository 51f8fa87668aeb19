package repository

import (
	"context"
	"math"
	"time"

	"golang-swing-market/internal/entity"
	"golang-swing-market/internal/market"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyPriceRepository persists OHLCV bars together with their computed
// indicator columns. GetTrailingWindow makes it the production
// market.PriceHistoryProvider.
type DailyPriceRepository interface {
	SaveTable(ctx context.Context, tickerID uint, table *market.PriceTable) (int, error)
	GetTrailingWindow(ctx context.Context, tickerID uint, beforeDate time.Time, lookbackDays int) (*market.PriceTable, error)
	GetRange(ctx context.Context, tickerID uint, from, to time.Time) (*market.PriceTable, error)
	GetLatest(ctx context.Context, tickerID uint, days int) (*market.PriceTable, error)
}

// NewDailyPriceRepository creates a new GORM-based daily price repository.
func NewDailyPriceRepository(db *gorm.DB) DailyPriceRepository {
	return &dailyPriceRepository{db: db}
}

type dailyPriceRepository struct {
	db *gorm.DB
}

// SaveTable upserts every row of table for tickerID, replacing price and
// indicator columns on conflict. Returns the number of rows written.
func (r *dailyPriceRepository) SaveTable(ctx context.Context, tickerID uint, table *market.PriceTable) (int, error) {
	if table.Len() == 0 {
		return 0, nil
	}

	rows := make([]entity.DailyPrice, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		rows = append(rows, toDailyPrice(tickerID, table, i))
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(append([]string{
				"open", "high", "low", "close", "adj_close", "volume", "updated_at",
			}, indicatorColumns...)),
		}).
		CreateInBatches(rows, 200).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// GetTrailingWindow returns up to lookbackDays bars strictly before
// beforeDate, ascending by date.
func (r *dailyPriceRepository) GetTrailingWindow(ctx context.Context, tickerID uint, beforeDate time.Time, lookbackDays int) (*market.PriceTable, error) {
	var rows []entity.DailyPrice
	err := r.db.WithContext(ctx).
		Where("ticker_id = ? AND date < ?", tickerID, beforeDate).
		Order("date DESC").
		Limit(lookbackDays).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reverseRows(rows)
	return toPriceTable(rows), nil
}

// GetRange returns the bars with from <= date <= to, ascending by date.
func (r *dailyPriceRepository) GetRange(ctx context.Context, tickerID uint, from, to time.Time) (*market.PriceTable, error) {
	var rows []entity.DailyPrice
	err := r.db.WithContext(ctx).
		Where("ticker_id = ? AND date >= ? AND date <= ?", tickerID, from, to).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPriceTable(rows), nil
}

// GetLatest returns the most recent days bars, ascending by date.
func (r *dailyPriceRepository) GetLatest(ctx context.Context, tickerID uint, days int) (*market.PriceTable, error) {
	var rows []entity.DailyPrice
	err := r.db.WithContext(ctx).
		Where("ticker_id = ?", tickerID).
		Order("date DESC").
		Limit(days).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reverseRows(rows)
	return toPriceTable(rows), nil
}

// indicatorColumns lists every indicator column updated on upsert, in the
// order they appear on entity.DailyPrice.
var indicatorColumns = []string{
	"sma_5", "sma_25", "sma_75", "ema_12", "ema_26",
	"rsi_14", "stoch_k", "stoch_d",
	"macd", "macd_signal", "macd_histogram",
	"bb_upper", "bb_middle", "bb_lower", "bb_width",
	"atr_14", "realized_volatility",
	"adx_14", "sar",
	"obv", "volume_ma_20", "volume_ratio",
}

func toDailyPrice(tickerID uint, t *market.PriceTable, i int) entity.DailyPrice {
	row := entity.DailyPrice{
		TickerID: tickerID,
		Date:     t.Dates[i],
		Open:     t.Open[i],
		High:     t.High[i],
		Low:      t.Low[i],
		Close:    t.Close[i],
		AdjClose: nullableAt(t.AdjClose, i),
		Volume:   t.Volume[i],
	}

	row.SMA5 = indicatorAt(t, "sma_5", i)
	row.SMA25 = indicatorAt(t, "sma_25", i)
	row.SMA75 = indicatorAt(t, "sma_75", i)
	row.EMA12 = indicatorAt(t, "ema_12", i)
	row.EMA26 = indicatorAt(t, "ema_26", i)
	row.RSI14 = indicatorAt(t, "rsi_14", i)
	row.StochK = indicatorAt(t, "stoch_k", i)
	row.StochD = indicatorAt(t, "stoch_d", i)
	row.MACD = indicatorAt(t, "macd", i)
	row.MACDSignal = indicatorAt(t, "macd_signal", i)
	row.MACDHistogram = indicatorAt(t, "macd_histogram", i)
	row.BBUpper = indicatorAt(t, "bb_upper", i)
	row.BBMiddle = indicatorAt(t, "bb_middle", i)
	row.BBLower = indicatorAt(t, "bb_lower", i)
	row.BBWidth = indicatorAt(t, "bb_width", i)
	row.ATR14 = indicatorAt(t, "atr_14", i)
	row.RealizedVolatility = indicatorAt(t, "realized_volatility", i)
	row.ADX14 = indicatorAt(t, "adx_14", i)
	row.SAR = indicatorAt(t, "sar", i)
	row.OBV = indicatorAt(t, "obv", i)
	row.VolumeMA20 = indicatorAt(t, "volume_ma_20", i)
	row.VolumeRatio = indicatorAt(t, "volume_ratio", i)

	return row
}

func toPriceTable(rows []entity.DailyPrice) *market.PriceTable {
	bars := make([]market.PriceBar, len(rows))
	for i, row := range rows {
		bars[i] = market.PriceBar{
			Date:     row.Date,
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			AdjClose: derefOrNaN(row.AdjClose),
			Volume:   row.Volume,
		}
	}
	table := market.NewPriceTable(bars)

	setColumn := func(name string, pick func(entity.DailyPrice) *float64) {
		values := make([]float64, len(rows))
		defined := false
		for i, row := range rows {
			values[i] = derefOrNaN(pick(row))
			if !math.IsNaN(values[i]) {
				defined = true
			}
		}
		if defined {
			table.SetIndicator(name, values)
		}
	}

	setColumn("sma_5", func(p entity.DailyPrice) *float64 { return p.SMA5 })
	setColumn("sma_25", func(p entity.DailyPrice) *float64 { return p.SMA25 })
	setColumn("sma_75", func(p entity.DailyPrice) *float64 { return p.SMA75 })
	setColumn("ema_12", func(p entity.DailyPrice) *float64 { return p.EMA12 })
	setColumn("ema_26", func(p entity.DailyPrice) *float64 { return p.EMA26 })
	setColumn("rsi_14", func(p entity.DailyPrice) *float64 { return p.RSI14 })
	setColumn("stoch_k", func(p entity.DailyPrice) *float64 { return p.StochK })
	setColumn("stoch_d", func(p entity.DailyPrice) *float64 { return p.StochD })
	setColumn("macd", func(p entity.DailyPrice) *float64 { return p.MACD })
	setColumn("macd_signal", func(p entity.DailyPrice) *float64 { return p.MACDSignal })
	setColumn("macd_histogram", func(p entity.DailyPrice) *float64 { return p.MACDHistogram })
	setColumn("bb_upper", func(p entity.DailyPrice) *float64 { return p.BBUpper })
	setColumn("bb_middle", func(p entity.DailyPrice) *float64 { return p.BBMiddle })
	setColumn("bb_lower", func(p entity.DailyPrice) *float64 { return p.BBLower })
	setColumn("bb_width", func(p entity.DailyPrice) *float64 { return p.BBWidth })
	setColumn("atr_14", func(p entity.DailyPrice) *float64 { return p.ATR14 })
	setColumn("realized_volatility", func(p entity.DailyPrice) *float64 { return p.RealizedVolatility })
	setColumn("adx_14", func(p entity.DailyPrice) *float64 { return p.ADX14 })
	setColumn("sar", func(p entity.DailyPrice) *float64 { return p.SAR })
	setColumn("obv", func(p entity.DailyPrice) *float64 { return p.OBV })
	setColumn("volume_ma_20", func(p entity.DailyPrice) *float64 { return p.VolumeMA20 })
	setColumn("volume_ratio", func(p entity.DailyPrice) *float64 { return p.VolumeRatio })

	return table
}

func indicatorAt(t *market.PriceTable, name string, i int) *float64 {
	col, ok := t.Column(name)
	if !ok || i >= len(col) {
		return nil
	}
	return nullableAt(col, i)
}

func nullableAt(col []float64, i int) *float64 {
	if col == nil || i >= len(col) || math.IsNaN(col[i]) {
		return nil
	}
	v := col[i]
	return &v
}

func derefOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func reverseRows(rows []entity.DailyPrice) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
