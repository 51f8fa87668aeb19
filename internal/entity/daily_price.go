package entity

import "time"

// DailyPrice is one OHLCV bar plus the full set of computed indicator columns.
// Indicator fields are nullable because early rows of a series have no defined
// value for longer-lookback indicators.
type DailyPrice struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TickerID uint      `gorm:"not null;uniqueIndex:idx_daily_prices_ticker_date" json:"ticker_id"`
	Date     time.Time `gorm:"not null;uniqueIndex:idx_daily_prices_ticker_date" json:"date"`

	Open     float64  `gorm:"not null" json:"open"`
	High     float64  `gorm:"not null" json:"high"`
	Low      float64  `gorm:"not null" json:"low"`
	Close    float64  `gorm:"not null" json:"close"`
	AdjClose *float64 `gorm:"column:adj_close" json:"adj_close,omitempty"`
	Volume   float64  `gorm:"not null" json:"volume"`

	SMA5  *float64 `gorm:"column:sma_5" json:"sma_5,omitempty"`
	SMA25 *float64 `gorm:"column:sma_25" json:"sma_25,omitempty"`
	SMA75 *float64 `gorm:"column:sma_75" json:"sma_75,omitempty"`
	EMA12 *float64 `gorm:"column:ema_12" json:"ema_12,omitempty"`
	EMA26 *float64 `gorm:"column:ema_26" json:"ema_26,omitempty"`

	RSI14  *float64 `gorm:"column:rsi_14" json:"rsi_14,omitempty"`
	StochK *float64 `gorm:"column:stoch_k" json:"stoch_k,omitempty"`
	StochD *float64 `gorm:"column:stoch_d" json:"stoch_d,omitempty"`

	MACD          *float64 `gorm:"column:macd" json:"macd,omitempty"`
	MACDSignal    *float64 `gorm:"column:macd_signal" json:"macd_signal,omitempty"`
	MACDHistogram *float64 `gorm:"column:macd_histogram" json:"macd_histogram,omitempty"`

	BBUpper  *float64 `gorm:"column:bb_upper" json:"bb_upper,omitempty"`
	BBMiddle *float64 `gorm:"column:bb_middle" json:"bb_middle,omitempty"`
	BBLower  *float64 `gorm:"column:bb_lower" json:"bb_lower,omitempty"`
	BBWidth  *float64 `gorm:"column:bb_width" json:"bb_width,omitempty"`

	ATR14              *float64 `gorm:"column:atr_14" json:"atr_14,omitempty"`
	RealizedVolatility *float64 `gorm:"column:realized_volatility" json:"realized_volatility,omitempty"`

	ADX14 *float64 `gorm:"column:adx_14" json:"adx_14,omitempty"`
	SAR   *float64 `gorm:"column:sar" json:"sar,omitempty"`

	OBV         *float64 `gorm:"column:obv" json:"obv,omitempty"`
	VolumeMA20  *float64 `gorm:"column:volume_ma_20" json:"volume_ma_20,omitempty"`
	VolumeRatio *float64 `gorm:"column:volume_ratio" json:"volume_ratio,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyPrice) TableName() string {
	return "daily_prices"
}
