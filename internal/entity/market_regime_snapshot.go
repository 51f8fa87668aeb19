package entity

import (
	"time"

	"gorm.io/datatypes"
)

// MarketRegimeSnapshot is one persisted regime classification. Breadth holds
// the full BreadthSnapshot JSON including daily advance/decline counts.
type MarketRegimeSnapshot struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AnalysisDate time.Time `gorm:"not null;index" json:"analysis_date"`

	TrendType      string  `json:"trend_type"`
	TrendDirection string  `json:"trend_direction"`
	ADXValue       float64 `gorm:"column:adx_value" json:"adx_value"`

	VolatilityLevel  string  `json:"volatility_level"`
	ATRPercent       float64 `gorm:"column:atr_percent" json:"atr_percent"`
	BandWidthPercent float64 `json:"band_width_percent"`

	Sentiment       string `json:"sentiment"`
	EnvironmentCode string `gorm:"not null" json:"environment_code"`

	RiskScore   int    `gorm:"not null" json:"risk_score"`
	RiskLevel   string `gorm:"not null" json:"risk_level"`
	IsTradeable bool   `gorm:"not null" json:"is_tradeable"`

	Breadth datatypes.JSON `gorm:"type:jsonb" json:"breadth"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MarketRegimeSnapshot) TableName() string {
	return "market_regime_snapshots"
}
