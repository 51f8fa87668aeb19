package entity

import "time"

// EarningsSchedule is one announced or estimated earnings date for a ticker.
type EarningsSchedule struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TickerID         uint      `gorm:"not null;uniqueIndex:idx_earnings_ticker_date" json:"ticker_id"`
	AnnouncementDate time.Time `gorm:"not null;uniqueIndex:idx_earnings_ticker_date" json:"announcement_date"`
	FiscalQuarter    string    `json:"fiscal_quarter"`
	FiscalYear       int       `json:"fiscal_year"`
	IsConfirmed      bool      `gorm:"not null;default:false" json:"is_confirmed"`
	RetrievedAt      time.Time `json:"retrieved_at"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EarningsSchedule) TableName() string {
	return "earnings_schedules"
}

// DividendSchedule is one ex-dividend date for a ticker. DividendRate is the
// forecast amount per share and may be unknown.
type DividendSchedule struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TickerID       uint      `gorm:"not null;uniqueIndex:idx_dividends_ticker_date" json:"ticker_id"`
	ExDividendDate time.Time `gorm:"not null;uniqueIndex:idx_dividends_ticker_date" json:"ex_dividend_date"`
	DividendRate   *float64  `json:"dividend_rate,omitempty"`
	RetrievedAt    time.Time `json:"retrieved_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DividendSchedule) TableName() string {
	return "dividend_schedules"
}
