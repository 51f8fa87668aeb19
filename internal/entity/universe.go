package entity

import "time"

// Universe is a named basket of tickers used for breadth aggregation.
type Universe struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"unique;not null" json:"name"`
	Description string           `json:"description"`
	IsActive    bool             `gorm:"not null;default:true" json:"is_active"`
	Symbols     []UniverseSymbol `gorm:"foreignKey:UniverseID" json:"symbols"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Universe) TableName() string {
	return "universes"
}

type UniverseSymbol struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UniverseID uint      `gorm:"not null;uniqueIndex:idx_universe_ticker" json:"universe_id"`
	TickerID   uint      `gorm:"not null;uniqueIndex:idx_universe_ticker" json:"ticker_id"`
	Ticker     Ticker    `gorm:"foreignKey:TickerID" json:"ticker"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UniverseSymbol) TableName() string {
	return "universe_symbols"
}
