package entity

import "time"

type Ticker struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"unique;not null" json:"symbol"`
	Name      string    `json:"name"`
	Market    string    `json:"market"`
	IsIndex   bool      `gorm:"not null;default:false" json:"is_index"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Ticker) TableName() string {
	return "tickers"
}
