package models

import (
	"time"

	"gorm.io/gorm"
)

// Position represents the quantity and average cost basis of one symbol
// held by one account. Quantity never goes negative; when it reaches
// exactly zero the average price resets to zero.
type Position struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AccountID uint           `gorm:"uniqueIndex:idx_positions_account_symbol;not null" json:"account_id"`
	Symbol    string         `gorm:"uniqueIndex:idx_positions_account_symbol;size:20;not null" json:"symbol"`
	Quantity  float64        `gorm:"type:decimal(20,8);default:0" json:"quantity"`
	AvgPrice  float64        `gorm:"type:decimal(20,8);default:0" json:"avg_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}

// TableName specifies the table name for Position model
func (Position) TableName() string {
	return "positions"
}

// MarketValue returns the position value at the given price
func (p *Position) MarketValue(price float64) float64 {
	return p.Quantity * price
}

// UnrealizedPnL returns the profit or loss against the cost basis at the
// given price
func (p *Position) UnrealizedPnL(price float64) float64 {
	return (price - p.AvgPrice) * p.Quantity
}
