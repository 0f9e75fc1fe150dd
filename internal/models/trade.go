package models

import (
	"time"
)

// Trade represents an immutable execution record against one order.
// Symbol and side are always inherited from the parent order.
type Trade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AccountID  uint      `gorm:"index;not null" json:"account_id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	Symbol     string    `gorm:"size:20;not null;index" json:"symbol"`
	Side       Side      `gorm:"size:10;not null" json:"side"`
	Quantity   float64   `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Price      float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	ExecutedAt time.Time `gorm:"index" json:"executed_at"`

	// Relations
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
}

// TableName specifies the table name for Trade model
func (Trade) TableName() string {
	return "trades"
}

// Notional returns the cash value exchanged by the trade
func (t *Trade) Notional() float64 {
	return t.Quantity * t.Price
}
