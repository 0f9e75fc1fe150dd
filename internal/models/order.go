package models

import (
	"time"

	"gorm.io/gorm"
)

// Side represents the direction of an order, trade, or rule action
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is one of the known values
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
)

// Order represents a standing request to buy or sell a quantity of a
// symbol, filled incrementally by trades
type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AccountID     uint           `gorm:"index;not null" json:"account_id"`
	ClientOrderID string         `gorm:"size:50;index" json:"client_order_id"`
	Symbol        string         `gorm:"size:20;not null;index" json:"symbol"`
	Side          Side           `gorm:"size:10;not null;index" json:"side"`
	Quantity      float64        `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Status        OrderStatus    `gorm:"size:20;not null;default:'open';index" json:"status"`
	Canceled      bool           `gorm:"default:false" json:"canceled"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
	Trades  []Trade `gorm:"foreignKey:OrderID" json:"trades,omitempty"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// FilledQuantity returns the sum of trade quantities accumulated on the order
func (o *Order) FilledQuantity() float64 {
	var filled float64
	for _, t := range o.Trades {
		filled += t.Quantity
	}
	return filled
}

// RemainingQuantity returns the quantity the order can still accept
func (o *Order) RemainingQuantity() float64 {
	return o.Quantity - o.FilledQuantity()
}

// IsCancelable reports whether the order may still be canceled
func (o *Order) IsCancelable() bool {
	return o.Status != OrderStatusFilled && o.Status != OrderStatusCanceled
}

// DeriveOrderStatus computes the order status from the canceled flag and
// the accumulated fill. Cancellation wins over any fill level; a canceled
// order keeps its trades queryable but reports canceled.
func DeriveOrderStatus(canceled bool, filledQty, requestedQty float64) OrderStatus {
	switch {
	case canceled:
		return OrderStatusCanceled
	case filledQty == 0:
		return OrderStatusOpen
	case filledQty < requestedQty:
		return OrderStatusPartiallyFilled
	default:
		return OrderStatusFilled
	}
}
