package models

import (
	"time"

	"gorm.io/gorm"
)

// Portfolio represents one asset holding owned by a user, mutated by the
// rule evaluation loop with the same weighted-average accounting as
// account positions
type Portfolio struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex:idx_portfolios_user_asset;not null" json:"user_id"`
	Asset     string         `gorm:"uniqueIndex:idx_portfolios_user_asset;size:20;not null" json:"asset"`
	Quantity  float64        `gorm:"type:decimal(20,8);default:0" json:"quantity"`
	AvgPrice  float64        `gorm:"type:decimal(20,8);default:0" json:"avg_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User   User             `gorm:"foreignKey:UserID" json:"-"`
	Orders []PortfolioOrder `gorm:"foreignKey:PortfolioID" json:"orders,omitempty"`
}

// TableName specifies the table name for Portfolio model
func (Portfolio) TableName() string {
	return "portfolios"
}

// PortfolioOrder is the append-only record of a synthetic fill applied to
// a portfolio by a fired rule
type PortfolioOrder struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PortfolioID uint      `gorm:"index;not null" json:"portfolio_id"`
	Asset       string    `gorm:"size:20;not null;index" json:"asset"`
	Quantity    float64   `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Price       float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	Type        Side      `gorm:"size:10;not null" json:"type"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`

	// Relations
	Portfolio Portfolio `gorm:"foreignKey:PortfolioID" json:"-"`
}

// TableName specifies the table name for PortfolioOrder model
func (PortfolioOrder) TableName() string {
	return "portfolio_orders"
}
