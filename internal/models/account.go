package models

import (
	"time"

	"gorm.io/gorm"
)

// Account represents a ledger account holding cash and positions
type Account struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Cash      float64        `gorm:"type:decimal(20,8);default:0" json:"cash"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Positions []Position `gorm:"foreignKey:AccountID" json:"positions,omitempty"`
	Orders    []Order    `gorm:"foreignKey:AccountID" json:"orders,omitempty"`
	Trades    []Trade    `gorm:"foreignKey:AccountID" json:"trades,omitempty"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}
