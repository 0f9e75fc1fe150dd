package models

import (
	"time"
)

// ExecutionLog is the append-only audit record of a rule firing
type ExecutionLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StrategyID uint      `gorm:"index;not null" json:"strategy_id"`
	RuleID     uint      `gorm:"index;not null" json:"rule_id"`
	Symbol     string    `gorm:"size:20;not null;index" json:"symbol"`
	Price      float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	Quantity   float64   `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Action     Side      `gorm:"size:10;not null" json:"action"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`

	// Relations
	Strategy Strategy     `gorm:"foreignKey:StrategyID" json:"-"`
	Rule     StrategyRule `gorm:"foreignKey:RuleID" json:"-"`
}

// TableName specifies the table name for ExecutionLog model
func (ExecutionLog) TableName() string {
	return "execution_logs"
}
