package models

import (
	"time"

	"gorm.io/gorm"
)

// RuleCondition is the comparison operator of a price-threshold rule
type RuleCondition string

const (
	ConditionBelow        RuleCondition = "<"
	ConditionAbove        RuleCondition = ">"
	ConditionBelowOrEqual RuleCondition = "<="
	ConditionAboveOrEqual RuleCondition = ">="
)

// Valid reports whether the condition is a known comparator
func (c RuleCondition) Valid() bool {
	switch c {
	case ConditionBelow, ConditionAbove, ConditionBelowOrEqual, ConditionAboveOrEqual:
		return true
	}
	return false
}

// Strategy is a named set of price-threshold rules owned by a user
type Strategy struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User  User           `gorm:"foreignKey:UserID" json:"-"`
	Rules []StrategyRule `gorm:"foreignKey:StrategyID" json:"rules,omitempty"`
}

// TableName specifies the table name for Strategy model
func (Strategy) TableName() string {
	return "strategies"
}

// StrategyRule is a price-threshold condition that synthesizes a portfolio
// fill when it holds. Rules carry no fired state between cycles.
type StrategyRule struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StrategyID  uint           `gorm:"index;not null" json:"strategy_id"`
	Symbol      string         `gorm:"size:20;not null;index" json:"symbol"`
	Condition   RuleCondition  `gorm:"size:2;not null" json:"condition"`
	TargetPrice float64        `gorm:"type:decimal(20,8);not null" json:"target_price"`
	Action      Side           `gorm:"size:10;not null" json:"action"`
	Quantity    float64        `gorm:"type:decimal(20,8);not null" json:"quantity"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Strategy Strategy `gorm:"foreignKey:StrategyID" json:"-"`
}

// TableName specifies the table name for StrategyRule model
func (StrategyRule) TableName() string {
	return "strategy_rules"
}

// ConditionMet evaluates the rule's comparator against a market price
func (r *StrategyRule) ConditionMet(price float64) bool {
	switch r.Condition {
	case ConditionBelow:
		return price < r.TargetPrice
	case ConditionAbove:
		return price > r.TargetPrice
	case ConditionBelowOrEqual:
		return price <= r.TargetPrice
	case ConditionAboveOrEqual:
		return price >= r.TargetPrice
	default:
		return false
	}
}
