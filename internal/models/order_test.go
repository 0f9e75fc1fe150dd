package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name      string
		canceled  bool
		filled    float64
		requested float64
		want      OrderStatus
	}{
		{"no fills", false, 0, 10, OrderStatusOpen},
		{"partial fill", false, 5, 10, OrderStatusPartiallyFilled},
		{"full fill", false, 10, 10, OrderStatusFilled},
		{"canceled unfilled", true, 0, 10, OrderStatusCanceled},
		{"canceled wins over partial fill", true, 5, 10, OrderStatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.canceled, tt.filled, tt.requested))
		})
	}
}

func TestOrderFilledQuantity(t *testing.T) {
	order := &Order{
		Quantity: 10,
		Trades: []Trade{
			{Quantity: 3},
			{Quantity: 4},
		},
	}

	assert.Equal(t, 7.0, order.FilledQuantity())
	assert.Equal(t, 3.0, order.RemainingQuantity())
}

func TestOrderIsCancelable(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusOpen}).IsCancelable())
	assert.True(t, (&Order{Status: OrderStatusPartiallyFilled}).IsCancelable())
	assert.False(t, (&Order{Status: OrderStatusFilled}).IsCancelable())
	assert.False(t, (&Order{Status: OrderStatusCanceled}).IsCancelable())
}

func TestRuleConditionMet(t *testing.T) {
	rule := &StrategyRule{Condition: ConditionBelow, TargetPrice: 50}
	assert.True(t, rule.ConditionMet(45))
	assert.False(t, rule.ConditionMet(55))
	assert.False(t, rule.ConditionMet(50))

	rule.Condition = ConditionAboveOrEqual
	assert.True(t, rule.ConditionMet(50))
	assert.True(t, rule.ConditionMet(51))
	assert.False(t, rule.ConditionMet(49))
}
