package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trading-ledger/internal/models"
)

func TestApplyTradeBuyBlendsAverageCost(t *testing.T) {
	account := &models.Account{Cash: 1000}
	position := &models.Position{}

	err := ApplyTrade(account, position, models.SideBuy, 5, 20)
	require.NoError(t, err)
	assert.Equal(t, 900.0, account.Cash)
	assert.Equal(t, 5.0, position.Quantity)
	assert.Equal(t, 20.0, position.AvgPrice)

	err = ApplyTrade(account, position, models.SideBuy, 5, 30)
	require.NoError(t, err)
	assert.Equal(t, 750.0, account.Cash)
	assert.Equal(t, 10.0, position.Quantity)
	assert.Equal(t, 25.0, position.AvgPrice)
}

func TestApplyTradeBuyHasNoCashFloor(t *testing.T) {
	// The cash sufficiency check belongs to the execution engine; the
	// accountant itself lets the balance go negative.
	account := &models.Account{Cash: 10}
	position := &models.Position{}

	err := ApplyTrade(account, position, models.SideBuy, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, -190.0, account.Cash)
}

func TestApplyTradeSellCreditsCashKeepsAvgPrice(t *testing.T) {
	account := &models.Account{Cash: 0}
	position := &models.Position{Quantity: 10, AvgPrice: 25}

	err := ApplyTrade(account, position, models.SideSell, 4, 40)
	require.NoError(t, err)
	assert.Equal(t, 160.0, account.Cash)
	assert.Equal(t, 6.0, position.Quantity)
	assert.Equal(t, 25.0, position.AvgPrice)
}

func TestApplyTradeSellToZeroResetsCostBasis(t *testing.T) {
	account := &models.Account{Cash: 0}
	position := &models.Position{Quantity: 10, AvgPrice: 25}

	err := ApplyTrade(account, position, models.SideSell, 10, 40)
	require.NoError(t, err)
	assert.Equal(t, 400.0, account.Cash)
	assert.Equal(t, 0.0, position.Quantity)
	assert.Equal(t, 0.0, position.AvgPrice)
}

func TestApplyTradeSellInsufficientLeavesStateUntouched(t *testing.T) {
	account := &models.Account{Cash: 50}
	position := &models.Position{Quantity: 3, AvgPrice: 12}

	err := ApplyTrade(account, position, models.SideSell, 5, 40)
	assert.ErrorIs(t, err, ErrInsufficientPosition)
	assert.Equal(t, 50.0, account.Cash)
	assert.Equal(t, 3.0, position.Quantity)
	assert.Equal(t, 12.0, position.AvgPrice)
}

func TestApplyTradeRejectsNonPositiveInputs(t *testing.T) {
	account := &models.Account{}
	position := &models.Position{}

	assert.ErrorIs(t, ApplyTrade(account, position, models.SideBuy, 0, 10), ErrInvalidQuantity)
	assert.ErrorIs(t, ApplyTrade(account, position, models.SideBuy, -1, 10), ErrInvalidQuantity)
	assert.ErrorIs(t, ApplyTrade(account, position, models.SideBuy, 1, 0), ErrInvalidPrice)
}

func TestApplyPortfolioFill(t *testing.T) {
	portfolio := &models.Portfolio{Quantity: 10, AvgPrice: 50}

	err := ApplyPortfolioFill(portfolio, models.SideBuy, 2, 45)
	require.NoError(t, err)
	assert.Equal(t, 12.0, portfolio.Quantity)
	assert.InDelta(t, (10*50.0+2*45.0)/12.0, portfolio.AvgPrice, 1e-9)

	err = ApplyPortfolioFill(portfolio, models.SideSell, 12, 60)
	require.NoError(t, err)
	assert.Equal(t, 0.0, portfolio.Quantity)
	assert.Equal(t, 0.0, portfolio.AvgPrice)

	err = ApplyPortfolioFill(portfolio, models.SideSell, 1, 60)
	assert.ErrorIs(t, err, ErrInsufficientPosition)
}
