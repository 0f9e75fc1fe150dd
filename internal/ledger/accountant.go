// Package ledger holds the pure accounting rules that turn a fill into
// cash and position mutations. It never touches storage; callers load the
// rows, apply, and persist inside their own transaction.
package ledger

import (
	"errors"

	"github.com/trading-ledger/internal/models"
)

var (
	ErrInsufficientPosition = errors.New("insufficient position quantity")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
)

// ApplyTrade applies a fill of quantity at price to the account's cash and
// the position's quantity/average cost, in place.
//
// Buys blend the fill into the weighted-average cost and debit cash with no
// floor; the cash sufficiency check belongs to the caller, before commit.
// Sells require sufficient quantity, credit cash, and leave the average
// cost untouched unless the position empties, in which case the cost basis
// resets to zero. On failure neither struct is modified.
func ApplyTrade(account *models.Account, position *models.Position, side models.Side, quantity, price float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	if side == models.SideBuy {
		newQty := position.Quantity + quantity
		totalCost := position.Quantity*position.AvgPrice + quantity*price
		if newQty > 0 {
			position.AvgPrice = totalCost / newQty
		} else {
			position.AvgPrice = 0
		}
		position.Quantity = newQty
		account.Cash -= quantity * price
		return nil
	}

	if position.Quantity < quantity {
		return ErrInsufficientPosition
	}
	position.Quantity -= quantity
	account.Cash += quantity * price
	if position.Quantity == 0 {
		position.AvgPrice = 0
	}
	return nil
}

// ApplyPortfolioFill applies the same accounting to a user portfolio. Rule
// executions are funded implicitly, so there is no cash side.
func ApplyPortfolioFill(portfolio *models.Portfolio, action models.Side, quantity, price float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	if action == models.SideBuy {
		newQty := portfolio.Quantity + quantity
		totalCost := portfolio.Quantity*portfolio.AvgPrice + quantity*price
		if newQty > 0 {
			portfolio.AvgPrice = totalCost / newQty
		} else {
			portfolio.AvgPrice = 0
		}
		portfolio.Quantity = newQty
		return nil
	}

	if portfolio.Quantity < quantity {
		return ErrInsufficientPosition
	}
	portfolio.Quantity -= quantity
	if portfolio.Quantity == 0 {
		portfolio.AvgPrice = 0
	}
	return nil
}
