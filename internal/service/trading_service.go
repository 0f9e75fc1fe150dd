package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trading-ledger/internal/ledger"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrOrderCanceled        = errors.New("order is canceled")
	ErrOrderNotCancelable   = errors.New("order cannot be canceled")
	ErrOverfill             = errors.New("trade quantity exceeds remaining order size")
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidSide          = errors.New("invalid side")
)

// TradingService is the execution engine: the single entry point for
// turning order intent into ledger facts. Every mutation path runs inside
// one transaction holding a row lock on the account, so concurrent
// submissions against the same account serialize.
type TradingService struct {
	db           *gorm.DB
	accountRepo  *repository.AccountRepository
	positionRepo *repository.PositionRepository
	orderRepo    *repository.OrderRepository
	tradeRepo    *repository.TradeRepository
}

// NewTradingService creates a new TradingService
func NewTradingService(
	db *gorm.DB,
	accountRepo *repository.AccountRepository,
	positionRepo *repository.PositionRepository,
	orderRepo *repository.OrderRepository,
	tradeRepo *repository.TradeRepository,
) *TradingService {
	return &TradingService{
		db:           db,
		accountRepo:  accountRepo,
		positionRepo: positionRepo,
		orderRepo:    orderRepo,
		tradeRepo:    tradeRepo,
	}
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	AccountID uint        `json:"account_id" binding:"required"`
	Symbol    string      `json:"symbol" binding:"required"`
	Side      models.Side `json:"side" binding:"required"`
	Quantity  float64     `json:"quantity" binding:"required,gt=0"`
}

// CreateOrder places a new order in the open state. Sell orders require a
// sufficient position at submission time.
func (s *TradingService) CreateOrder(req *CreateOrderRequest) (*models.Order, error) {
	if !req.Side.Valid() {
		return nil, ErrInvalidSide
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	account, err := s.accountRepo.GetByID(req.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if req.Side == models.SideSell {
		position, err := s.positionRepo.GetByAccountIDAndSymbol(account.ID, req.Symbol)
		if err != nil {
			if errors.Is(err, repository.ErrPositionNotFound) {
				return nil, ErrInsufficientPosition
			}
			return nil, err
		}
		if position.Quantity < req.Quantity {
			return nil, ErrInsufficientPosition
		}
	}

	order := &models.Order{
		AccountID:     account.ID,
		ClientOrderID: uuid.New().String(),
		Symbol:        req.Symbol,
		Side:          req.Side,
		Quantity:      req.Quantity,
		Status:        models.OrderStatusOpen,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// ExecuteTrade validates a fill of quantity at price against the order,
// account, and position state, then commits the trade, the position and
// cash mutation, and the order status update as one atomic unit. On any
// failure nothing is applied.
func (s *TradingService) ExecuteTrade(orderID uint, quantity, price float64) (*models.Trade, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	var trade *models.Trade

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		order, err := orders.GetByIDWithTrades(orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.Canceled {
			return ErrOrderCanceled
		}

		if quantity > order.RemainingQuantity() {
			return ErrOverfill
		}

		account, err := s.accountRepo.WithTx(tx).GetByIDForUpdate(order.AccountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		if order.Side == models.SideBuy && account.Cash < quantity*price {
			return ErrInsufficientCash
		}

		positions := s.positionRepo.WithTx(tx)

		if order.Side == models.SideSell {
			position, err := positions.GetByAccountIDAndSymbol(account.ID, order.Symbol)
			if err != nil {
				if errors.Is(err, repository.ErrPositionNotFound) {
					return ErrInsufficientPosition
				}
				return err
			}
			if position.Quantity < quantity {
				return ErrInsufficientPosition
			}
		}

		position, err := positions.GetOrCreate(account.ID, order.Symbol)
		if err != nil {
			return err
		}

		// Symbol and side come from the order, never from the caller.
		trade = &models.Trade{
			AccountID:  account.ID,
			OrderID:    order.ID,
			Symbol:     order.Symbol,
			Side:       order.Side,
			Quantity:   quantity,
			Price:      price,
			ExecutedAt: time.Now(),
		}
		if err := s.tradeRepo.WithTx(tx).Create(trade); err != nil {
			return err
		}

		if err := ledger.ApplyTrade(account, position, order.Side, quantity, price); err != nil {
			if errors.Is(err, ledger.ErrInsufficientPosition) {
				return ErrInsufficientPosition
			}
			return err
		}

		if err := positions.Update(position); err != nil {
			return err
		}
		if err := s.accountRepo.WithTx(tx).Update(account); err != nil {
			return err
		}

		status := models.DeriveOrderStatus(order.Canceled, order.FilledQuantity()+quantity, order.Quantity)
		return orders.UpdateStatus(order.ID, status)
	})
	if err != nil {
		return nil, err
	}

	return trade, nil
}

// CancelOrder cancels an open or partially filled order. Filled and
// already-canceled orders are rejected; the order's trades stay queryable.
func (s *TradingService) CancelOrder(orderID uint) (*models.Order, error) {
	var canceled *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		order, err := orders.GetByIDWithTrades(orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.IsCancelable() {
			return ErrOrderNotCancelable
		}

		order.Canceled = true
		order.Status = models.DeriveOrderStatus(true, order.FilledQuantity(), order.Quantity)
		if err := orders.MarkCanceled(order.ID, order.Status); err != nil {
			return err
		}

		canceled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return canceled, nil
}

// GetOrder returns an order with its trades
func (s *TradingService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	trades, err := s.tradeRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	order.Trades = trades

	return order, nil
}

// ListOrders returns all orders, newest first
func (s *TradingService) ListOrders() ([]models.Order, error) {
	return s.orderRepo.List()
}

// ListTrades returns all trades, newest first
func (s *TradingService) ListTrades() ([]models.Trade, error) {
	return s.tradeRepo.List()
}
