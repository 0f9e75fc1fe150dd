package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tradingFixture struct {
	db           *gorm.DB
	accountRepo  *repository.AccountRepository
	positionRepo *repository.PositionRepository
	orderRepo    *repository.OrderRepository
	tradeRepo    *repository.TradeRepository
	svc          *service.TradingService
}

func newTradingFixture(t *testing.T) *tradingFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory SQLite gives each connection its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Position{},
		&models.Order{},
		&models.Trade{},
	))

	f := &tradingFixture{
		db:           db,
		accountRepo:  repository.NewAccountRepository(db),
		positionRepo: repository.NewPositionRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		tradeRepo:    repository.NewTradeRepository(db),
	}
	f.svc = service.NewTradingService(db, f.accountRepo, f.positionRepo, f.orderRepo, f.tradeRepo)
	return f
}

func (f *tradingFixture) createAccount(t *testing.T, name string, cash float64) *models.Account {
	t.Helper()
	account := &models.Account{Name: name, Cash: cash}
	require.NoError(t, f.accountRepo.Create(account))
	return account
}

func (f *tradingFixture) seedPosition(t *testing.T, accountID uint, symbol string, qty, avgPrice float64) {
	t.Helper()
	require.NoError(t, f.positionRepo.Create(&models.Position{
		AccountID: accountID,
		Symbol:    symbol,
		Quantity:  qty,
		AvgPrice:  avgPrice,
	}))
}

func TestCreateOrder(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 1000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusOpen, order.Status)
	assert.Equal(t, 10.0, order.Quantity)
	assert.NotEmpty(t, order.ClientOrderID)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 1000)

	_, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      "hold",
		Quantity:  10,
	})
	assert.ErrorIs(t, err, service.ErrInvalidSide)

	_, err = f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  -5,
	})
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: 9999,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestCreateSellOrderRequiresPosition(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 1000)

	_, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideSell,
		Quantity:  10,
	})
	assert.ErrorIs(t, err, service.ErrInsufficientPosition)

	f.seedPosition(t, account.ID, "AAPL", 10, 25)
	_, err = f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideSell,
		Quantity:  10,
	})
	assert.NoError(t, err)
}

func TestExecuteTradeBuyFlow(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 1000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	// First fill: 5 @ 20
	trade, err := f.svc.ExecuteTrade(order.ID, 5, 20)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", trade.Symbol)
	assert.Equal(t, models.SideBuy, trade.Side)

	got, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 900.0, got.Cash, 1e-9)

	position, err := f.positionRepo.GetByAccountIDAndSymbol(account.ID, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, position.Quantity, 1e-9)
	assert.InDelta(t, 20.0, position.AvgPrice, 1e-9)

	updated, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPartiallyFilled, updated.Status)

	// Second fill: 5 @ 30 blends the average to 25
	_, err = f.svc.ExecuteTrade(order.ID, 5, 30)
	require.NoError(t, err)

	got, err = f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 750.0, got.Cash, 1e-9)

	position, err = f.positionRepo.GetByAccountIDAndSymbol(account.ID, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, position.Quantity, 1e-9)
	assert.InDelta(t, 25.0, position.AvgPrice, 1e-9)

	updated, err = f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFilled, updated.Status)
}

func TestExecuteTradeSellResetsAverage(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 750)
	f.seedPosition(t, account.ID, "AAPL", 10, 25)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideSell,
		Quantity:  10,
	})
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 10, 40)
	require.NoError(t, err)

	got, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1150.0, got.Cash, 1e-9)

	position, err := f.positionRepo.GetByAccountIDAndSymbol(account.ID, "AAPL")
	require.NoError(t, err)
	assert.Zero(t, position.Quantity)
	assert.Zero(t, position.AvgPrice)

	updated, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFilled, updated.Status)
}

func TestExecuteTradePartialSellKeepsAverage(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 0)
	f.seedPosition(t, account.ID, "AAPL", 10, 25)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideSell,
		Quantity:  4,
	})
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 4, 40)
	require.NoError(t, err)

	position, err := f.positionRepo.GetByAccountIDAndSymbol(account.ID, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 6.0, position.Quantity, 1e-9)
	assert.InDelta(t, 25.0, position.AvgPrice, 1e-9)
}

func TestExecuteTradeInsufficientCash(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 50)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 10, 20)
	assert.ErrorIs(t, err, service.ErrInsufficientCash)

	// Nothing changed
	got, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got.Cash, 1e-9)

	updated, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOpen, updated.Status)
	assert.Empty(t, updated.Trades)
}

func TestExecuteTradeInsufficientPosition(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 1000)
	f.seedPosition(t, account.ID, "AAPL", 10, 25)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideSell,
		Quantity:  8,
	})
	require.NoError(t, err)

	// Shrink the position after order creation
	position, err := f.positionRepo.GetByAccountIDAndSymbol(account.ID, "AAPL")
	require.NoError(t, err)
	position.Quantity = 3
	require.NoError(t, f.positionRepo.Update(position))

	_, err = f.svc.ExecuteTrade(order.ID, 8, 40)
	assert.ErrorIs(t, err, service.ErrInsufficientPosition)
}

func TestExecuteTradeOverfill(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 10000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 8, 20)
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 5, 20)
	assert.ErrorIs(t, err, service.ErrOverfill)

	// The remaining 2 still executes
	_, err = f.svc.ExecuteTrade(order.ID, 2, 20)
	assert.NoError(t, err)

	updated, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFilled, updated.Status)
}

func TestExecuteTradeValidation(t *testing.T) {
	f := newTradingFixture(t)

	_, err := f.svc.ExecuteTrade(1, 0, 20)
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = f.svc.ExecuteTrade(1, 5, -1)
	assert.ErrorIs(t, err, service.ErrInvalidPrice)

	_, err = f.svc.ExecuteTrade(9999, 5, 20)
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestCancelOrder(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 10000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	canceled, err := f.svc.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, canceled.Status)

	// No further fills on a canceled order
	_, err = f.svc.ExecuteTrade(order.ID, 5, 20)
	assert.ErrorIs(t, err, service.ErrOrderCanceled)

	// Cancel is not idempotent
	_, err = f.svc.CancelOrder(order.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotCancelable)
}

func TestCancelPartiallyFilledOrderKeepsTrades(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 10000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 4, 20)
	require.NoError(t, err)

	canceled, err := f.svc.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, canceled.Status)

	updated, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Trades, 1)

	// The executed portion stays on the books
	got, err := f.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 9920.0, got.Cash, 1e-9)
}

func TestCancelFilledOrderRejected(t *testing.T) {
	f := newTradingFixture(t)
	account := f.createAccount(t, "alice", 10000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)

	_, err = f.svc.ExecuteTrade(order.ID, 10, 20)
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(order.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotCancelable)
}
