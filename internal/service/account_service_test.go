package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/service"
)

func newAccountService(f *tradingFixture, startingCash float64) *service.AccountService {
	return service.NewAccountService(
		f.db,
		f.accountRepo,
		f.positionRepo,
		f.orderRepo,
		f.tradeRepo,
		startingCash,
	)
}

func TestCreateAccountDefaultsStartingCash(t *testing.T) {
	f := newTradingFixture(t)
	svc := newAccountService(f, 100000)

	account, err := svc.CreateAccount(&service.CreateAccountRequest{Name: "alice"})
	require.NoError(t, err)
	assert.InDelta(t, 100000.0, account.Cash, 1e-9)

	cash := 500.0
	account, err = svc.CreateAccount(&service.CreateAccountRequest{Name: "bob", Cash: &cash})
	require.NoError(t, err)
	assert.InDelta(t, 500.0, account.Cash, 1e-9)

	_, err = svc.CreateAccount(&service.CreateAccountRequest{Name: "alice"})
	assert.ErrorIs(t, err, service.ErrAccountNameTaken)
}

func TestGetOrCreateAccount(t *testing.T) {
	f := newTradingFixture(t)
	svc := newAccountService(f, 100000)

	first, err := svc.GetOrCreateAccount("alice")
	require.NoError(t, err)

	second, err := svc.GetOrCreateAccount("alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestDeleteAccountCascades(t *testing.T) {
	f := newTradingFixture(t)
	svc := newAccountService(f, 100000)

	account := f.createAccount(t, "alice", 10000)

	order, err := f.svc.CreateOrder(&service.CreateOrderRequest{
		AccountID: account.ID,
		Symbol:    "AAPL",
		Side:      models.SideBuy,
		Quantity:  10,
	})
	require.NoError(t, err)
	_, err = f.svc.ExecuteTrade(order.ID, 5, 20)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(account.ID))

	_, err = svc.GetAccount(account.ID)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)

	positions, err := f.positionRepo.GetByAccountID(account.ID)
	require.NoError(t, err)
	assert.Empty(t, positions)

	orders, err := f.orderRepo.GetByAccountID(account.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	trades, err := f.tradeRepo.GetByAccountID(account.ID)
	require.NoError(t, err)
	assert.Empty(t, trades)
}
