package service

import (
	"errors"
	"fmt"

	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAccountNameTaken = errors.New("account name already taken")
)

// AccountService handles account lifecycle operations
type AccountService struct {
	db           *gorm.DB
	accountRepo  *repository.AccountRepository
	positionRepo *repository.PositionRepository
	orderRepo    *repository.OrderRepository
	tradeRepo    *repository.TradeRepository
	startingCash float64
}

// NewAccountService creates a new AccountService
func NewAccountService(
	db *gorm.DB,
	accountRepo *repository.AccountRepository,
	positionRepo *repository.PositionRepository,
	orderRepo *repository.OrderRepository,
	tradeRepo *repository.TradeRepository,
	startingCash float64,
) *AccountService {
	return &AccountService{
		db:           db,
		accountRepo:  accountRepo,
		positionRepo: positionRepo,
		orderRepo:    orderRepo,
		tradeRepo:    tradeRepo,
		startingCash: startingCash,
	}
}

// CreateAccountRequest represents a request to create an account
type CreateAccountRequest struct {
	Name string   `json:"name" binding:"required,min=1,max=100"`
	Cash *float64 `json:"cash"`
}

// CreateAccount creates a new account. When no cash is supplied the
// configured starting balance applies.
func (s *AccountService) CreateAccount(req *CreateAccountRequest) (*models.Account, error) {
	if _, err := s.accountRepo.GetByName(req.Name); err == nil {
		return nil, ErrAccountNameTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	cash := s.startingCash
	if req.Cash != nil {
		cash = *req.Cash
	}

	account := &models.Account{
		Name: req.Name,
		Cash: cash,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetOrCreateAccount returns the account with the given name, creating it
// with the starting balance on first reference
func (s *AccountService) GetOrCreateAccount(name string) (*models.Account, error) {
	account, err := s.accountRepo.GetByName(name)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}
	return s.CreateAccount(&CreateAccountRequest{Name: name})
}

// GetAccount returns an account by ID
func (s *AccountService) GetAccount(id uint) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts
func (s *AccountService) ListAccounts() ([]models.Account, error) {
	return s.accountRepo.List()
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Name string  `json:"name" binding:"required,min=1,max=100"`
	Cash float64 `json:"cash"`
}

// UpdateAccount updates an account's name and cash balance
func (s *AccountService) UpdateAccount(id uint, req *UpdateAccountRequest) (*models.Account, error) {
	account, err := s.GetAccount(id)
	if err != nil {
		return nil, err
	}

	account.Name = req.Name
	account.Cash = req.Cash
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteAccount deletes an account, cascading to its positions, orders,
// and trades in one transaction
func (s *AccountService) DeleteAccount(id uint) error {
	if _, err := s.GetAccount(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.tradeRepo.WithTx(tx).DeleteByAccountID(id); err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).DeleteByAccountID(id); err != nil {
			return err
		}
		if err := s.positionRepo.WithTx(tx).DeleteByAccountID(id); err != nil {
			return err
		}
		return s.accountRepo.WithTx(tx).Delete(id)
	})
}

// GetPositions returns all positions of an account
func (s *AccountService) GetPositions(accountID uint) ([]models.Position, error) {
	if _, err := s.GetAccount(accountID); err != nil {
		return nil, err
	}
	return s.positionRepo.GetByAccountID(accountID)
}

// GetOrders returns all orders of an account, newest first
func (s *AccountService) GetOrders(accountID uint) ([]models.Order, error) {
	if _, err := s.GetAccount(accountID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByAccountID(accountID)
}

// GetTrades returns all trades of an account, newest first
func (s *AccountService) GetTrades(accountID uint) ([]models.Trade, error) {
	if _, err := s.GetAccount(accountID); err != nil {
		return nil, err
	}
	return s.tradeRepo.GetByAccountID(accountID)
}
