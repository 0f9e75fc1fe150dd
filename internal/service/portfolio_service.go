package service

import (
	"errors"

	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrNotPortfolioOwner = errors.New("portfolio belongs to another user")
	ErrPortfolioExists   = errors.New("portfolio for this asset already exists")
	ErrPortfolioNotEmpty = errors.New("portfolio still holds a position")
)

// PortfolioService manages per-user asset holdings and their synthetic
// order history
type PortfolioService struct {
	portfolioRepo    *repository.PortfolioRepository
	notificationRepo *repository.NotificationRepository
	executionLogRepo *repository.ExecutionLogRepository
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	notificationRepo *repository.NotificationRepository,
	executionLogRepo *repository.ExecutionLogRepository,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:    portfolioRepo,
		notificationRepo: notificationRepo,
		executionLogRepo: executionLogRepo,
	}
}

// CreatePortfolioRequest represents a request to create a portfolio entry
type CreatePortfolioRequest struct {
	Asset    string  `json:"asset" binding:"required,min=1,max=20"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	AvgPrice float64 `json:"avg_price" binding:"gte=0"`
}

// CreatePortfolio creates a holding for the user. An initial quantity and
// average price may be seeded so rules can sell existing holdings.
func (s *PortfolioService) CreatePortfolio(userID uint, req *CreatePortfolioRequest) (*models.Portfolio, error) {
	portfolio := &models.Portfolio{
		UserID:   userID,
		Asset:    req.Asset,
		Quantity: req.Quantity,
		AvgPrice: req.AvgPrice,
	}
	if err := s.portfolioRepo.Create(portfolio); err != nil {
		return nil, ErrPortfolioExists
	}
	return portfolio, nil
}

// GetPortfolio returns a holding by ID, enforcing ownership
func (s *PortfolioService) GetPortfolio(userID, portfolioID uint) (*models.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByID(portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrPortfolioNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, err
	}
	if portfolio.UserID != userID {
		return nil, ErrNotPortfolioOwner
	}
	return portfolio, nil
}

// ListPortfolios returns all holdings of a user
func (s *PortfolioService) ListPortfolios(userID uint) ([]models.Portfolio, error) {
	return s.portfolioRepo.GetByUserID(userID)
}

// DeletePortfolio removes an empty holding
func (s *PortfolioService) DeletePortfolio(userID, portfolioID uint) error {
	portfolio, err := s.GetPortfolio(userID, portfolioID)
	if err != nil {
		return err
	}
	if portfolio.Quantity != 0 {
		return ErrPortfolioNotEmpty
	}
	return s.portfolioRepo.Delete(portfolioID)
}

// GetPortfolioOrders returns the synthetic fills applied to a holding
func (s *PortfolioService) GetPortfolioOrders(userID, portfolioID uint) ([]models.PortfolioOrder, error) {
	if _, err := s.GetPortfolio(userID, portfolioID); err != nil {
		return nil, err
	}
	return s.portfolioRepo.GetOrdersByPortfolioID(portfolioID)
}

// ListNotifications returns a user's notifications, newest first
func (s *PortfolioService) ListNotifications(userID uint) ([]models.Notification, error) {
	return s.notificationRepo.GetByUserID(userID)
}

// ListAuditLog returns a user's audit entries, newest first
func (s *PortfolioService) ListAuditLog(userID uint) ([]models.AuditLog, error) {
	return s.notificationRepo.GetAuditByUserID(userID)
}

// ListExecutionLogs returns recent rule execution attempts
func (s *PortfolioService) ListExecutionLogs(limit int) ([]models.ExecutionLog, error) {
	return s.executionLogRepo.List(limit)
}

// GetExecutionLogsByStrategy returns execution attempts for one strategy
func (s *PortfolioService) GetExecutionLogsByStrategy(strategyID uint) ([]models.ExecutionLog, error) {
	return s.executionLogRepo.GetByStrategyID(strategyID)
}
