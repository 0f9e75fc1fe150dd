package repository

import (
	"errors"

	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
)

// PortfolioRepository handles portfolio data access
type PortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PortfolioRepository) WithTx(tx *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: tx}
}

// Create creates a new portfolio
func (r *PortfolioRepository) Create(portfolio *models.Portfolio) error {
	return r.db.Create(portfolio).Error
}

// GetByID retrieves a portfolio by ID
func (r *PortfolioRepository) GetByID(id uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	result := r.db.First(&portfolio, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, result.Error
	}
	return &portfolio, nil
}

// GetByUserID retrieves all portfolios for a user
func (r *PortfolioRepository) GetByUserID(userID uint) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	result := r.db.Where("user_id = ?", userID).Find(&portfolios)
	return portfolios, result.Error
}

// GetByUserIDAndAssetForUpdate retrieves the portfolio for a (user, asset)
// pair holding a row lock, so rule firings and live submissions touching
// the same portfolio serialize
func (r *PortfolioRepository) GetByUserIDAndAssetForUpdate(userID uint, asset string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	result := lockForUpdate(r.db).
		Where("user_id = ? AND asset = ?", userID, asset).
		First(&portfolio)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, result.Error
	}
	return &portfolio, nil
}

// Update updates a portfolio
func (r *PortfolioRepository) Update(portfolio *models.Portfolio) error {
	return r.db.Save(portfolio).Error
}

// Delete soft deletes a portfolio
func (r *PortfolioRepository) Delete(id uint) error {
	return r.db.Delete(&models.Portfolio{}, id).Error
}

// CreateOrder appends a portfolio order record
func (r *PortfolioRepository) CreateOrder(order *models.PortfolioOrder) error {
	return r.db.Create(order).Error
}

// GetOrdersByPortfolioID retrieves all fills recorded against a portfolio,
// newest first
func (r *PortfolioRepository) GetOrdersByPortfolioID(portfolioID uint) ([]models.PortfolioOrder, error) {
	var orders []models.PortfolioOrder
	result := r.db.Where("portfolio_id = ?", portfolioID).Order("timestamp DESC").Find(&orders)
	return orders, result.Error
}
