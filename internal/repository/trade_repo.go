package repository

import (
	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

// TradeRepository handles trade data access. Trades are append-only; there
// is no update path.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *TradeRepository) WithTx(tx *gorm.DB) *TradeRepository {
	return &TradeRepository{db: tx}
}

// Create creates a new trade
func (r *TradeRepository) Create(trade *models.Trade) error {
	return r.db.Create(trade).Error
}

// List retrieves all trades, newest first
func (r *TradeRepository) List() ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Order("executed_at DESC").Find(&trades)
	return trades, result.Error
}

// GetByAccountID retrieves all trades for an account, newest first
func (r *TradeRepository) GetByAccountID(accountID uint) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("account_id = ?", accountID).Order("executed_at DESC").Find(&trades)
	return trades, result.Error
}

// GetByOrderID retrieves all trades for an order
func (r *TradeRepository) GetByOrderID(orderID uint) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("order_id = ?", orderID).Order("executed_at ASC").Find(&trades)
	return trades, result.Error
}

// SumQuantityByOrderID returns the filled quantity accumulated on an order
func (r *TradeRepository) SumQuantityByOrderID(orderID uint) (float64, error) {
	var total struct {
		Sum float64
	}
	err := r.db.Model(&models.Trade{}).
		Select("COALESCE(SUM(quantity), 0) as sum").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	return total.Sum, err
}

// DeleteByAccountID deletes all trades for an account
func (r *TradeRepository) DeleteByAccountID(accountID uint) error {
	return r.db.Where("account_id = ?", accountID).Delete(&models.Trade{}).Error
}
