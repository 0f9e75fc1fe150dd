package repository

import (
	"errors"
	"time"

	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository handles order data access
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create creates a new order
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	result := r.db.First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &order, nil
}

// GetByIDWithTrades retrieves an order with its trades preloaded, holding a
// row lock on the order
func (r *OrderRepository) GetByIDWithTrades(id uint) (*models.Order, error) {
	var order models.Order
	result := lockForUpdate(r.db).Preload("Trades").First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &order, nil
}

// GetByAccountID retrieves all orders for an account, newest first
func (r *OrderRepository) GetByAccountID(accountID uint) ([]models.Order, error) {
	var orders []models.Order
	result := r.db.Where("account_id = ?", accountID).Order("created_at DESC").Find(&orders)
	return orders, result.Error
}

// List retrieves all orders, newest first
func (r *OrderRepository) List() ([]models.Order, error) {
	var orders []models.Order
	result := r.db.Order("created_at DESC").Find(&orders)
	return orders, result.Error
}

// GetOpenOrders retrieves all open or partially filled orders for an account
func (r *OrderRepository) GetOpenOrders(accountID uint) ([]models.Order, error) {
	var orders []models.Order
	result := r.db.Where("account_id = ? AND status IN ?", accountID, []models.OrderStatus{
		models.OrderStatusOpen,
		models.OrderStatusPartiallyFilled,
	}).Find(&orders)
	return orders, result.Error
}

// UpdateStatus updates the order status
func (r *OrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
}

// MarkCanceled sets the canceled flag together with the derived status
func (r *OrderRepository) MarkCanceled(id uint, status models.OrderStatus) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"canceled":   true,
		"status":     status,
		"updated_at": time.Now(),
	}).Error
}

// DeleteByAccountID deletes all orders for an account
func (r *OrderRepository) DeleteByAccountID(accountID uint) error {
	return r.db.Where("account_id = ?", accountID).Delete(&models.Order{}).Error
}
