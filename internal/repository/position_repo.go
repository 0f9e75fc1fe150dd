package repository

import (
	"errors"

	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPositionNotFound = errors.New("position not found")
)

// PositionRepository handles position data access
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PositionRepository) WithTx(tx *gorm.DB) *PositionRepository {
	return &PositionRepository{db: tx}
}

// Create creates a new position
func (r *PositionRepository) Create(position *models.Position) error {
	return r.db.Create(position).Error
}

// GetByID retrieves a position by ID
func (r *PositionRepository) GetByID(id uint) (*models.Position, error) {
	var position models.Position
	result := r.db.First(&position, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, result.Error
	}
	return &position, nil
}

// GetByAccountID retrieves all positions for an account
func (r *PositionRepository) GetByAccountID(accountID uint) ([]models.Position, error) {
	var positions []models.Position
	result := r.db.Where("account_id = ?", accountID).Find(&positions)
	return positions, result.Error
}

// GetByAccountIDAndSymbol retrieves the position for an (account, symbol) pair
func (r *PositionRepository) GetByAccountIDAndSymbol(accountID uint, symbol string) (*models.Position, error) {
	var position models.Position
	result := r.db.Where("account_id = ? AND symbol = ?", accountID, symbol).First(&position)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, result.Error
	}
	return &position, nil
}

// GetOrCreate returns the position for an (account, symbol) pair, creating
// an empty row on first reference
func (r *PositionRepository) GetOrCreate(accountID uint, symbol string) (*models.Position, error) {
	position, err := r.GetByAccountIDAndSymbol(accountID, symbol)
	if err == nil {
		return position, nil
	}
	if !errors.Is(err, ErrPositionNotFound) {
		return nil, err
	}

	position = &models.Position{
		AccountID: accountID,
		Symbol:    symbol,
		Quantity:  0,
		AvgPrice:  0,
	}
	if err := r.db.Create(position).Error; err != nil {
		return nil, err
	}
	return position, nil
}

// Update updates a position
func (r *PositionRepository) Update(position *models.Position) error {
	return r.db.Save(position).Error
}

// DeleteByAccountID deletes all positions for an account
func (r *PositionRepository) DeleteByAccountID(accountID uint) error {
	return r.db.Where("account_id = ?", accountID).Delete(&models.Position{}).Error
}
