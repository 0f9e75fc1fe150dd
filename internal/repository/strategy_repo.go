package repository

import (
	"errors"

	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

var (
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrRuleNotFound     = errors.New("strategy rule not found")
)

// StrategyRepository handles strategy and strategy rule data access
type StrategyRepository struct {
	db *gorm.DB
}

// NewStrategyRepository creates a new StrategyRepository
func NewStrategyRepository(db *gorm.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// Create creates a new strategy
func (r *StrategyRepository) Create(strategy *models.Strategy) error {
	return r.db.Create(strategy).Error
}

// GetByID retrieves a strategy by ID
func (r *StrategyRepository) GetByID(id uint) (*models.Strategy, error) {
	var strategy models.Strategy
	result := r.db.First(&strategy, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStrategyNotFound
		}
		return nil, result.Error
	}
	return &strategy, nil
}

// GetByIDWithRules retrieves a strategy with its rules preloaded
func (r *StrategyRepository) GetByIDWithRules(id uint) (*models.Strategy, error) {
	var strategy models.Strategy
	result := r.db.Preload("Rules").First(&strategy, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStrategyNotFound
		}
		return nil, result.Error
	}
	return &strategy, nil
}

// GetByUserID retrieves all strategies for a user
func (r *StrategyRepository) GetByUserID(userID uint) ([]models.Strategy, error) {
	var strategies []models.Strategy
	result := r.db.Where("user_id = ?", userID).Find(&strategies)
	return strategies, result.Error
}

// Update updates a strategy
func (r *StrategyRepository) Update(strategy *models.Strategy) error {
	return r.db.Save(strategy).Error
}

// Delete deletes a strategy and its rules
func (r *StrategyRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("strategy_id = ?", id).Delete(&models.StrategyRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Strategy{}, id).Error
	})
}

// CreateRule creates a new strategy rule
func (r *StrategyRepository) CreateRule(rule *models.StrategyRule) error {
	return r.db.Create(rule).Error
}

// GetRuleByID retrieves a strategy rule by ID
func (r *StrategyRepository) GetRuleByID(id uint) (*models.StrategyRule, error) {
	var rule models.StrategyRule
	result := r.db.First(&rule, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, result.Error
	}
	return &rule, nil
}

// GetRulesByStrategyID retrieves all rules of a strategy
func (r *StrategyRepository) GetRulesByStrategyID(strategyID uint) ([]models.StrategyRule, error) {
	var rules []models.StrategyRule
	result := r.db.Where("strategy_id = ?", strategyID).Find(&rules)
	return rules, result.Error
}

// GetAllRules retrieves every rule with its owning strategy preloaded.
// The evaluation loop deliberately does not filter on the strategy active
// flag; inactive strategies' rules still fire.
func (r *StrategyRepository) GetAllRules() ([]models.StrategyRule, error) {
	var rules []models.StrategyRule
	result := r.db.Preload("Strategy").Find(&rules)
	return rules, result.Error
}

// DeleteRule deletes a strategy rule
func (r *StrategyRepository) DeleteRule(id uint) error {
	return r.db.Delete(&models.StrategyRule{}, id).Error
}
