package repository

import (
	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

// ExecutionLogRepository handles execution log data access. Logs are
// append-only and never mutated.
type ExecutionLogRepository struct {
	db *gorm.DB
}

// NewExecutionLogRepository creates a new ExecutionLogRepository
func NewExecutionLogRepository(db *gorm.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ExecutionLogRepository) WithTx(tx *gorm.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: tx}
}

// Create appends an execution log entry
func (r *ExecutionLogRepository) Create(log *models.ExecutionLog) error {
	return r.db.Create(log).Error
}

// GetByStrategyID retrieves execution logs for a strategy, newest first
func (r *ExecutionLogRepository) GetByStrategyID(strategyID uint) ([]models.ExecutionLog, error) {
	var logs []models.ExecutionLog
	result := r.db.Where("strategy_id = ?", strategyID).Order("timestamp DESC").Find(&logs)
	return logs, result.Error
}

// List retrieves all execution logs, newest first
func (r *ExecutionLogRepository) List(limit int) ([]models.ExecutionLog, error) {
	var logs []models.ExecutionLog
	query := r.db.Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&logs)
	return logs, result.Error
}
