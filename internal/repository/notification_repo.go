package repository

import (
	"github.com/trading-ledger/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository handles notification and audit log data access
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: tx}
}

// Create appends a notification
func (r *NotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByUserID retrieves notifications for a user, newest first
func (r *NotificationRepository) GetByUserID(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	result := r.db.Where("user_id = ?", userID).Order("timestamp DESC").Find(&notifications)
	return notifications, result.Error
}

// CreateAudit appends an audit log record
func (r *NotificationRepository) CreateAudit(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// GetAuditByUserID retrieves audit records for a user, newest first
func (r *NotificationRepository) GetAuditByUserID(userID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	result := r.db.Where("user_id = ?", userID).Order("timestamp DESC").Find(&entries)
	return entries, result.Error
}
