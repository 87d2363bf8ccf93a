// File: internal/notification/repository.go
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"motormate_backend/internal/common"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByProfileID(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	FindByID(ctx context.Context, notificationID uuid.UUID, profileID uuid.UUID) (*Notification, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, profileID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, profileID uuid.UUID) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByProfileID retrieves a paginated list of notifications for a profile,
// newest first.
func (r *GORMRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&Notification{}).Where("profile_id = ?", profileID)

	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for profile %s failed: %w", profileID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for profile %s failed: %w", profileID, err)
	}
	return notifications, pagination, nil
}

// FindByID retrieves a notification by ID, ensuring it belongs to profileID.
func (r *GORMRepository) FindByID(ctx context.Context, notificationID uuid.UUID, profileID uuid.UUID) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND profile_id = ?", notificationID, profileID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found.")
		}
		return nil, fmt.Errorf("failed to find notification %s for profile %s: %w", notificationID, profileID, err)
	}
	return &notification, nil
}

// MarkAsRead marks a single notification as read for the owning profile.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, profileID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND profile_id = ?", notificationID, profileID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

// MarkAllAsRead marks every unread notification for the profile as read and
// returns how many were affected.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("profile_id = ? AND is_read = ?", profileID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
