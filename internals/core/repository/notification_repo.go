package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type NotificationStorage struct {
	DB *gorm.DB
}

type NotificationRepository interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, page Pagination) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, id, userID uuid.UUID) error
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationStorage{DB: db}
}

func (r *NotificationStorage) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := r.DB.WithContext(ctx).CreateInBatches(notifications, 200).Error; err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func (r *NotificationStorage) ListNotifications(ctx context.Context, userID uuid.UUID, page Pagination) ([]models.Notification, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	if err := page.apply(query).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *NotificationStorage) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationStorage) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no notification %s for user %s: %w", id, userID, ErrNotFound)
	}
	return nil
}

func (r *NotificationStorage) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		UpdateColumn("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NotificationStorage) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no notification %s for user %s: %w", id, userID, ErrNotFound)
	}
	return nil
}
