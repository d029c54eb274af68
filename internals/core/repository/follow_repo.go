package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type FollowStorage struct {
	DB *gorm.DB
}

type FollowRepository interface {
	Follow(ctx context.Context, userID, vendorID uuid.UUID) (int, error)
	Unfollow(ctx context.Context, userID, vendorID uuid.UUID) (int, error)
	IsFollowing(ctx context.Context, userID, vendorID uuid.UUID) (bool, error)
	ListFollowedVendors(ctx context.Context, userID uuid.UUID) ([]models.Vendor, error)
	ListFollowerIDs(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error)
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &FollowStorage{DB: db}
}

// Follow inserts the follow row and bumps vendors.followers_count in one transaction.
// It returns the new follower count.
func (r *FollowStorage) Follow(ctx context.Context, userID, vendorID uuid.UUID) (int, error) {
	var count int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		follow := models.Follow{UserID: userID, VendorID: vendorID}
		if err := tx.Create(&follow).Error; err != nil {
			return fmt.Errorf("failed to create follow: %w", translate(err))
		}

		result := tx.Model(&models.Vendor{}).
			Where("id = ?", vendorID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to increment followers: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no vendor found with ID %s: %w", vendorID, ErrNotFound)
		}

		return tx.Model(&models.Vendor{}).
			Select("followers_count").
			Where("id = ?", vendorID).
			Scan(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Unfollow deletes the follow row and decrements the counter, never below zero.
func (r *FollowStorage) Unfollow(ctx context.Context, userID, vendorID uuid.UUID) (int, error) {
	var count int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND vendor_id = ?", userID, vendorID).Delete(&models.Follow{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete follow: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("user %s does not follow vendor %s: %w", userID, vendorID, ErrNotFound)
		}

		err := tx.Model(&models.Vendor{}).
			Where("id = ?", vendorID).
			UpdateColumn("followers_count", gorm.Expr("GREATEST(followers_count - ?, 0)", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to decrement followers: %w", err)
		}

		return tx.Model(&models.Vendor{}).
			Select("followers_count").
			Where("id = ?", vendorID).
			Scan(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FollowStorage) IsFollowing(ctx context.Context, userID, vendorID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND vendor_id = ?", userID, vendorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

func (r *FollowStorage) ListFollowedVendors(ctx context.Context, userID uuid.UUID) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.DB.WithContext(ctx).
		Joins("JOIN follows ON follows.vendor_id = vendors.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&vendors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followed vendors: %w", err)
	}
	return vendors, nil
}

func (r *FollowStorage) ListFollowerIDs(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).Model(&models.Follow{}).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return ids, nil
}
