package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type VendorFilter struct {
	Query    string
	Category string
	City     string
	Pagination
}

type VendorStorage struct {
	DB *gorm.DB
}

type VendorRepository interface {
	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	GetVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetVendorByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteVendor(ctx context.Context, id uuid.UUID) ([]string, error)
	ListVendors(ctx context.Context, filter VendorFilter) ([]models.Vendor, int64, error)
	ListFeaturedVendors(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error)
	ExpireFeatured(ctx context.Context, now time.Time) (int64, error)
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &VendorStorage{DB: db}
}

func (r *VendorStorage) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if err := r.DB.WithContext(ctx).Create(vendor).Error; err != nil {
		return fmt.Errorf("failed to create vendor: %w", translate(err))
	}
	return nil
}

func (r *VendorStorage) GetVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.DB.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get vendor %s: %w", id, translate(err))
	}
	return &vendor, nil
}

func (r *VendorStorage) GetVendorByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.DB.WithContext(ctx).First(&vendor, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get vendor for user %s: %w", userID, translate(err))
	}
	return &vendor, nil
}

func (r *VendorStorage) UpdateVendor(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.DB.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update vendor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no vendor found with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteVendor removes the vendor together with everything hanging off it and
// returns the Cloudinary public ids of the deleted products' images.
func (r *VendorStorage) DeleteVendor(ctx context.Context, id uuid.UUID) ([]string, error) {
	var imageIDs []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Product{}).
			Where("vendor_id = ? AND image_public_id <> ''", id).
			Pluck("image_public_id", &imageIDs).Error
		if err != nil {
			return fmt.Errorf("failed to collect product images: %w", err)
		}

		products := tx.Model(&models.Product{}).Select("id").Where("vendor_id = ?", id)
		if err := tx.Where("product_id IN (?)", products).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete vendor favorites: %w", err)
		}
		coupons := tx.Model(&models.Coupon{}).Select("id").Where("vendor_id = ?", id)
		if err := tx.Where("coupon_id IN (?)", coupons).Delete(&models.CouponRedemption{}).Error; err != nil {
			return fmt.Errorf("failed to delete vendor redemptions: %w", err)
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&models.Coupon{}).Error; err != nil {
			return fmt.Errorf("failed to delete vendor coupons: %w", err)
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to delete vendor products: %w", err)
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete vendor follows: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Vendor{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete vendor: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no vendor found with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return imageIDs, nil
}

func (r *VendorStorage) ListVendors(ctx context.Context, filter VendorFilter) ([]models.Vendor, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Vendor{})
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vendors: %w", err)
	}

	var vendors []models.Vendor
	err := filter.Pagination.apply(query).
		Order("featured DESC").
		Order("created_at DESC").
		Find(&vendors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendors: %w", err)
	}
	return vendors, total, nil
}

// ListFeaturedVendors skips vendors whose window lapsed even if the expiry job has not run yet.
func (r *VendorStorage) ListFeaturedVendors(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.DB.WithContext(ctx).
		Where("featured = ? AND featured_until > ?", true, now).
		Order("featured_until DESC").
		Limit(limit).
		Find(&vendors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list featured vendors: %w", err)
	}
	return vendors, nil
}

func (r *VendorStorage) ExpireFeatured(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.Vendor{}).
		Where("featured = ? AND featured_until <= ?", true, now).
		UpdateColumn("featured", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire featured vendors: %w", result.Error)
	}
	return result.RowsAffected, nil
}
