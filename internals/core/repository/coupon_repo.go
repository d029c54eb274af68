package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type CouponStorage struct {
	DB *gorm.DB
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *models.Coupon) error
	GetCouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
	ListCouponsByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Coupon, error)
	ListActiveCoupons(ctx context.Context, now time.Time, page Pagination) ([]models.Coupon, int64, error)
	Redeem(ctx context.Context, couponID, userID uuid.UUID) (*models.CouponRedemption, error)
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &CouponStorage{DB: db}
}

func (r *CouponStorage) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	if err := r.DB.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", translate(err))
	}
	return nil
}

func (r *CouponStorage) GetCouponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.DB.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupon %s: %w", id, translate(err))
	}
	return &coupon, nil
}

func (r *CouponStorage) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.DB.WithContext(ctx).Preload("Vendor").First(&coupon, "code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupon by code: %w", translate(err))
	}
	return &coupon, nil
}

func (r *CouponStorage) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coupon_id = ?", id).Delete(&models.CouponRedemption{}).Error; err != nil {
			return fmt.Errorf("failed to delete coupon redemptions: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Coupon{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete coupon: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no coupon found with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *CouponStorage) ListCouponsByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.DB.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor coupons: %w", err)
	}
	return coupons, nil
}

func (r *CouponStorage) ListActiveCoupons(ctx context.Context, now time.Time, page Pagination) ([]models.Coupon, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("active = ? AND valid_until > ?", true, now).
		Where("max_redemptions = 0 OR redemptions_count < max_redemptions")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	var coupons []models.Coupon
	if err := page.apply(query).Preload("Vendor").Order("valid_until ASC").Find(&coupons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, total, nil
}

// Redeem takes one slot of the coupon and records the redemption. ErrLimitReached means
// the coupon has no slots left; ErrDuplicate means the user already redeemed it.
func (r *CouponStorage) Redeem(ctx context.Context, couponID, userID uuid.UUID) (*models.CouponRedemption, error) {
	redemption := &models.CouponRedemption{CouponID: couponID, UserID: userID}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Coupon{}).
			Where("id = ?", couponID).
			Where("max_redemptions = 0 OR redemptions_count < max_redemptions").
			UpdateColumn("redemptions_count", gorm.Expr("redemptions_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to take coupon slot: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("coupon %s exhausted: %w", couponID, ErrLimitReached)
		}

		if err := tx.Create(redemption).Error; err != nil {
			return fmt.Errorf("failed to record redemption: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}
