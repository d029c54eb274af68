package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	VendorID         uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;index"`
	Vendor           *Vendor   `json:"vendor,omitempty" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Code             string    `json:"code" gorm:"type:varchar(32);not null;uniqueIndex"`
	Title            string    `json:"title" gorm:"type:varchar(150);not null"`
	Description      string    `json:"description" gorm:"type:text"`
	DiscountPercent  int       `json:"discount_percent" gorm:"not null"`
	ValidUntil       time.Time `json:"valid_until" gorm:"not null;index"`
	MaxRedemptions   int       `json:"max_redemptions" gorm:"not null;default:0"`
	RedemptionsCount int       `json:"redemptions_count" gorm:"not null;default:0"`
	Active           bool      `json:"active" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (c Coupon) Expired(now time.Time) bool {
	return !c.Active || !c.ValidUntil.After(now)
}

// Exhausted is false for unlimited coupons (MaxRedemptions == 0).
func (c Coupon) Exhausted() bool {
	return c.MaxRedemptions > 0 && c.RedemptionsCount >= c.MaxRedemptions
}

type CouponRedemption struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CouponID  uuid.UUID `json:"coupon_id" gorm:"type:uuid;not null;uniqueIndex:idx_redemption_coupon_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_redemption_coupon_user"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
