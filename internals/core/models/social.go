package models

import (
	"time"

	"github.com/google/uuid"
)

type Follow struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_user_vendor"`
	VendorID  uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_user_vendor;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type Favorite struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_product;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
