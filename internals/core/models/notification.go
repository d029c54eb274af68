package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationNewProduct  = "new_product"
	NotificationNewCoupon   = "new_coupon"
	NotificationChatMessage = "chat_message"
	NotificationFeatured    = "vendor_featured"
)

type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      string    `json:"type" gorm:"type:varchar(40);not null"`
	Title     string    `json:"title" gorm:"type:varchar(200);not null"`
	Body      string    `json:"body" gorm:"type:text"`
	Data      string    `json:"data" gorm:"type:text"`
	Read      bool      `json:"read" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
