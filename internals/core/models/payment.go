package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Payment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	VendorID    uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	SessionID   string    `json:"session_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	AmountCents int64     `json:"amount_cents" gorm:"not null"`
	Currency    string    `json:"currency" gorm:"type:varchar(10);not null"`
	Status      string    `json:"status" gorm:"type:varchar(30);not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
