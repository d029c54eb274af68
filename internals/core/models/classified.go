package models

import (
	"time"

	"github.com/google/uuid"
)

type Classified struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title         string    `json:"title" gorm:"type:varchar(150);not null"`
	Description   string    `json:"description" gorm:"type:text;not null"`
	Category      string    `json:"category" gorm:"type:varchar(80);index"`
	Contact       string    `json:"contact" gorm:"type:varchar(150)"`
	City          string    `json:"city" gorm:"type:varchar(100);index"`
	Price         *float64  `json:"price,omitempty"`
	ImageURL      string    `json:"image_url" gorm:"type:varchar(512)"`
	ImagePublicID string    `json:"-" gorm:"type:varchar(255)"`
	Active        bool      `json:"active" gorm:"not null;index"`
	ExpiresAt     time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Live reports whether the classified is still shown in public listings.
func (c Classified) Live(now time.Time) bool {
	return c.Active && c.ExpiresAt.After(now)
}
