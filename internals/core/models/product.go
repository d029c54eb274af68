package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	VendorID       uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;index"`
	Vendor         *Vendor   `json:"vendor,omitempty" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Name           string    `json:"name" gorm:"type:varchar(150);not null"`
	Description    string    `json:"description" gorm:"type:text"`
	Price          float64   `json:"price" gorm:"not null"`
	Category       string    `json:"category" gorm:"type:varchar(80);index"`
	ImageURL       string    `json:"image_url" gorm:"type:varchar(512)"`
	ImagePublicID  string    `json:"-" gorm:"type:varchar(255)"`
	Available      bool      `json:"available" gorm:"not null"`
	FavoritesCount int       `json:"favorites_count" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
