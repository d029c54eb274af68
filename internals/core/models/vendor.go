package models

import (
	"time"

	"github.com/google/uuid"
)

type Vendor struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Name           string     `json:"name" gorm:"type:varchar(150);not null"`
	Description    string     `json:"description" gorm:"type:text"`
	Category       string     `json:"category" gorm:"type:varchar(80);index"`
	Phone          string     `json:"phone" gorm:"type:varchar(30)"`
	WhatsApp       string     `json:"whatsapp" gorm:"column:whatsapp;type:varchar(30)"`
	Address        string     `json:"address" gorm:"type:varchar(255)"`
	City           string     `json:"city" gorm:"type:varchar(100);index"`
	Lat            float64    `json:"lat"`
	Lng            float64    `json:"lng"`
	LogoURL        string     `json:"logo_url" gorm:"type:varchar(512)"`
	LogoPublicID   string     `json:"-" gorm:"type:varchar(255)"`
	CoverURL       string     `json:"cover_url" gorm:"type:varchar(512)"`
	CoverPublicID  string     `json:"-" gorm:"type:varchar(255)"`
	FollowersCount int        `json:"followers_count" gorm:"not null;default:0"`
	Featured       bool       `json:"featured" gorm:"not null;default:false;index"`
	FeaturedUntil  *time.Time `json:"featured_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (v Vendor) OwnedBy(userID uuid.UUID) bool {
	return v.UserID == userID
}
