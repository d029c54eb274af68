package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(120);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone        string    `json:"phone" gorm:"type:varchar(30)"`
	AvatarURL    string    `json:"avatar_url" gorm:"type:varchar(512)"`
	FCMToken     string    `json:"-" gorm:"type:varchar(512)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// PublicUser is what other users get to see.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
