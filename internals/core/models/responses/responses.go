package responses

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercadolocal/marketplace-service/internals/core/models"
)

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit}
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type FollowState struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
}

type FavoriteState struct {
	Favorite       bool `json:"favorite"`
	FavoritesCount int  `json:"favorites_count"`
}

type ConversationSummary struct {
	ID            uuid.UUID         `json:"id"`
	Participant   models.PublicUser `json:"participant"`
	LastMessage   string            `json:"last_message"`
	LastMessageAt *time.Time        `json:"last_message_at,omitempty"`
	UnreadCount   int64             `json:"unread_count"`
}

type PublishResult struct {
	PostID  string `json:"post_id"`
	Caption string `json:"caption"`
}

type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}
