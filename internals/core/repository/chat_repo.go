package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type ChatStorage struct {
	DB *gorm.DB
}

type ChatRepository interface {
	FindConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error)
	UnreadByConversation(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &ChatStorage{DB: db}
}

func (r *ChatStorage) FindConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	one, two := models.CanonicalPair(a, b)
	var conversation models.Conversation
	err := r.DB.WithContext(ctx).
		First(&conversation, "participant_one_id = ? AND participant_two_id = ?", one, two).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", translate(err))
	}
	return &conversation, nil
}

func (r *ChatStorage) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	conversation.ParticipantOneID, conversation.ParticipantTwoID =
		models.CanonicalPair(conversation.ParticipantOneID, conversation.ParticipantTwoID)
	if err := r.DB.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", translate(err))
	}
	return nil
}

func (r *ChatStorage) GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.DB.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, translate(err))
	}
	return &conversation, nil
}

func (r *ChatStorage) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.WithContext(ctx).
		Where("participant_one_id = ? OR participant_two_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// CreateMessage stores the message and moves the conversation preview forward atomically.
func (r *ChatStorage) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", translate(err))
		}

		result := tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message":    message.Content,
				"last_message_at": message.CreatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update conversation preview: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no conversation found with ID %s: %w", message.ConversationID, ErrNotFound)
		}
		return nil
	})
}

// ListMessages returns the newest messages first, optionally strictly older than before.
func (r *ChatStorage) ListMessages(ctx context.Context, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	query := r.DB.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *ChatStorage) MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"read": true, "read_at": at})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

type unreadRow struct {
	ConversationID uuid.UUID
	Unread         int64
}

func (r *ChatStorage) unreadScope(userID uuid.UUID) *gorm.DB {
	return r.DB.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.participant_one_id = ? OR conversations.participant_two_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.read = ?", userID, false)
}

func (r *ChatStorage) UnreadByConversation(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []unreadRow
	err := r.unreadScope(userID).WithContext(ctx).
		Select("messages.conversation_id AS conversation_id, COUNT(*) AS unread").
		Group("messages.conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.ConversationID] = row.Unread
	}
	return out, nil
}

func (r *ChatStorage) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.unreadScope(userID).WithContext(ctx).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
