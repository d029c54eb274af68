package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

const (
	maxMessageLength   = 2000
	defaultMessagePage = 50
	maxMessagePage     = 100
	pushPreviewLength  = 100
)

// Broadcaster delivers realtime events to a user's open connections.
type Broadcaster interface {
	SendToUser(userID uuid.UUID, event interface{})
}

type ChatEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ChatService struct {
	chats    repository.ChatRepository
	users    repository.UserRepository
	notifier Notifier
	hub      Broadcaster
	log      logger.Logger
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository, notifier Notifier, hub Broadcaster, log logger.Logger) *ChatService {
	return &ChatService{chats: chats, users: users, notifier: notifier, hub: hub, log: log}
}

// Start returns the conversation between the two users, creating it on first contact.
func (s *ChatService) Start(ctx context.Context, userID, participantID uuid.UUID) (*models.Conversation, error) {
	if userID == participantID {
		return nil, apperr.ErrSelfConversation
	}
	if _, err := s.users.GetUserByID(ctx, participantID); err != nil {
		return nil, notFound(err, apperr.ErrUserNotFound)
	}

	conversation, err := s.chats.FindConversation(ctx, userID, participantID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	conversation = &models.Conversation{ParticipantOneID: userID, ParticipantTwoID: participantID}
	err = s.chats.CreateConversation(ctx, conversation)
	if errors.Is(err, repository.ErrDuplicate) {
		// the other side opened it at the same time
		return s.chats.FindConversation(ctx, userID, participantID)
	}
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ChatService) Conversations(ctx context.Context, userID uuid.UUID) ([]responses.ConversationSummary, error) {
	conversations, err := s.chats.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return []responses.ConversationSummary{}, nil
	}

	unread, err := s.chats.UnreadByConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	others := make([]uuid.UUID, 0, len(conversations))
	for _, c := range conversations {
		others = append(others, c.Other(userID))
	}
	users, err := s.users.GetUsersByIDs(ctx, others)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]models.PublicUser, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Public()
	}

	out := make([]responses.ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		other := c.Other(userID)
		participant, ok := profiles[other]
		if !ok {
			participant = models.PublicUser{ID: other}
		}
		out = append(out, responses.ConversationSummary{
			ID:            c.ID,
			Participant:   participant,
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   unread[c.ID],
		})
	}
	return out, nil
}

func (s *ChatService) participantOf(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.chats.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, notFound(err, apperr.ErrConversationNotFound)
	}
	if !conversation.HasParticipant(userID) {
		return nil, apperr.ErrConversationForbidden
	}
	return conversation, nil
}

// Messages pages backwards from before and marks what the caller received as read.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	if _, err := s.participantOf(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}

	// read state first so the page reflects it
	if _, err := s.chats.MarkConversationRead(ctx, conversationID, userID, timeNow()); err != nil {
		s.log.Warn("Failed to mark conversation %s read: %v", conversationID, err)
	}

	messages, err := s.chats.ListMessages(ctx, conversationID, before, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (s *ChatService) Send(ctx context.Context, userID, conversationID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, apperr.ErrMessageTooLong
	}

	conversation, err := s.participantOf(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
		CreatedAt:      timeNow(),
	}
	if err := s.chats.CreateMessage(ctx, message); err != nil {
		return nil, notFound(err, apperr.ErrConversationNotFound)
	}

	recipient := conversation.Other(userID)
	if s.hub != nil {
		s.hub.SendToUser(recipient, ChatEvent{Type: "message", Data: message})
	}

	senderName := "alguien"
	if sender, err := s.users.GetUserByID(ctx, userID); err == nil {
		senderName = sender.Name
	}
	err = s.notifier.Notify(ctx, []uuid.UUID{recipient}, Notice{
		Type:  models.NotificationChatMessage,
		Title: fmt.Sprintf("Nuevo mensaje de %s", senderName),
		Body:  truncate(content, pushPreviewLength),
		Data:  map[string]string{"conversation_id": conversationID.String()},
	})
	if err != nil {
		s.log.Warn("Failed to notify %s of message: %v", recipient, err)
	}

	return message, nil
}

func (s *ChatService) UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.chats.CountUnread(ctx, userID)
}
