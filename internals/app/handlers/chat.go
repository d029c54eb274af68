package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/app/middleware"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type chatService interface {
	Start(ctx context.Context, userID, participantID uuid.UUID) (*models.Conversation, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]responses.ConversationSummary, error)
	Messages(ctx context.Context, userID, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error)
	Send(ctx context.Context, userID, conversationID uuid.UUID, content string) (*models.Message, error)
	UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error)
}

// socketServer upgrades a request into a realtime connection for userID.
type socketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

type ChatHandler struct {
	chats chatService
	auth  middleware.Authenticator
	hub   socketServer
	log   logger.Logger
}

func NewChatHandler(chats chatService, auth middleware.Authenticator, hub socketServer, log logger.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, auth: auth, hub: hub, log: log}
}

type startConversationRequest struct {
	ParticipantID string `json:"participant_id"`
}

func (h *ChatHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in startConversationRequest
	if !bindJSON(c, &in) {
		return
	}
	participantID, err := uuid.Parse(in.ParticipantID)
	if err != nil {
		abort(c, apperr.ErrInvalidID)
		return
	}
	conversation, err := h.chats.Start(c.Request.Context(), userID, participantID)
	if err != nil {
		respondError(c, h.log, err, "Error al iniciar la conversación")
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) Conversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.chats.Conversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener las conversaciones")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, conversationID, ok := userAndTarget(c)
	if !ok {
		return
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			abort(c, apperr.ErrInvalidBody)
			return
		}
		before = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.chats.Messages(c.Request.Context(), userID, conversationID, before, limit)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los mensajes")
		return
	}
	c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, conversationID, ok := userAndTarget(c)
	if !ok {
		return
	}
	var in sendMessageRequest
	if !bindJSON(c, &in) {
		return
	}
	message, err := h.chats.Send(c.Request.Context(), userID, conversationID, in.Content)
	if err != nil {
		respondError(c, h.log, err, "Error al enviar el mensaje")
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) Unread(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	total, err := h.chats.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los mensajes no leídos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": total})
}

// Socket authenticates with the token query parameter because browsers can't set headers
// on a websocket handshake.
func (h *ChatHandler) Socket(c *gin.Context) {
	userID, err := h.auth.Authenticate(c.Query("token"))
	if err != nil {
		abort(c, apperr.ErrUnauthorized)
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, userID); err != nil {
		h.log.Warn("Websocket upgrade failed: %v", err)
	}
}
