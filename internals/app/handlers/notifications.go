package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type notificationService interface {
	List(ctx context.Context, userID uuid.UUID, page repository.Pagination) (responses.Page[models.Notification], error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type NotificationHandler struct {
	notifications notificationService
	log           logger.Logger
}

func NewNotificationHandler(notifications notificationService, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, err := h.notifications.List(c.Request.Context(), userID, pagination(c))
	if err != nil {
		respondError(c, h.log, err, "Error al obtener las notificaciones")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al contar las notificaciones")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, id, ok := userAndTarget(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, "Error al marcar la notificación")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación marcada como leída"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al marcar las notificaciones")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, id, ok := userAndTarget(c)
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, "Error al eliminar la notificación")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación eliminada"})
}
