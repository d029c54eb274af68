package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/firebase"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	pusher        firebase.Pusher
	log           logger.Logger

	// dispatch runs push delivery; tests swap it for a synchronous call.
	dispatch func(func())
}

func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, pusher firebase.Pusher, log logger.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		pusher:        pusher,
		log:           log,
		dispatch:      func(f func()) { go f() },
	}
}

// Notify stores one notification per recipient and pushes to those with a device token.
// Push failures are logged and never returned.
func (s *NotificationService) Notify(ctx context.Context, userIDs []uuid.UUID, notice Notice) error {
	if len(userIDs) == 0 {
		return nil
	}

	data := ""
	if len(notice.Data) > 0 {
		raw, err := json.Marshal(notice.Data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data: %w", err)
		}
		data = string(raw)
	}

	rows := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.Notification{
			UserID: id,
			Type:   notice.Type,
			Title:  notice.Title,
			Body:   notice.Body,
			Data:   data,
		})
	}
	if err := s.notifications.CreateNotifications(ctx, rows); err != nil {
		return err
	}

	pushCtx := context.WithoutCancel(ctx)
	s.dispatch(func() { s.push(pushCtx, userIDs, notice) })
	return nil
}

func (s *NotificationService) push(ctx context.Context, userIDs []uuid.UUID, notice Notice) {
	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		s.log.Error("Failed to load push recipients: %v", err)
		return
	}

	payload := map[string]string{"type": notice.Type}
	for k, v := range notice.Data {
		payload[k] = v
	}

	for _, user := range users {
		if user.FCMToken == "" {
			continue
		}
		err := s.pusher.Send(ctx, firebase.PushMessage{
			Token: user.FCMToken,
			Title: notice.Title,
			Body:  notice.Body,
			Data:  payload,
		})
		if errors.Is(err, firebase.ErrStaleToken) {
			if err := s.users.UpdateFCMToken(ctx, user.ID, ""); err != nil {
				s.log.Warn("Failed to clear stale fcm token for %s: %v", user.ID, err)
			}
			continue
		}
		if err != nil {
			s.log.Warn("Failed to push to %s: %v", user.ID, err)
		}
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page repository.Pagination) (responses.Page[models.Notification], error) {
	items, total, err := s.notifications.ListNotifications(ctx, userID, page)
	if err != nil {
		return responses.Page[models.Notification]{}, err
	}
	return responses.NewPage(items, total, page.Page, page.Limit), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return notFound(s.notifications.MarkRead(ctx, id, userID), apperr.ErrNotificationNotFound)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return notFound(s.notifications.DeleteNotification(ctx, id, userID), apperr.ErrNotificationNotFound)
}
