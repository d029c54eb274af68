package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type ClassifiedInput struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Contact       *string  `json:"contact"`
	City          *string  `json:"city"`
	Price         *float64 `json:"price"`
	ImageURL      *string  `json:"image_url"`
	ImagePublicID *string  `json:"image_public_id"`
}

type ClassifiedService struct {
	classifieds repository.ClassifiedRepository
	images      ImageStore
	maxLive     int
	lifetime    time.Duration
	log         logger.Logger
}

func NewClassifiedService(classifieds repository.ClassifiedRepository, images ImageStore, maxLive, days int, log logger.Logger) *ClassifiedService {
	return &ClassifiedService{
		classifieds: classifieds,
		images:      images,
		maxLive:     maxLive,
		lifetime:    time.Duration(days) * 24 * time.Hour,
		log:         log,
	}
}

func (s *ClassifiedService) checkQuota(ctx context.Context, userID uuid.UUID, now time.Time) error {
	if s.maxLive <= 0 {
		return nil
	}
	live, err := s.classifieds.CountLiveByUser(ctx, userID, now)
	if err != nil {
		return err
	}
	if live >= int64(s.maxLive) {
		return apperr.ErrClassifiedLimit
	}
	return nil
}

func (s *ClassifiedService) Create(ctx context.Context, userID uuid.UUID, in ClassifiedInput) (*models.Classified, error) {
	title, description := trimmed(in.Title), trimmed(in.Description)
	if title == "" || description == "" {
		return nil, apperr.ErrClassifiedFields
	}

	now := timeNow()
	if err := s.checkQuota(ctx, userID, now); err != nil {
		return nil, err
	}

	classified := &models.Classified{
		UserID:        userID,
		Title:         title,
		Description:   description,
		Category:      trimmed(in.Category),
		Contact:       trimmed(in.Contact),
		City:          trimmed(in.City),
		Price:         in.Price,
		ImageURL:      trimmed(in.ImageURL),
		ImagePublicID: trimmed(in.ImagePublicID),
		Active:        true,
		ExpiresAt:     now.Add(s.lifetime),
	}
	if err := s.classifieds.CreateClassified(ctx, classified); err != nil {
		return nil, err
	}
	return classified, nil
}

func (s *ClassifiedService) List(ctx context.Context, filter repository.ClassifiedFilter) (responses.Page[models.Classified], error) {
	filter.Now = timeNow()
	items, total, err := s.classifieds.ListLiveClassifieds(ctx, filter)
	if err != nil {
		return responses.Page[models.Classified]{}, err
	}
	return responses.NewPage(items, total, filter.Page, filter.Limit), nil
}

func (s *ClassifiedService) Mine(ctx context.Context, userID uuid.UUID) ([]models.Classified, error) {
	items, err := s.classifieds.ListClassifiedsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Classified{}
	}
	return items, nil
}

func (s *ClassifiedService) Get(ctx context.Context, id uuid.UUID) (*models.Classified, error) {
	classified, err := s.classifieds.GetClassifiedByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrClassifiedNotFound)
	}
	return classified, nil
}

func (s *ClassifiedService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Classified, error) {
	classified, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if classified.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	return classified, nil
}

func (s *ClassifiedService) Update(ctx context.Context, userID, id uuid.UUID, in ClassifiedInput) (*models.Classified, error) {
	classified, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := patch{}
	if in.Title != nil {
		if trimmed(in.Title) == "" {
			return nil, apperr.ErrClassifiedFields
		}
		fields.str("title", in.Title)
	}
	if in.Description != nil {
		if trimmed(in.Description) == "" {
			return nil, apperr.ErrClassifiedFields
		}
		fields.str("description", in.Description)
	}
	fields.str("category", in.Category)
	fields.str("contact", in.Contact)
	fields.str("city", in.City)
	fields.float("price", in.Price)
	fields.str("image_url", in.ImageURL)
	fields.str("image_public_id", in.ImagePublicID)

	if len(fields) == 0 {
		return classified, nil
	}
	if err := s.classifieds.UpdateClassified(ctx, id, fields); err != nil {
		return nil, notFound(err, apperr.ErrClassifiedNotFound)
	}
	if in.ImagePublicID != nil && classified.ImagePublicID != "" && classified.ImagePublicID != trimmed(in.ImagePublicID) {
		dropImage(ctx, s.images, s.log, classified.ImagePublicID)
	}
	return s.Get(ctx, id)
}

func (s *ClassifiedService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	classified, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.classifieds.DeleteClassified(ctx, id); err != nil {
		return notFound(err, apperr.ErrClassifiedNotFound)
	}
	dropImage(ctx, s.images, s.log, classified.ImagePublicID)
	return nil
}

// Renew restarts the classified's lifetime. Reviving an expired one counts against the quota.
func (s *ClassifiedService) Renew(ctx context.Context, userID, id uuid.UUID) (*models.Classified, error) {
	classified, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	if !classified.Live(now) {
		if err := s.checkQuota(ctx, userID, now); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{"active": true, "expires_at": now.Add(s.lifetime)}
	if err := s.classifieds.UpdateClassified(ctx, id, fields); err != nil {
		return nil, notFound(err, apperr.ErrClassifiedNotFound)
	}
	return s.Get(ctx, id)
}

func (s *ClassifiedService) ExpireStale(ctx context.Context) (int64, error) {
	return s.classifieds.ExpireClassifieds(ctx, timeNow())
}
