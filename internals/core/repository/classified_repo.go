package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type ClassifiedFilter struct {
	Query    string
	Category string
	City     string
	Now      time.Time
	Pagination
}

type ClassifiedStorage struct {
	DB *gorm.DB
}

type ClassifiedRepository interface {
	CreateClassified(ctx context.Context, classified *models.Classified) error
	GetClassifiedByID(ctx context.Context, id uuid.UUID) (*models.Classified, error)
	UpdateClassified(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteClassified(ctx context.Context, id uuid.UUID) error
	CountLiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	ListLiveClassifieds(ctx context.Context, filter ClassifiedFilter) ([]models.Classified, int64, error)
	ListClassifiedsByUser(ctx context.Context, userID uuid.UUID) ([]models.Classified, error)
	ExpireClassifieds(ctx context.Context, now time.Time) (int64, error)
}

func NewClassifiedRepository(db *gorm.DB) ClassifiedRepository {
	return &ClassifiedStorage{DB: db}
}

func (r *ClassifiedStorage) CreateClassified(ctx context.Context, classified *models.Classified) error {
	if err := r.DB.WithContext(ctx).Create(classified).Error; err != nil {
		return fmt.Errorf("failed to create classified: %w", translate(err))
	}
	return nil
}

func (r *ClassifiedStorage) GetClassifiedByID(ctx context.Context, id uuid.UUID) (*models.Classified, error) {
	var classified models.Classified
	if err := r.DB.WithContext(ctx).First(&classified, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get classified %s: %w", id, translate(err))
	}
	return &classified, nil
}

func (r *ClassifiedStorage) UpdateClassified(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.DB.WithContext(ctx).Model(&models.Classified{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update classified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no classified found with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ClassifiedStorage) DeleteClassified(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Classified{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete classified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no classified found with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ClassifiedStorage) CountLiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Classified{}).
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count classifieds: %w", err)
	}
	return count, nil
}

func (r *ClassifiedStorage) ListLiveClassifieds(ctx context.Context, filter ClassifiedFilter) ([]models.Classified, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Classified{}).
		Where("active = ? AND expires_at > ?", true, filter.Now)
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("city ILIKE ?", filter.City)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count classifieds: %w", err)
	}

	var classifieds []models.Classified
	if err := filter.Pagination.apply(query).Order("created_at DESC").Find(&classifieds).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list classifieds: %w", err)
	}
	return classifieds, total, nil
}

func (r *ClassifiedStorage) ListClassifiedsByUser(ctx context.Context, userID uuid.UUID) ([]models.Classified, error) {
	var classifieds []models.Classified
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&classifieds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user classifieds: %w", err)
	}
	return classifieds, nil
}

func (r *ClassifiedStorage) ExpireClassifieds(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.Classified{}).
		Where("active = ? AND expires_at <= ?", true, now).
		UpdateColumn("active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire classifieds: %w", result.Error)
	}
	return result.RowsAffected, nil
}
