package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Query              string
	Category           string
	VendorID           *uuid.UUID
	IncludeUnavailable bool
	Pagination
}

type ProductStorage struct {
	DB *gorm.DB
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductStorage{DB: db}
}

func (r *ProductStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *ProductStorage) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Preload("Vendor").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, translate(err))
	}
	return &product, nil
}

func (r *ProductStorage) UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no product found with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ProductStorage) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete product favorites: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Product{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no product found with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ListProducts hides unavailable products unless IncludeUnavailable is set.
func (r *ProductStorage) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.Product{})
	if !filter.IncludeUnavailable {
		query = query.Where("available = ?", true)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	if err := filter.Pagination.apply(query).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}
