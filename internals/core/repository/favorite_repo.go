package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type FavoriteStorage struct {
	DB *gorm.DB
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) (int, error)
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) (int, error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListFavoriteProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &FavoriteStorage{DB: db}
}

func (r *FavoriteStorage) AddFavorite(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	var count int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		favorite := models.Favorite{UserID: userID, ProductID: productID}
		if err := tx.Create(&favorite).Error; err != nil {
			return fmt.Errorf("failed to create favorite: %w", translate(err))
		}

		result := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to increment favorites: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no product found with ID %s: %w", productID, ErrNotFound)
		}

		return tx.Model(&models.Product{}).
			Select("favorites_count").
			Where("id = ?", productID).
			Scan(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FavoriteStorage) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	var count int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete favorite: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("product %s is not a favorite of %s: %w", productID, userID, ErrNotFound)
		}

		err := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("favorites_count", gorm.Expr("GREATEST(favorites_count - ?, 0)", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to decrement favorites: %w", err)
		}

		return tx.Model(&models.Product{}).
			Select("favorites_count").
			Where("id = ?", productID).
			Scan(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FavoriteStorage) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

func (r *FavoriteStorage) ListFavoriteProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite products: %w", err)
	}
	return products, nil
}
