package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
)

type UserStorage struct {
	DB *gorm.DB
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateFCMToken(ctx context.Context, id uuid.UUID, token string) error
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserStorage{DB: db}
}

func (r *UserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, translate(err))
	}
	return &user, nil
}

func (r *UserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err))
	}
	return &user, nil
}

func (r *UserStorage) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (r *UserStorage) UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user found with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *UserStorage) UpdateFCMToken(ctx context.Context, id uuid.UUID, token string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("fcm_token", token)
	if result.Error != nil {
		return fmt.Errorf("failed to update fcm token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user found with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
