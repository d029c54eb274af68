package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteRepository
	products  repository.ProductRepository
}

func NewFavoriteService(favorites repository.FavoriteRepository, products repository.ProductRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, products: products}
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID uuid.UUID) (responses.FavoriteState, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return responses.FavoriteState{}, notFound(err, apperr.ErrProductNotFound)
	}

	count, err := s.favorites.AddFavorite(ctx, userID, productID)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return responses.FavoriteState{}, apperr.ErrAlreadyFavorite.Wrap(err)
	case err != nil:
		return responses.FavoriteState{}, notFound(err, apperr.ErrProductNotFound)
	}
	return responses.FavoriteState{Favorite: true, FavoritesCount: count}, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, productID uuid.UUID) (responses.FavoriteState, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return responses.FavoriteState{}, notFound(err, apperr.ErrProductNotFound)
	}

	count, err := s.favorites.RemoveFavorite(ctx, userID, productID)
	if err != nil {
		return responses.FavoriteState{}, notFound(err, apperr.ErrNotFavorite)
	}
	return responses.FavoriteState{Favorite: false, FavoritesCount: count}, nil
}

func (s *FavoriteService) Status(ctx context.Context, userID, productID uuid.UUID) (responses.FavoriteState, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return responses.FavoriteState{}, notFound(err, apperr.ErrProductNotFound)
	}
	favorite, err := s.favorites.IsFavorite(ctx, userID, productID)
	if err != nil {
		return responses.FavoriteState{}, err
	}
	return responses.FavoriteState{Favorite: favorite, FavoritesCount: product.FavoritesCount}, nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	products, err := s.favorites.ListFavoriteProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
