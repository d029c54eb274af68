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

type FollowService struct {
	follows repository.FollowRepository
	vendors repository.VendorRepository
	users   repository.UserRepository
}

func NewFollowService(follows repository.FollowRepository, vendors repository.VendorRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, vendors: vendors, users: users}
}

func (s *FollowService) Follow(ctx context.Context, userID, vendorID uuid.UUID) (responses.FollowState, error) {
	if _, err := s.vendors.GetVendorByID(ctx, vendorID); err != nil {
		return responses.FollowState{}, notFound(err, apperr.ErrVendorNotFound)
	}

	count, err := s.follows.Follow(ctx, userID, vendorID)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return responses.FollowState{}, apperr.ErrAlreadyFollowing.Wrap(err)
	case err != nil:
		return responses.FollowState{}, notFound(err, apperr.ErrVendorNotFound)
	}
	return responses.FollowState{Following: true, FollowersCount: count}, nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID, vendorID uuid.UUID) (responses.FollowState, error) {
	if _, err := s.vendors.GetVendorByID(ctx, vendorID); err != nil {
		return responses.FollowState{}, notFound(err, apperr.ErrVendorNotFound)
	}

	count, err := s.follows.Unfollow(ctx, userID, vendorID)
	if err != nil {
		return responses.FollowState{}, notFound(err, apperr.ErrNotFollowing)
	}
	return responses.FollowState{Following: false, FollowersCount: count}, nil
}

func (s *FollowService) Status(ctx context.Context, userID, vendorID uuid.UUID) (responses.FollowState, error) {
	vendor, err := s.vendors.GetVendorByID(ctx, vendorID)
	if err != nil {
		return responses.FollowState{}, notFound(err, apperr.ErrVendorNotFound)
	}
	following, err := s.follows.IsFollowing(ctx, userID, vendorID)
	if err != nil {
		return responses.FollowState{}, err
	}
	return responses.FollowState{Following: following, FollowersCount: vendor.FollowersCount}, nil
}

func (s *FollowService) Following(ctx context.Context, userID uuid.UUID) ([]models.Vendor, error) {
	vendors, err := s.follows.ListFollowedVendors(ctx, userID)
	if err != nil {
		return nil, err
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	return vendors, nil
}

// Followers is only visible to the vendor's owner.
func (s *FollowService) Followers(ctx context.Context, userID, vendorID uuid.UUID) ([]models.PublicUser, error) {
	if _, err := loadOwnedVendor(ctx, s.vendors, userID, vendorID); err != nil {
		return nil, err
	}

	ids, err := s.follows.ListFollowerIDs(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]models.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Public())
		}
	}
	return out, nil
}
