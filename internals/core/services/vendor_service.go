package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/cache"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
	"github.com/mercadolocal/marketplace-service/internals/utils"
)

const (
	featuredCacheKey = "vendors:featured"
	featuredCacheTTL = 5 * time.Minute
	featuredLimit    = 20
)

type VendorInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Phone         *string  `json:"phone"`
	WhatsApp      *string  `json:"whatsapp"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	LogoURL       *string  `json:"logo_url"`
	LogoPublicID  *string  `json:"logo_public_id"`
	CoverURL      *string  `json:"cover_url"`
	CoverPublicID *string  `json:"cover_public_id"`
}

type VendorService struct {
	vendors repository.VendorRepository
	images  ImageStore
	cache   cache.Cache
	baseURL string
	log     logger.Logger
}

func NewVendorService(vendors repository.VendorRepository, images ImageStore, c cache.Cache, baseURL string, log logger.Logger) *VendorService {
	return &VendorService{
		vendors: vendors,
		images:  images,
		cache:   c,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (s *VendorService) Create(ctx context.Context, userID uuid.UUID, in VendorInput) (*models.Vendor, error) {
	name := trimmed(in.Name)
	if name == "" {
		return nil, apperr.ErrVendorNameRequired
	}

	if _, err := s.vendors.GetVendorByUserID(ctx, userID); err == nil {
		return nil, apperr.ErrVendorExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	vendor := &models.Vendor{
		UserID:        userID,
		Name:          name,
		Description:   trimmed(in.Description),
		Category:      trimmed(in.Category),
		Phone:         trimmed(in.Phone),
		WhatsApp:      trimmed(in.WhatsApp),
		Address:       trimmed(in.Address),
		City:          trimmed(in.City),
		LogoURL:       trimmed(in.LogoURL),
		LogoPublicID:  trimmed(in.LogoPublicID),
		CoverURL:      trimmed(in.CoverURL),
		CoverPublicID: trimmed(in.CoverPublicID),
	}
	if in.Lat != nil {
		vendor.Lat = *in.Lat
	}
	if in.Lng != nil {
		vendor.Lng = *in.Lng
	}

	if err := s.vendors.CreateVendor(ctx, vendor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrVendorExists.Wrap(err)
		}
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.vendors.GetVendorByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrVendorNotFound)
	}
	return vendor, nil
}

// Mine returns the vendor owned by userID.
func (s *VendorService) Mine(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.vendors.GetVendorByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperr.ErrVendorNotFound)
	}
	return vendor, nil
}

func (s *VendorService) List(ctx context.Context, filter repository.VendorFilter) (responses.Page[models.Vendor], error) {
	items, total, err := s.vendors.ListVendors(ctx, filter)
	if err != nil {
		return responses.Page[models.Vendor]{}, err
	}
	return responses.NewPage(items, total, filter.Page, filter.Limit), nil
}

func (s *VendorService) Featured(ctx context.Context) ([]models.Vendor, error) {
	if raw, err := s.cache.Get(ctx, featuredCacheKey); err == nil {
		var cached []models.Vendor
		if err := json.Unmarshal(raw, &cached); err == nil {
			return stillFeatured(cached, timeNow()), nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("Featured vendors cache read failed: %v", err)
	}

	vendors, err := s.vendors.ListFeaturedVendors(ctx, timeNow(), featuredLimit)
	if err != nil {
		return nil, err
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}

	if raw, err := json.Marshal(vendors); err == nil {
		if err := s.cache.Set(ctx, featuredCacheKey, raw, featuredCacheTTL); err != nil {
			s.log.Warn("Featured vendors cache write failed: %v", err)
		}
	}
	return vendors, nil
}

// stillFeatured drops entries whose window ended while they sat in the cache.
func stillFeatured(vendors []models.Vendor, now time.Time) []models.Vendor {
	out := vendors[:0]
	for _, v := range vendors {
		if v.FeaturedUntil != nil && v.FeaturedUntil.After(now) {
			out = append(out, v)
		}
	}
	return out
}

func (s *VendorService) InvalidateFeatured(ctx context.Context) {
	if err := s.cache.Delete(ctx, featuredCacheKey); err != nil {
		s.log.Warn("Featured vendors cache invalidation failed: %v", err)
	}
}

func (s *VendorService) Update(ctx context.Context, userID, vendorID uuid.UUID, in VendorInput) (*models.Vendor, error) {
	vendor, err := loadOwnedVendor(ctx, s.vendors, userID, vendorID)
	if err != nil {
		return nil, err
	}

	fields := patch{}
	if in.Name != nil {
		if trimmed(in.Name) == "" {
			return nil, apperr.ErrVendorNameRequired
		}
		fields.str("name", in.Name)
	}
	fields.str("description", in.Description)
	fields.str("category", in.Category)
	fields.str("phone", in.Phone)
	fields.str("whatsapp", in.WhatsApp)
	fields.str("address", in.Address)
	fields.str("city", in.City)
	fields.float("lat", in.Lat)
	fields.float("lng", in.Lng)
	fields.str("logo_url", in.LogoURL)
	fields.str("logo_public_id", in.LogoPublicID)
	fields.str("cover_url", in.CoverURL)
	fields.str("cover_public_id", in.CoverPublicID)

	if len(fields) == 0 {
		return vendor, nil
	}
	if err := s.vendors.UpdateVendor(ctx, vendorID, fields); err != nil {
		return nil, notFound(err, apperr.ErrVendorNotFound)
	}

	if in.LogoPublicID != nil && vendor.LogoPublicID != "" && vendor.LogoPublicID != trimmed(in.LogoPublicID) {
		dropImage(ctx, s.images, s.log, vendor.LogoPublicID)
	}
	if in.CoverPublicID != nil && vendor.CoverPublicID != "" && vendor.CoverPublicID != trimmed(in.CoverPublicID) {
		dropImage(ctx, s.images, s.log, vendor.CoverPublicID)
	}
	if vendor.Featured {
		s.InvalidateFeatured(ctx)
	}

	return s.Get(ctx, vendorID)
}

func (s *VendorService) Delete(ctx context.Context, userID, vendorID uuid.UUID) error {
	vendor, err := loadOwnedVendor(ctx, s.vendors, userID, vendorID)
	if err != nil {
		return err
	}
	productImages, err := s.vendors.DeleteVendor(ctx, vendorID)
	if err != nil {
		return notFound(err, apperr.ErrVendorNotFound)
	}

	dropImage(ctx, s.images, s.log, vendor.LogoPublicID)
	dropImage(ctx, s.images, s.log, vendor.CoverPublicID)
	for _, publicID := range productImages {
		dropImage(ctx, s.images, s.log, publicID)
	}
	if vendor.Featured {
		s.InvalidateFeatured(ctx)
	}
	return nil
}

// StorefrontQR renders a QR pointing at the vendor's public page.
func (s *VendorService) StorefrontQR(ctx context.Context, vendorID uuid.UUID) ([]byte, error) {
	if _, err := s.Get(ctx, vendorID); err != nil {
		return nil, err
	}
	return utils.QRCodePNG(fmt.Sprintf("%s/vendors/%s", s.baseURL, vendorID))
}

func (s *VendorService) ExpireFeatured(ctx context.Context) (int64, error) {
	n, err := s.vendors.ExpireFeatured(ctx, timeNow())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.InvalidateFeatured(ctx)
	}
	return n, nil
}
