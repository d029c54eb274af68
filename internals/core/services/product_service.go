package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type ProductInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Category      *string  `json:"category"`
	ImageURL      *string  `json:"image_url"`
	ImagePublicID *string  `json:"image_public_id"`
	Available     *bool    `json:"available"`
}

type CaptionWriter interface {
	ProductCaption(ctx context.Context, vendorName, productName, description string, price float64) (string, error)
}

type PagePublisher interface {
	Enabled() bool
	PublishPhoto(ctx context.Context, imageURL, caption string) (string, error)
}

type ProductService struct {
	products  repository.ProductRepository
	vendors   repository.VendorRepository
	follows   repository.FollowRepository
	notifier  Notifier
	images    ImageStore
	captions  CaptionWriter
	publisher PagePublisher
	log       logger.Logger
}

func NewProductService(
	products repository.ProductRepository,
	vendors repository.VendorRepository,
	follows repository.FollowRepository,
	notifier Notifier,
	images ImageStore,
	captions CaptionWriter,
	publisher PagePublisher,
	log logger.Logger,
) *ProductService {
	return &ProductService{
		products:  products,
		vendors:   vendors,
		follows:   follows,
		notifier:  notifier,
		images:    images,
		captions:  captions,
		publisher: publisher,
		log:       log,
	}
}

func (s *ProductService) Create(ctx context.Context, userID, vendorID uuid.UUID, in ProductInput) (*models.Product, error) {
	vendor, err := loadOwnedVendor(ctx, s.vendors, userID, vendorID)
	if err != nil {
		return nil, err
	}

	name := trimmed(in.Name)
	if name == "" || in.Price == nil || *in.Price < 0 {
		return nil, apperr.ErrProductFields
	}

	product := &models.Product{
		VendorID:      vendor.ID,
		Name:          name,
		Description:   trimmed(in.Description),
		Price:         *in.Price,
		Category:      trimmed(in.Category),
		ImageURL:      trimmed(in.ImageURL),
		ImagePublicID: trimmed(in.ImagePublicID),
		Available:     true,
	}
	if in.Available != nil {
		product.Available = *in.Available
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.notifyFollowers(ctx, vendor, Notice{
		Type:  models.NotificationNewProduct,
		Title: vendor.Name,
		Body:  fmt.Sprintf("Nuevo producto: %s", product.Name),
		Data:  map[string]string{"vendor_id": vendor.ID.String(), "product_id": product.ID.String()},
	})
	return product, nil
}

func (s *ProductService) notifyFollowers(ctx context.Context, vendor *models.Vendor, notice Notice) {
	followers, err := s.follows.ListFollowerIDs(ctx, vendor.ID)
	if err != nil {
		s.log.Warn("Failed to load followers of %s: %v", vendor.ID, err)
		return
	}
	if err := s.notifier.Notify(ctx, followers, notice); err != nil {
		s.log.Warn("Failed to notify followers of %s: %v", vendor.ID, err)
	}
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrProductNotFound)
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) (responses.Page[models.Product], error) {
	items, total, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return responses.Page[models.Product]{}, err
	}
	return responses.NewPage(items, total, filter.Page, filter.Limit), nil
}

// ListByVendor shows unavailable products only to the vendor's owner.
func (s *ProductService) ListByVendor(ctx context.Context, viewerID *uuid.UUID, vendorID uuid.UUID, page repository.Pagination) (responses.Page[models.Product], error) {
	return s.Search(ctx, viewerID, repository.ProductFilter{VendorID: &vendorID, Pagination: page})
}

// Search is List with the owner exception: when the filter names a vendor the viewer owns,
// unavailable products are included.
func (s *ProductService) Search(ctx context.Context, viewerID *uuid.UUID, filter repository.ProductFilter) (responses.Page[models.Product], error) {
	filter.IncludeUnavailable = false
	if filter.VendorID == nil {
		return s.List(ctx, filter)
	}

	vendor, err := s.vendors.GetVendorByID(ctx, *filter.VendorID)
	if err != nil {
		return responses.Page[models.Product]{}, notFound(err, apperr.ErrVendorNotFound)
	}
	if viewerID != nil && vendor.OwnedBy(*viewerID) {
		filter.IncludeUnavailable = true
	}
	return s.List(ctx, filter)
}

func (s *ProductService) owned(ctx context.Context, userID, productID uuid.UUID) (*models.Product, *models.Vendor, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	vendor, err := loadOwnedVendor(ctx, s.vendors, userID, product.VendorID)
	if err != nil {
		return nil, nil, err
	}
	return product, vendor, nil
}

func (s *ProductService) Update(ctx context.Context, userID, productID uuid.UUID, in ProductInput) (*models.Product, error) {
	product, _, err := s.owned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	fields := patch{}
	if in.Name != nil {
		if trimmed(in.Name) == "" {
			return nil, apperr.ErrProductFields
		}
		fields.str("name", in.Name)
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, apperr.ErrProductFields
	}
	fields.float("price", in.Price)
	fields.str("description", in.Description)
	fields.str("category", in.Category)
	fields.str("image_url", in.ImageURL)
	fields.str("image_public_id", in.ImagePublicID)
	fields.boolean("available", in.Available)

	if len(fields) == 0 {
		return product, nil
	}
	if err := s.products.UpdateProduct(ctx, productID, fields); err != nil {
		return nil, notFound(err, apperr.ErrProductNotFound)
	}
	if in.ImagePublicID != nil && product.ImagePublicID != "" && product.ImagePublicID != trimmed(in.ImagePublicID) {
		dropImage(ctx, s.images, s.log, product.ImagePublicID)
	}
	return s.Get(ctx, productID)
}

func (s *ProductService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	product, _, err := s.owned(ctx, userID, productID)
	if err != nil {
		return err
	}
	if err := s.products.DeleteProduct(ctx, productID); err != nil {
		return notFound(err, apperr.ErrProductNotFound)
	}
	dropImage(ctx, s.images, s.log, product.ImagePublicID)
	return nil
}

// Publish posts the product photo to the marketplace Facebook page. The caption comes
// from the language model when available, else a plain name and price line.
func (s *ProductService) Publish(ctx context.Context, userID, productID uuid.UUID) (responses.PublishResult, error) {
	product, vendor, err := s.owned(ctx, userID, productID)
	if err != nil {
		return responses.PublishResult{}, err
	}
	if product.ImageURL == "" {
		return responses.PublishResult{}, apperr.ErrProductNeedsImage
	}
	if s.publisher == nil || !s.publisher.Enabled() {
		return responses.PublishResult{}, apperr.ErrFacebookDisabled
	}

	caption := fallbackCaption(vendor, product)
	if s.captions != nil {
		generated, err := s.captions.ProductCaption(ctx, vendor.Name, product.Name, product.Description, product.Price)
		if err == nil {
			caption = generated
		} else {
			s.log.Warn("Caption generation failed for %s, using fallback: %v", product.ID, err)
		}
	}

	postID, err := s.publisher.PublishPhoto(ctx, product.ImageURL, caption)
	if err != nil {
		return responses.PublishResult{}, apperr.ErrFacebookPublish.Wrap(err)
	}
	return responses.PublishResult{PostID: postID, Caption: caption}, nil
}

func fallbackCaption(vendor *models.Vendor, product *models.Product) string {
	return fmt.Sprintf("%s a $%.2f\nDisponible en %s", product.Name, product.Price, vendor.Name)
}
