package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
	"github.com/mercadolocal/marketplace-service/internals/utils"
)

const (
	couponCodeLength   = 8
	couponCodeAttempts = 3
)

type CouponInput struct {
	Code            string    `json:"code"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DiscountPercent int       `json:"discount_percent"`
	ValidUntil      time.Time `json:"valid_until"`
	MaxRedemptions  int       `json:"max_redemptions"`
}

type CouponService struct {
	coupons  repository.CouponRepository
	vendors  repository.VendorRepository
	follows  repository.FollowRepository
	notifier Notifier
	log      logger.Logger
}

func NewCouponService(coupons repository.CouponRepository, vendors repository.VendorRepository, follows repository.FollowRepository, notifier Notifier, log logger.Logger) *CouponService {
	return &CouponService{coupons: coupons, vendors: vendors, follows: follows, notifier: notifier, log: log}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *CouponService) Create(ctx context.Context, userID, vendorID uuid.UUID, in CouponInput) (*models.Coupon, error) {
	vendor, err := loadOwnedVendor(ctx, s.vendors, userID, vendorID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, apperr.ErrCouponFields
	case in.DiscountPercent < 1 || in.DiscountPercent > 100:
		return nil, apperr.ErrCouponDiscount
	case !in.ValidUntil.After(timeNow()):
		return nil, apperr.ErrCouponValidity
	case in.MaxRedemptions < 0:
		return nil, apperr.ErrInvalidBody
	}

	coupon := &models.Coupon{
		VendorID:        vendor.ID,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		DiscountPercent: in.DiscountPercent,
		ValidUntil:      in.ValidUntil,
		MaxRedemptions:  in.MaxRedemptions,
		Active:          true,
	}

	if code := normalizeCode(in.Code); code != "" {
		coupon.Code = code
		if err := s.coupons.CreateCoupon(ctx, coupon); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperr.ErrCouponCodeTaken.Wrap(err)
			}
			return nil, err
		}
	} else if err := s.createWithGeneratedCode(ctx, coupon); err != nil {
		return nil, err
	}

	followers, err := s.follows.ListFollowerIDs(ctx, vendor.ID)
	if err != nil {
		s.log.Warn("Failed to load followers of %s: %v", vendor.ID, err)
		return coupon, nil
	}
	err = s.notifier.Notify(ctx, followers, Notice{
		Type:  models.NotificationNewCoupon,
		Title: vendor.Name,
		Body:  fmt.Sprintf("%d%% de descuento: %s", coupon.DiscountPercent, coupon.Title),
		Data:  map[string]string{"vendor_id": vendor.ID.String(), "code": coupon.Code},
	})
	if err != nil {
		s.log.Warn("Failed to notify followers of %s: %v", vendor.ID, err)
	}
	return coupon, nil
}

func (s *CouponService) createWithGeneratedCode(ctx context.Context, coupon *models.Coupon) error {
	var err error
	for i := 0; i < couponCodeAttempts; i++ {
		if coupon.Code, err = utils.RandomCode(couponCodeLength); err != nil {
			return err
		}
		err = s.coupons.CreateCoupon(ctx, coupon)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return apperr.ErrCouponCodeTaken.Wrap(err)
}

func (s *CouponService) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Coupon, error) {
	if _, err := s.vendors.GetVendorByID(ctx, vendorID); err != nil {
		return nil, notFound(err, apperr.ErrVendorNotFound)
	}
	coupons, err := s.coupons.ListCouponsByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	return coupons, nil
}

func (s *CouponService) ListActive(ctx context.Context, page repository.Pagination) (responses.Page[models.Coupon], error) {
	items, total, err := s.coupons.ListActiveCoupons(ctx, timeNow(), page)
	if err != nil {
		return responses.Page[models.Coupon]{}, err
	}
	return responses.NewPage(items, total, page.Page, page.Limit), nil
}

func (s *CouponService) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.coupons.GetCouponByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, notFound(err, apperr.ErrCouponNotFound)
	}
	return coupon, nil
}

func (s *CouponService) Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.CouponRedemption, error) {
	coupon, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.Expired(timeNow()) {
		return nil, apperr.ErrCouponExpired
	}
	if coupon.Exhausted() {
		return nil, apperr.ErrCouponExhausted
	}

	redemption, err := s.coupons.Redeem(ctx, coupon.ID, userID)
	switch {
	case errors.Is(err, repository.ErrLimitReached):
		return nil, apperr.ErrCouponExhausted.Wrap(err)
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrCouponRedeemed.Wrap(err)
	case err != nil:
		return nil, err
	}
	return redemption, nil
}

func (s *CouponService) Delete(ctx context.Context, userID, couponID uuid.UUID) error {
	coupon, err := s.coupons.GetCouponByID(ctx, couponID)
	if err != nil {
		return notFound(err, apperr.ErrCouponNotFound)
	}
	if _, err := loadOwnedVendor(ctx, s.vendors, userID, coupon.VendorID); err != nil {
		return err
	}
	return notFound(s.coupons.DeleteCoupon(ctx, couponID), apperr.ErrCouponNotFound)
}

func (s *CouponService) QR(ctx context.Context, code string) ([]byte, error) {
	coupon, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return utils.QRCodePNG(coupon.Code)
}
