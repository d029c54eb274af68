package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/payments"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type FeaturedPlan struct {
	PriceCents int64
	Currency   string
	Days       int
}

type PaymentService struct {
	payments repository.PaymentRepository
	vendors  *VendorService
	repo     repository.VendorRepository
	gateway  payments.Gateway
	notifier Notifier
	plan     FeaturedPlan
	log      logger.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	vendorRepo repository.VendorRepository,
	vendors *VendorService,
	gateway payments.Gateway,
	notifier Notifier,
	plan FeaturedPlan,
	log logger.Logger,
) *PaymentService {
	return &PaymentService{
		payments: paymentRepo,
		vendors:  vendors,
		repo:     vendorRepo,
		gateway:  gateway,
		notifier: notifier,
		plan:     plan,
		log:      log,
	}
}

// Checkout opens a Stripe checkout for featuring the vendor and records it as pending.
func (s *PaymentService) Checkout(ctx context.Context, userID, vendorID uuid.UUID) (responses.CheckoutResponse, error) {
	vendor, err := loadOwnedVendor(ctx, s.repo, userID, vendorID)
	if err != nil {
		return responses.CheckoutResponse{}, err
	}

	checkout, err := s.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		VendorID:    vendor.ID.String(),
		UserID:      userID.String(),
		VendorName:  vendor.Name,
		AmountCents: s.plan.PriceCents,
		Currency:    s.plan.Currency,
		Days:        s.plan.Days,
	})
	if errors.Is(err, payments.ErrNotConfigured) {
		return responses.CheckoutResponse{}, apperr.ErrPaymentsDisabled
	}
	if err != nil {
		return responses.CheckoutResponse{}, err
	}

	err = s.payments.CreatePayment(ctx, &models.Payment{
		VendorID:    vendor.ID,
		UserID:      userID,
		SessionID:   checkout.SessionID,
		AmountCents: s.plan.PriceCents,
		Currency:    s.plan.Currency,
		Status:      models.PaymentPending,
	})
	if err != nil {
		return responses.CheckoutResponse{}, err
	}
	return responses.CheckoutResponse{URL: checkout.URL}, nil
}

// HandleWebhook applies a verified Stripe event. Repeated deliveries are no-ops.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	switch {
	case errors.Is(err, payments.ErrNotConfigured):
		return apperr.ErrPaymentsDisabled
	case errors.Is(err, payments.ErrInvalidSignature):
		return apperr.ErrInvalidSignature.Wrap(err)
	case err != nil:
		return err
	}

	if event.Type != payments.EventCheckoutCompleted {
		s.log.Debug("Ignoring stripe event %s", event.Type)
		return nil
	}

	payment, err := s.payments.GetPaymentBySession(ctx, event.SessionID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("Stripe session %s has no payment record", event.SessionID)
		return nil
	}
	if err != nil {
		return err
	}
	if payment.Status == models.PaymentPaid {
		return nil
	}

	period := time.Duration(s.plan.Days) * 24 * time.Hour
	vendor, applied, err := s.payments.CompletePayment(ctx, event.SessionID, timeNow(), period)
	if err != nil {
		return fmt.Errorf("failed to complete payment %s: %w", event.SessionID, err)
	}
	if !applied {
		return nil
	}
	until := *vendor.FeaturedUntil
	s.vendors.InvalidateFeatured(ctx)

	err = s.notifier.Notify(ctx, []uuid.UUID{vendor.UserID}, Notice{
		Type:  models.NotificationFeatured,
		Title: "¡Tu negocio ahora es destacado!",
		Body:  fmt.Sprintf("%s aparecerá en destacados hasta el %s", vendor.Name, until.Format("02/01/2006")),
		Data:  map[string]string{"vendor_id": vendor.ID.String()},
	})
	if err != nil {
		s.log.Warn("Failed to notify featured vendor %s: %v", vendor.ID, err)
	}
	return nil
}
