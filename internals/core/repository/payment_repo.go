package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentStorage struct {
	DB *gorm.DB
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentBySession(ctx context.Context, sessionID string) (*models.Payment, error)
	CompletePayment(ctx context.Context, sessionID string, now time.Time, period time.Duration) (*models.Vendor, bool, error)
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentStorage{DB: db}
}

func (r *PaymentStorage) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := r.DB.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", translate(err))
	}
	return nil
}

func (r *PaymentStorage) GetPaymentBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB.WithContext(ctx).First(&payment, "session_id = ?", sessionID).Error; err != nil {
		return nil, fmt.Errorf("failed to get payment for session %s: %w", sessionID, translate(err))
	}
	return &payment, nil
}

// CompletePayment marks a pending payment paid and extends its vendor's featured
// window by period, starting from the current window end when it is still in the
// future. Both writes share one transaction. The bool is false when the payment
// was no longer pending, in which case nothing changes.
func (r *PaymentStorage) CompletePayment(ctx context.Context, sessionID string, now time.Time, period time.Duration) (*models.Vendor, bool, error) {
	var (
		vendor  models.Vendor
		applied bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Payment{}).
			Where("session_id = ? AND status = ?", sessionID, models.PaymentPending).
			Update("status", models.PaymentPaid)
		if result.Error != nil {
			return fmt.Errorf("failed to mark payment paid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		var payment models.Payment
		if err := tx.Select("vendor_id").First(&payment, "session_id = ?", sessionID).Error; err != nil {
			return fmt.Errorf("failed to reload payment %s: %w", sessionID, translate(err))
		}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&vendor, "id = ?", payment.VendorID).Error
		if err != nil {
			return fmt.Errorf("failed to load paid vendor %s: %w", payment.VendorID, translate(err))
		}

		from := now
		if vendor.FeaturedUntil != nil && vendor.FeaturedUntil.After(now) {
			from = *vendor.FeaturedUntil
		}
		until := from.Add(period)
		err = tx.Model(&models.Vendor{}).
			Where("id = ?", vendor.ID).
			Updates(map[string]interface{}{"featured": true, "featured_until": until}).Error
		if err != nil {
			return fmt.Errorf("failed to feature vendor: %w", err)
		}

		vendor.Featured = true
		vendor.FeaturedUntil = &until
		applied = true
		return nil
	})
	if err != nil || !applied {
		return nil, false, err
	}
	return &vendor, true, nil
}
