package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/cloudinary"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

var timeNow = time.Now

// ImageStore is the subset of the Cloudinary client the services need.
type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, folder string) (cloudinary.Uploaded, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// Notifier fans a notice out to users as in-app notifications and push messages.
type Notifier interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, notice Notice) error
}

type Notice struct {
	Type  string
	Title string
	Body  string
	Data  map[string]string
}

// notFound turns repository.ErrNotFound into the given user-facing error.
func notFound(err error, as *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return as.Wrap(err)
	}
	return err
}

func loadOwnedVendor(ctx context.Context, vendors repository.VendorRepository, userID, vendorID uuid.UUID) (*models.Vendor, error) {
	vendor, err := vendors.GetVendorByID(ctx, vendorID)
	if err != nil {
		return nil, notFound(err, apperr.ErrVendorNotFound)
	}
	if !vendor.OwnedBy(userID) {
		return nil, apperr.ErrForbidden
	}
	return vendor, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// patch copies every non-nil pointer into fields under its column name.
type patch map[string]interface{}

func (p patch) str(column string, v *string) {
	if v != nil {
		p[column] = strings.TrimSpace(*v)
	}
}

func (p patch) float(column string, v *float64) {
	if v != nil {
		p[column] = *v
	}
}

func (p patch) boolean(column string, v *bool) {
	if v != nil {
		p[column] = *v
	}
}

// dropImage deletes a replaced or orphaned image. Failures only get logged.
func dropImage(ctx context.Context, images ImageStore, log logger.Logger, publicID string) {
	if publicID == "" || images == nil {
		return
	}
	if err := images.DeleteImage(ctx, publicID); err != nil {
		log.Warn("Failed to delete image %s: %v", publicID, err)
	}
}
