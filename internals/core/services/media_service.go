package services

import (
	"context"
	"io"
	"strings"

	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

const MaxImageBytes = 5 << 20

var uploadFolders = map[string]bool{
	"vendors":     true,
	"products":    true,
	"classifieds": true,
	"avatars":     true,
}

type MediaService struct {
	images ImageStore
	log    logger.Logger
}

func NewMediaService(images ImageStore, log logger.Logger) *MediaService {
	return &MediaService{images: images, log: log}
}

// UploadImage validates and stores an image. Unknown folders fall back to "products".
func (s *MediaService) UploadImage(ctx context.Context, file io.Reader, size int64, contentType, folder string) (responses.UploadResult, error) {
	if file == nil || size == 0 {
		return responses.UploadResult{}, apperr.ErrImageRequired
	}
	if size > MaxImageBytes {
		return responses.UploadResult{}, apperr.ErrImageTooLarge
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return responses.UploadResult{}, apperr.ErrImageFormat
	}
	if !uploadFolders[folder] {
		folder = "products"
	}

	uploaded, err := s.images.UploadImage(ctx, file, folder)
	if err != nil {
		s.log.Error("Image upload failed: %v", err)
		return responses.UploadResult{}, apperr.ErrImageUpload.Wrap(err)
	}
	return responses.UploadResult{URL: uploaded.URL, PublicID: uploaded.PublicID}, nil
}
