package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/services"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

// webhook payloads from Stripe are small; anything past this is not a real event.
const maxWebhookBytes = 1 << 16

type mediaService interface {
	UploadImage(ctx context.Context, file io.Reader, size int64, contentType, folder string) (responses.UploadResult, error)
}

type webhookService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type UploadHandler struct {
	media mediaService
	log   logger.Logger
}

func NewUploadHandler(media mediaService, log logger.Logger) *UploadHandler {
	return &UploadHandler{media: media, log: log}
}

func (h *UploadHandler) Image(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageBytes+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, apperr.ErrImageTooLarge)
			return
		}
		abort(c, apperr.ErrImageRequired)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err, "Error al subir la imagen")
		return
	}
	defer file.Close()

	folder := c.DefaultQuery("folder", "products")
	result, err := h.media.UploadImage(c.Request.Context(), file, header.Size, header.Header.Get("Content-Type"), folder)
	if err != nil {
		respondError(c, h.log, err, "Error al subir la imagen")
		return
	}
	c.JSON(http.StatusCreated, result)
}

type PaymentHandler struct {
	payments webhookService
	log      logger.Logger
}

func NewPaymentHandler(payments webhookService, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// Webhook needs the raw body; the signature covers the exact bytes Stripe sent.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		abort(c, apperr.ErrInvalidBody)
		return
	}
	if err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, h.log, err, "Error al procesar el evento de pago")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
