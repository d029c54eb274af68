package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/core/services"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type couponService interface {
	Create(ctx context.Context, userID, vendorID uuid.UUID, in services.CouponInput) (*models.Coupon, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Coupon, error)
	ListActive(ctx context.Context, page repository.Pagination) (responses.Page[models.Coupon], error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.CouponRedemption, error)
	Delete(ctx context.Context, userID, couponID uuid.UUID) error
	QR(ctx context.Context, code string) ([]byte, error)
}

type CouponHandler struct {
	coupons couponService
	log     logger.Logger
}

func NewCouponHandler(coupons couponService, log logger.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, log: log}
}

func (h *CouponHandler) Create(c *gin.Context) {
	userID, vendorID, ok := userAndTarget(c)
	if !ok {
		return
	}
	var in services.CouponInput
	if !bindJSON(c, &in) {
		return
	}
	coupon, err := h.coupons.Create(c.Request.Context(), userID, vendorID, in)
	if err != nil {
		respondError(c, h.log, err, "Error al crear el cupón")
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) ListByVendor(c *gin.Context) {
	vendorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	coupons, err := h.coupons.ListByVendor(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los cupones")
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) ListActive(c *gin.Context) {
	page, err := h.coupons.ListActive(c.Request.Context(), pagination(c))
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los cupones")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CouponHandler) Get(c *gin.Context) {
	coupon, err := h.coupons.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.log, err, "Error al obtener el cupón")
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) Redeem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	redemption, err := h.coupons.Redeem(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		respondError(c, h.log, err, "Error al canjear el cupón")
		return
	}
	c.JSON(http.StatusCreated, redemption)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	userID, couponID, ok := userAndTarget(c)
	if !ok {
		return
	}
	if err := h.coupons.Delete(c.Request.Context(), userID, couponID); err != nil {
		respondError(c, h.log, err, "Error al eliminar el cupón")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cupón eliminado"})
}

func (h *CouponHandler) QR(c *gin.Context) {
	png, err := h.coupons.QR(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.log, err, "Error al generar el código QR")
		return
	}
	pngResponse(c, png)
}
