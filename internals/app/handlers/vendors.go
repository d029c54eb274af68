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

type vendorService interface {
	Create(ctx context.Context, userID uuid.UUID, in services.VendorInput) (*models.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	Mine(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context, filter repository.VendorFilter) (responses.Page[models.Vendor], error)
	Featured(ctx context.Context) ([]models.Vendor, error)
	Update(ctx context.Context, userID, vendorID uuid.UUID, in services.VendorInput) (*models.Vendor, error)
	Delete(ctx context.Context, userID, vendorID uuid.UUID) error
	StorefrontQR(ctx context.Context, vendorID uuid.UUID) ([]byte, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, userID, vendorID uuid.UUID) (responses.CheckoutResponse, error)
}

type VendorHandler struct {
	vendors  vendorService
	payments checkoutService
	log      logger.Logger
}

func NewVendorHandler(vendors vendorService, payments checkoutService, log logger.Logger) *VendorHandler {
	return &VendorHandler{vendors: vendors, payments: payments, log: log}
}

func (h *VendorHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.VendorInput
	if !bindJSON(c, &in) {
		return
	}
	vendor, err := h.vendors.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.log, err, "Error al crear el negocio")
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) List(c *gin.Context) {
	page, err := h.vendors.List(c.Request.Context(), repository.VendorFilter{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		City:       c.Query("city"),
		Pagination: pagination(c),
	})
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los negocios")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *VendorHandler) Featured(c *gin.Context) {
	vendors, err := h.vendors.Featured(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los negocios destacados")
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (h *VendorHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	vendor, err := h.vendors.Mine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener el negocio")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vendor, err := h.vendors.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener el negocio")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.VendorInput
	if !bindJSON(c, &in) {
		return
	}
	vendor, err := h.vendors.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, h.log, err, "Error al actualizar el negocio")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.vendors.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, "Error al eliminar el negocio")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Negocio eliminado"})
}

func (h *VendorHandler) QR(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	png, err := h.vendors.StorefrontQR(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Error al generar el código QR")
		return
	}
	pngResponse(c, png)
}

func (h *VendorHandler) FeatureCheckout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.Checkout(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err, "Error al iniciar el pago")
		return
	}
	c.JSON(http.StatusOK, resp)
}
