package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/app/middleware"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/core/services"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type productService interface {
	Create(ctx context.Context, userID, vendorID uuid.UUID, in services.ProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Search(ctx context.Context, viewerID *uuid.UUID, filter repository.ProductFilter) (responses.Page[models.Product], error)
	ListByVendor(ctx context.Context, viewerID *uuid.UUID, vendorID uuid.UUID, page repository.Pagination) (responses.Page[models.Product], error)
	Update(ctx context.Context, userID, productID uuid.UUID, in services.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Publish(ctx context.Context, userID, productID uuid.UUID) (responses.PublishResult, error)
}

type ProductHandler struct {
	products productService
	log      logger.Logger
}

func NewProductHandler(products productService, log logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

func viewer(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}

func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	vendorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), userID, vendorID, in)
	if err != nil {
		respondError(c, h.log, err, "Error al crear el producto")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := repository.ProductFilter{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		Pagination: pagination(c),
	}
	if raw := c.Query("vendor_id"); raw != "" {
		vendorID, err := uuid.Parse(raw)
		if err != nil {
			abort(c, apperr.ErrInvalidID)
			return
		}
		filter.VendorID = &vendorID
	}

	page, err := h.products.Search(c.Request.Context(), viewer(c), filter)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los productos")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) ListByVendor(c *gin.Context) {
	vendorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, err := h.products.ListByVendor(c.Request.Context(), viewer(c), vendorID, pagination(c))
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los productos")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener el producto")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, h.log, err, "Error al actualizar el producto")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, "Error al eliminar el producto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}

func (h *ProductHandler) Publish(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.products.Publish(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err, "Error al publicar el producto")
		return
	}
	c.JSON(http.StatusOK, result)
}
