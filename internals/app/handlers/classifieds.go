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

type classifiedService interface {
	Create(ctx context.Context, userID uuid.UUID, in services.ClassifiedInput) (*models.Classified, error)
	List(ctx context.Context, filter repository.ClassifiedFilter) (responses.Page[models.Classified], error)
	Mine(ctx context.Context, userID uuid.UUID) ([]models.Classified, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Classified, error)
	Update(ctx context.Context, userID, id uuid.UUID, in services.ClassifiedInput) (*models.Classified, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Renew(ctx context.Context, userID, id uuid.UUID) (*models.Classified, error)
}

type ClassifiedHandler struct {
	classifieds classifiedService
	log         logger.Logger
}

func NewClassifiedHandler(classifieds classifiedService, log logger.Logger) *ClassifiedHandler {
	return &ClassifiedHandler{classifieds: classifieds, log: log}
}

func (h *ClassifiedHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.ClassifiedInput
	if !bindJSON(c, &in) {
		return
	}
	classified, err := h.classifieds.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.log, err, "Error al crear el clasificado")
		return
	}
	c.JSON(http.StatusCreated, classified)
}

func (h *ClassifiedHandler) List(c *gin.Context) {
	page, err := h.classifieds.List(c.Request.Context(), repository.ClassifiedFilter{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		City:       c.Query("city"),
		Pagination: pagination(c),
	})
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los clasificados")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ClassifiedHandler) Mine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.classifieds.Mine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener tus clasificados")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ClassifiedHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	classified, err := h.classifieds.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener el clasificado")
		return
	}
	c.JSON(http.StatusOK, classified)
}

func (h *ClassifiedHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.ClassifiedInput
	if !bindJSON(c, &in) {
		return
	}
	classified, err := h.classifieds.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, h.log, err, "Error al actualizar el clasificado")
		return
	}
	c.JSON(http.StatusOK, classified)
}

func (h *ClassifiedHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.classifieds.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err, "Error al eliminar el clasificado")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clasificado eliminado"})
}

func (h *ClassifiedHandler) Renew(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	classified, err := h.classifieds.Renew(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err, "Error al renovar el clasificado")
		return
	}
	c.JSON(http.StatusOK, classified)
}
