package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type followService interface {
	Follow(ctx context.Context, userID, vendorID uuid.UUID) (responses.FollowState, error)
	Unfollow(ctx context.Context, userID, vendorID uuid.UUID) (responses.FollowState, error)
	Status(ctx context.Context, userID, vendorID uuid.UUID) (responses.FollowState, error)
	Following(ctx context.Context, userID uuid.UUID) ([]models.Vendor, error)
	Followers(ctx context.Context, userID, vendorID uuid.UUID) ([]models.PublicUser, error)
}

type favoriteService interface {
	Add(ctx context.Context, userID, productID uuid.UUID) (responses.FavoriteState, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (responses.FavoriteState, error)
	Status(ctx context.Context, userID, productID uuid.UUID) (responses.FavoriteState, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

// SocialHandler serves follows and favorites.
type SocialHandler struct {
	follows   followService
	favorites favoriteService
	log       logger.Logger
}

func NewSocialHandler(follows followService, favorites favoriteService, log logger.Logger) *SocialHandler {
	return &SocialHandler{follows: follows, favorites: favorites, log: log}
}

// userAndTarget reads the caller and the :id path param.
func userAndTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *SocialHandler) Follow(c *gin.Context) {
	userID, vendorID, ok := userAndTarget(c)
	if !ok {
		return
	}
	state, err := h.follows.Follow(c.Request.Context(), userID, vendorID)
	if err != nil {
		respondError(c, h.log, err, "Error al seguir el negocio")
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	userID, vendorID, ok := userAndTarget(c)
	if !ok {
		return
	}
	state, err := h.follows.Unfollow(c.Request.Context(), userID, vendorID)
	if err != nil {
		respondError(c, h.log, err, "Error al dejar de seguir el negocio")
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SocialHandler) FollowStatus(c *gin.Context) {
	userID, vendorID, ok := userAndTarget(c)
	if !ok {
		return
	}
	state, err := h.follows.Status(c.Request.Context(), userID, vendorID)
	if err != nil {
		respondError(c, h.log, err, "Error al consultar el seguimiento")
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SocialHandler) Following(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	vendors, err := h.follows.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los negocios seguidos")
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (h *SocialHandler) Followers(c *gin.Context) {
	userID, vendorID, ok := userAndTarget(c)
	if !ok {
		return
	}
	users, err := h.follows.Followers(c.Request.Context(), userID, vendorID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los seguidores")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *SocialHandler) AddFavorite(c *gin.Context) {
	userID, productID, ok := userAndTarget(c)
	if !ok {
		return
	}
	state, err := h.favorites.Add(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.log, err, "Error al agregar a favoritos")
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (h *SocialHandler) RemoveFavorite(c *gin.Context) {
	userID, productID, ok := userAndTarget(c)
	if !ok {
		return
	}
	state, err := h.favorites.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.log, err, "Error al quitar de favoritos")
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SocialHandler) FavoriteStatus(c *gin.Context) {
	userID, productID, ok := userAndTarget(c)
	if !ok {
		return
	}
	state, err := h.favorites.Status(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.log, err, "Error al consultar favoritos")
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SocialHandler) Favorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	products, err := h.favorites.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener los favoritos")
		return
	}
	c.JSON(http.StatusOK, products)
}
