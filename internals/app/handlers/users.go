package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/services"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type userService interface {
	Register(ctx context.Context, in services.RegisterInput) (*responses.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*responses.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in services.ProfileInput) (*models.User, error)
	UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error
}

type UserHandler struct {
	users userService
	log   logger.Logger
}

func NewUserHandler(users userService, log logger.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	resp, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err, "Error al registrar usuario")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var in loginRequest
	if !bindJSON(c, &in) {
		return
	}
	resp, err := h.users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, h.log, err, "Error al iniciar sesión")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error al obtener el perfil")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.log, err, "Error al actualizar el perfil")
		return
	}
	c.JSON(http.StatusOK, user)
}

type fcmTokenRequest struct {
	Token string `json:"token"`
}

func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in fcmTokenRequest
	if !bindJSON(c, &in) {
		return
	}
	if err := h.users.UpdateFCMToken(c.Request.Context(), userID, in.Token); err != nil {
		respondError(c, h.log, err, "Error al guardar el token")
		return
	}
	c.Status(http.StatusNoContent)
}
