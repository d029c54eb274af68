// Package handlers adapts HTTP requests to the services. Every failure is answered as
// {"error": "<mensaje>"} with a fixed Spanish message.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/app/middleware"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// respondError sends err's status and message when it is an *apperr.Error, and a 500 with
// fallback otherwise.
func respondError(c *gin.Context, log logger.Logger, err error, fallback string) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}

	log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func abort(c *gin.Context, err *apperr.Error) {
	c.JSON(err.Status, gin.H{"error": err.Message})
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		abort(c, apperr.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser is only called behind RequireAuth, so a miss means the route was wired wrong.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		abort(c, apperr.ErrUnauthorized)
	}
	return id, ok
}

func pagination(c *gin.Context) repository.Pagination {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return repository.Pagination{Page: page, Limit: limit}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, apperr.ErrInvalidBody)
		return false
	}
	return true
}

func pngResponse(c *gin.Context, png []byte) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
