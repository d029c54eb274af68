package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
)

const userIDKey = "userID"

// Authenticator resolves a bearer token to the caller's id.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			Abort(c, apperr.ErrUnauthorized)
			return
		}
		userID, err := auth.Authenticate(token)
		if err != nil {
			Abort(c, apperr.ErrUnauthorized)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and lets anonymous requests through.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if userID, err := auth.Authenticate(token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetUserID(c *gin.Context, id uuid.UUID) {
	c.Set(userIDKey, id)
}

func Abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Status, gin.H{"error": err.Message})
}
