package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyUser     = "auth_user"
)

// TokenAuthenticator resolves bearer tokens to users.
type TokenAuthenticator interface {
	CurrentUser(ctx context.Context, token string) (*entities.User, error)
}

// Middleware enforces bearer token authentication.
type Middleware struct {
	authenticator TokenAuthenticator
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(authenticator TokenAuthenticator) *Middleware {
	return &Middleware{authenticator: authenticator}
}

// Required rejects requests without a valid bearer token. Every failure gets
// the same response.
func (m *Middleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		user, err := m.authenticator.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenExpired) {
				log.Error().Err(err).Msg("failed to resolve bearer token")
			}
			unauthorized(c)
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUsername, user.Username)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// GetUserID returns the authenticated user id from the context, or 0.
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextKeyUserID); ok {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

// GetUsername returns the authenticated username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetUser returns the authenticated user, or nil.
func GetUser(c *gin.Context) *entities.User {
	if v, ok := c.Get(ContextKeyUser); ok {
		if u, ok := v.(*entities.User); ok {
			return u
		}
	}
	return nil
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "could not validate credentials",
		"code":  "UNAUTHORIZED",
	})
}
