package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/jwt"
)

const (
	UserIDKey     = "user_id"
	EmailKey      = "email"
	UsernameKey   = "username"
	RolesKey      = "roles"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "

	// Query parameter fallback for WebSocket upgrades, where browsers
	// cannot set the Authorization header.
	tokenQueryKey = "token"
)

// AuthMiddleware validates JWT access tokens.
type AuthMiddleware struct {
	manager *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(manager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{manager: manager}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization token",
			})
			return
		}

		claims, err := m.manager.Validate(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": msg,
			})
			return
		}

		// Set user info in context
		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(UsernameKey, claims.Username)
		c.Set(RolesKey, claims.Roles)

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthHeaderKey)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return c.Query(tokenQueryKey)
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(UsernameKey); exists {
		return username.(string)
	}
	return ""
}

// GetEmail extracts email from Gin context.
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(EmailKey); exists {
		return email.(string)
	}
	return ""
}

// GetRoles extracts roles from Gin context.
func GetRoles(c *gin.Context) []string {
	if roles, exists := c.Get(RolesKey); exists {
		return roles.([]string)
	}
	return nil
}
