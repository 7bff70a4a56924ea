package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kyc-hub/models"
	"kyc-hub/services"
)

// Context keys set by AuthMiddleware
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
	JTIKey    = "jti"
	ClaimsKey = "claims"
)

// Authenticator validates a session token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Claims, error)
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token, err := c.Cookie("token"); err == nil {
		return token
	}
	return ""
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenErrorMessage(err)})
			return
		}
		if claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID missing in token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Set(JTIKey, claims.ID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch msg := err.Error(); {
	case strings.HasSuffix(msg, "token expired"):
		return "Token expired"
	case strings.HasSuffix(msg, "token revoked"):
		return "Token has been revoked"
	default:
		return "Invalid token"
	}
}

// AdminRequired must run after AuthMiddleware
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administration rights required"})
			return
		}
		c.Next()
	}
}

// CurrentClaims returns the claims stored by AuthMiddleware
func CurrentClaims(c *gin.Context) (*services.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.Claims)
	return claims, ok
}
