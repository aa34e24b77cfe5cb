package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/security"
)

// AuthMiddleware validates bearer tokens and loads the requester's identity
// into the gin context.
type AuthMiddleware struct {
	tokenManager *security.TokenManager
}

func NewAuthMiddleware(tokenManager *security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tokenManager}
}

// RequireAuth rejects requests without a valid bearer token. An expired
// token gets a distinct message from a generically invalid one.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, status, message := am.authenticate(c)
		if claims == nil {
			c.JSON(status, models.Fail(message))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// OptionalAuth loads identity when a valid token is present and continues
// anonymously otherwise.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _, _ := am.authenticate(c); claims != nil {
			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)
		}
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context) (*security.Claims, int, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, "authorization header missing"
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") {
		return nil, http.StatusUnauthorized, "invalid authorization header format"
	}

	claims, err := am.tokenManager.Validate(tokenParts[1])
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "token expired"
		}
		return nil, http.StatusUnauthorized, "invalid token"
	}

	return claims, 0, ""
}

// RequireRoleMiddleware checks if user has required role. Platform admins
// pass every gate.
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, models.Fail("user role not found in context"))
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, models.Fail("invalid user role format"))
			c.Abort()
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.JSON(http.StatusForbidden, models.Fail("insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}
