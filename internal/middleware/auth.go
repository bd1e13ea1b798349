package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/auth"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

const userContextKey = "currentUser"

// RequireAuth validates the bearer token and loads the account behind it.
// The loaded user is stored in the request context for handlers.
func RequireAuth(tokens *auth.TokenManager, users *repository.UsersRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				abortUnauthorized(c, "Token expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Account not found")
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, "Account is disabled")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole allows the request through only for the given roles.
// Must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "Not authenticated")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FORBIDDEN",
				Message: "Insufficient permissions",
			},
		})
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SupplierScope returns the supplier the user acts for. Admins are
// unscoped and get nil.
func SupplierScope(c *gin.Context) *uuid.UUID {
	user := CurrentUser(c)
	if user == nil || user.Role == models.RoleAdmin {
		return nil
	}
	return user.SupplierID
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
