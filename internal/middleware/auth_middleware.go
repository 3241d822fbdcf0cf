package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID   uuid.UUID  `json:"user_id"`
	Username string     `json:"username"`
	Role     string     `json:"role"`
	SpaID    *uuid.UUID `json:"spa_id,omitempty"`
}

// AuthMiddleware creates a middleware that validates JWT tokens. All
// authentication failures return the same 401 body; the cause is logged
// server-side only.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			rejectUnauthenticated(c, "missing Authorization header")
			return
		}

		// Check Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			rejectUnauthenticated(c, "malformed Authorization header")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			rejectUnauthenticated(c, "empty bearer token")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				rejectUnauthenticated(c, "token expired")
			} else {
				rejectUnauthenticated(c, fmt.Sprintf("invalid token: %v", err))
			}
			return
		}

		userContext := UserContext{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
			SpaID:    claims.SpaID,
		}

		c.Set(UserContextKey, userContext)
		c.Next()
	}
}

// rejectUnauthenticated aborts with the single unauthorized body used for
// every authentication failure. The caller never learns whether the header
// was missing, malformed, expired, or forged.
func rejectUnauthenticated(c *gin.Context, cause string) {
	log.Printf("AUTH FAILED: %s - Path: %s, IP: %s", cause, c.Request.URL.Path, c.ClientIP())
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "Authentication required",
		"code":    "UNAUTHORIZED",
	})
	c.Abort()
}

// RequireRole creates a middleware that checks if user has one of the
// required roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, requiredRole := range roles {
			if userCtx.Role == requiredRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireActiveOfficer re-checks a government officer's account against the
// database on every request. A revoked or expired officer account is denied
// even while its token is still otherwise valid.
func RequireActiveOfficer(userRepo *database.AdminUserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		if userCtx.Role != models.RoleGovernmentOfficer {
			c.Next()
			return
		}

		active, err := userRepo.IsOfficerActive(userCtx.UserID, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to verify account status",
				"code":    "ACCOUNT_CHECK_FAILED",
			})
			c.Abort()
			return
		}
		if !active {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "account_expired",
				"message": "Your officer account has expired or been deactivated",
				"code":    "ACCOUNT_EXPIRED",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePaymentCurrent blocks spa accounts whose membership fee is overdue.
// Payment routes are exempt so an overdue spa can still settle its dues.
func RequirePaymentCurrent(spaRepo *database.SpaRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		if userCtx.Role != models.RoleAdminSpa || userCtx.SpaID == nil {
			c.Next()
			return
		}

		spa, err := spaRepo.GetByID(*userCtx.SpaID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to verify payment status",
				"code":    "PAYMENT_CHECK_FAILED",
			})
			c.Abort()
			return
		}

		if spa.IsOverdue(time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "payment_overdue",
				"message": "Your membership payment is overdue. Please settle outstanding fees to regain access.",
				"code":    "PAYMENT_OVERDUE",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSpaScope resolves the spa a spa-admin request operates on. Spa
// admins are pinned to their own spa; association admins may target any
// spa via the :spa_id route parameter.
func RequireSpaScope(c *gin.Context) (uuid.UUID, bool) {
	userCtx, exists := GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "User context not found",
			"code":    "MISSING_USER_CONTEXT",
		})
		return uuid.Nil, false
	}

	if userCtx.Role == models.RoleAdminSpa {
		if userCtx.SpaID == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Your account is not linked to a spa",
				"code":    "NO_SPA_SCOPE",
			})
			return uuid.Nil, false
		}
		return *userCtx.SpaID, true
	}

	spaID, err := uuid.Parse(c.Param("spa_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid spa ID",
			"code":    "INVALID_SPA_ID",
		})
		return uuid.Nil, false
	}
	return spaID, true
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}
