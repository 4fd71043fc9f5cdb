package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/domain"
	jwtsvc "nepalstay/internal/pkg/jwt"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth requires a valid bearer token and stores its claims on the context.
func JWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized, no token")
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Empty token")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized, token failed")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// RequireRole lets through only the listed roles. Must run after JWTAuth.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor.UserID == 0 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "FORBIDDEN",
			"User role "+string(actor.Role)+" is not authorized to access this route")
	}
}

// AdminOnly requires the company admin role.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleCompanyAdmin)
}

// Actor returns the authenticated caller, or the zero Actor.
func Actor(c *gin.Context) domain.Actor {
	role, _ := c.Get(ctxRole)
	r, _ := role.(domain.UserRole)
	return domain.Actor{UserID: c.GetInt64(ctxUserID), Role: r}
}
