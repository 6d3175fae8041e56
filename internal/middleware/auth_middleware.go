package middleware

import (
	"net/http"
	"strings"

	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys and headers the gatekeeper fills for downstream handlers.
const (
	ContextUserIDKey   = "userID"
	ContextUsernameKey = "username"
	ContextUserRoleKey = "userRole"

	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Gatekeeper authenticates the request from the auth cookie, falling back to
// an "Authorization: Bearer" header. Missing or invalid tokens get 401.
func Gatekeeper(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Never trust identity headers supplied by the client.
		c.Request.Header.Del(HeaderUserID)
		c.Request.Header.Del(HeaderUserRole)

		tokenString := tokenFromRequest(c, cookieName)
		if tokenString == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", nil))
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.LogDebug("rejected token", map[string]interface{}{"error": err.Error(), "path": c.FullPath()})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token.", nil))
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Request.Header.Set(HeaderUserID, utils.Int64ToStr(claims.UserID))
		c.Request.Header.Set(HeaderUserRole, claims.Role)

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
