package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cryptoLedger/internal/auth"
)

const claimsContextKey = "authClaims"

// claimsFrom returns the authenticated claims stored by RequireAuth.
func claimsFrom(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}

// RequireAuth validates the bearer token and stores its claims on the
// request context. Requests without a valid token never reach the core.
func RequireAuth(jwt auth.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}
		claims, err := jwt.Verify(token)
		if err != nil {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin flag.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}
		if !claims.IsAdmin {
			writeError(c, http.StatusForbidden, "FORBIDDEN", "Admin privileges required")
			return
		}
		c.Next()
	}
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
