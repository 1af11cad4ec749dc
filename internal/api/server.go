package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptoLedger/internal/auth"
)

// NewRouter assembles the HTTP routes around the handler. Auth endpoints
// are public; everything else sits behind the bearer-token middleware, and
// the admin listing additionally behind the admin check.
func NewRouter(h *Handler, jwt auth.JWT) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	authed := r.Group("/", RequireAuth(jwt))
	{
		authed.POST("/trades", h.createTrade)
		authed.GET("/trades", h.listTrades)
		authed.GET("/trades/:id", h.getTrade)
		authed.PATCH("/trades/:id/close", h.closeTrade)
		authed.GET("/portfolio/summary", h.portfolioSummary)

		admin := authed.Group("/admin", RequireAdmin())
		admin.GET("/trades", h.adminListTrades)
	}

	return r
}
