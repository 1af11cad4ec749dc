package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cryptoLedger/internal/app"
	"cryptoLedger/internal/domain"
)

// Handler exposes the ledger and auth services over HTTP. It only
// translates between the wire and the core: all business rules live in
// the services.
type Handler struct {
	ledger *app.LedgerService
	auth   *app.AuthService
}

// NewHandler creates a new API handler.
func NewHandler(ledger *app.LedgerService, authSvc *app.AuthService) *Handler {
	return &Handler{ledger: ledger, auth: authSvc}
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	token, expiresAt, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}

// --- Trades ---

type createTradeRequest struct {
	Symbol     string          `json:"symbol" binding:"required"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Quantity   decimal.Decimal `json:"quantity"`
	TradeType  domain.Side     `json:"trade_type" binding:"required"`
}

func (h *Handler) createTrade(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "malformed trade payload")
		return
	}

	trade, err := h.ledger.CreateTrade(c.Request.Context(), claims.UserID, req.Symbol, req.TradeType, req.EntryPrice, req.Quantity)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTradeResponse(trade))
}

func (h *Handler) listTrades(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	var status *domain.TradeStatus
	if raw := c.Query("status"); raw != "" {
		parsed := domain.TradeStatus(strings.ToUpper(raw))
		if !parsed.IsValid() {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be OPEN or CLOSED")
			return
		}
		status = &parsed
	}

	trades, err := h.ledger.ListTrades(c.Request.Context(), claims.UserID, status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTradeResponses(trades))
}

func (h *Handler) getTrade(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	tradeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A malformed id is treated the same as an unknown one.
		writeError(c, http.StatusNotFound, "TRADE_NOT_FOUND", "Trade not found")
		return
	}

	trade, err := h.ledger.GetTrade(c.Request.Context(), claims.UserID, tradeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTradeResponse(trade))
}

type closeTradeRequest struct {
	ExitPrice decimal.Decimal `json:"exit_price"`
}

func (h *Handler) closeTrade(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	tradeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusNotFound, "TRADE_NOT_FOUND", "Trade not found")
		return
	}

	var req closeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "malformed close payload")
		return
	}

	trade, err := h.ledger.CloseTrade(c.Request.Context(), claims.UserID, tradeID, req.ExitPrice)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTradeResponse(trade))
}

// --- Portfolio ---

func (h *Handler) portfolioSummary(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	summary, err := h.ledger.PortfolioSummary(c.Request.Context(), claims.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// --- Admin ---

func (h *Handler) adminListTrades(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	trades, err := h.ledger.ListAllTrades(c.Request.Context(), claims.IsAdmin)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTradeResponses(trades))
}
