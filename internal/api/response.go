package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cryptoLedger/internal/analytics"
	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// errorBody is the constant-shape error envelope. Every failure, including
// ownership misses, uses exactly this structure so responses carry no
// information beyond the code and message.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeServiceError maps core error taxonomy to wire-level responses.
// Anything outside the known taxonomy is reported as a generic internal
// failure with no detail leaked to the caller.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ports.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(c, http.StatusNotFound, "TRADE_NOT_FOUND", "Trade not found")
	case errors.Is(err, ports.ErrAlreadyClosed):
		writeError(c, http.StatusBadRequest, "TRADE_ALREADY_CLOSED", "Trade is already closed")
	case errors.Is(err, ports.ErrDuplicateEntry):
		writeError(c, http.StatusConflict, "USERNAME_EXISTS", "Username is already taken")
	case errors.Is(err, ports.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, ports.ErrPermissionDenied):
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Admin privileges required")
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred. Please try again later.")
	}
}

// tradeResponse is the wire form of a trade. Monetary fields serialize as
// decimal strings.
type tradeResponse struct {
	ID          int64               `json:"id"`
	Symbol      string              `json:"symbol"`
	TradeType   domain.Side         `json:"trade_type"`
	EntryPrice  decimal.Decimal     `json:"entry_price"`
	Quantity    decimal.Decimal     `json:"quantity"`
	Status      domain.TradeStatus  `json:"status"`
	ExitPrice   *decimal.Decimal    `json:"exit_price"`
	RealizedPnL *decimal.Decimal    `json:"realized_pnl"`
	CreatedAt   time.Time           `json:"created_at"`
	ClosedAt    *time.Time          `json:"closed_at"`
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		ID:          t.ID,
		Symbol:      t.Symbol,
		TradeType:   t.Side,
		EntryPrice:  t.EntryPrice,
		Quantity:    t.Quantity,
		Status:      t.Status,
		ExitPrice:   t.ExitPrice,
		RealizedPnL: t.RealizedPnL,
		CreatedAt:   t.OpenedAt,
		ClosedAt:    t.ClosedAt,
	}
}

func toTradeResponses(trades []*domain.Trade) []tradeResponse {
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	return out
}

type summaryResponse struct {
	TotalRealizedPnL decimal.Decimal `json:"total_realized_pnl"`
	OpenPositions    int             `json:"open_positions"`
	ClosedPositions  int             `json:"closed_positions"`
	WinningTrades    int             `json:"winning_trades"`
	LosingTrades     int             `json:"losing_trades"`
	WinRate          float64         `json:"win_rate"`
}

func toSummaryResponse(s analytics.Summary) summaryResponse {
	return summaryResponse{
		TotalRealizedPnL: s.TotalRealizedPnL,
		OpenPositions:    s.OpenPositions,
		ClosedPositions:  s.ClosedPositions,
		WinningTrades:    s.WinningTrades,
		LosingTrades:     s.LosingTrades,
		WinRate:          s.WinRate,
	}
}
