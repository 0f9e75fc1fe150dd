package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
)

// TradeHandler handles trade execution API requests
type TradeHandler struct {
	tradingService *service.TradingService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(tradingService *service.TradingService) *TradeHandler {
	return &TradeHandler{
		tradingService: tradingService,
	}
}

// ExecuteTradeRequest represents a trade execution request. Symbol and
// side are never accepted here; they come from the order.
type ExecuteTradeRequest struct {
	OrderID  uint    `json:"order_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Price    float64 `json:"price" binding:"required,gt=0"`
}

// ExecuteTrade handles executing a fill against an open order
// POST /api/v1/trades
func (h *TradeHandler) ExecuteTrade(c *gin.Context) {
	var req ExecuteTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	trade, err := h.tradingService.ExecuteTrade(req.OrderID, req.Quantity, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrAccountNotFound):
			response.NotFound(c, "account not found")
		case errors.Is(err, service.ErrOrderCanceled):
			response.BadRequest(c, "order is canceled")
		case errors.Is(err, service.ErrOverfill):
			response.BadRequest(c, "quantity exceeds remaining order size")
		case errors.Is(err, service.ErrInsufficientCash):
			response.BadRequest(c, "insufficient cash")
		case errors.Is(err, service.ErrInsufficientPosition):
			response.BadRequest(c, "insufficient position")
		case errors.Is(err, service.ErrInvalidQuantity):
			response.BadRequest(c, "quantity must be positive")
		case errors.Is(err, service.ErrInvalidPrice):
			response.BadRequest(c, "price must be positive")
		default:
			response.InternalError(c, "failed to execute trade")
		}
		return
	}

	response.Created(c, trade)
}

// ListTrades handles listing all trades
// GET /api/v1/trades
func (h *TradeHandler) ListTrades(c *gin.Context) {
	trades, err := h.tradingService.ListTrades()
	if err != nil {
		response.InternalError(c, "failed to list trades")
		return
	}

	response.Success(c, trades)
}

// RegisterRoutes registers trade routes
func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	trades := rg.Group("/trades")
	{
		trades.POST("", h.ExecuteTrade)
		trades.GET("", h.ListTrades)
	}
}
