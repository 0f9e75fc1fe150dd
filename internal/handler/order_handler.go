package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
)

// OrderHandler handles order API requests
type OrderHandler struct {
	tradingService *service.TradingService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(tradingService *service.TradingService) *OrderHandler {
	return &OrderHandler{
		tradingService: tradingService,
	}
}

// CreateOrder handles order placement
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.tradingService.CreateOrder(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			response.NotFound(c, "account not found")
		case errors.Is(err, service.ErrInvalidSide):
			response.BadRequest(c, "side must be buy or sell")
		case errors.Is(err, service.ErrInvalidQuantity):
			response.BadRequest(c, "quantity must be positive")
		case errors.Is(err, service.ErrInsufficientPosition):
			response.BadRequest(c, "insufficient position for sell order")
		default:
			response.InternalError(c, "failed to create order")
		}
		return
	}

	response.Created(c, order)
}

// ListOrders handles listing all orders
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.tradingService.ListOrders()
	if err != nil {
		response.InternalError(c, "failed to list orders")
		return
	}

	response.Success(c, orders)
}

// GetOrder handles fetching one order with its trades
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.tradingService.GetOrder(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		response.InternalError(c, "failed to get order")
		return
	}

	response.Success(c, order)
}

// CancelOrder handles order cancelation
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.tradingService.CancelOrder(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrOrderNotCancelable):
			response.BadRequest(c, "order cannot be canceled in its current status")
		default:
			response.InternalError(c, "failed to cancel order")
		}
		return
	}

	response.Success(c, order)
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}
