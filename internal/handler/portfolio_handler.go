package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/middleware"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
)

// PortfolioHandler handles portfolio, notification, and execution log
// API requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// CreatePortfolio handles creating a holding
// POST /api/v1/portfolios
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	var req service.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrPortfolioExists) {
			response.BadRequest(c, "portfolio for this asset already exists")
			return
		}
		response.InternalError(c, "failed to create portfolio")
		return
	}

	response.Created(c, portfolio)
}

// ListPortfolios handles listing the caller's holdings
// GET /api/v1/portfolios
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	portfolios, err := h.portfolioService.ListPortfolios(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list portfolios")
		return
	}

	response.Success(c, portfolios)
}

// GetPortfolio handles fetching one holding
// GET /api/v1/portfolios/:id
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	portfolio, err := h.portfolioService.GetPortfolio(middleware.GetUserID(c), id)
	if err != nil {
		h.replyPortfolioError(c, err)
		return
	}

	response.Success(c, portfolio)
}

// DeletePortfolio handles removing an empty holding
// DELETE /api/v1/portfolios/:id
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.portfolioService.DeletePortfolio(middleware.GetUserID(c), id); err != nil {
		if errors.Is(err, service.ErrPortfolioNotEmpty) {
			response.BadRequest(c, "portfolio still holds a position")
			return
		}
		h.replyPortfolioError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": id})
}

// GetPortfolioOrders handles listing a holding's synthetic fills
// GET /api/v1/portfolios/:id/orders
func (h *PortfolioHandler) GetPortfolioOrders(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orders, err := h.portfolioService.GetPortfolioOrders(middleware.GetUserID(c), id)
	if err != nil {
		h.replyPortfolioError(c, err)
		return
	}

	response.Success(c, orders)
}

// ListNotifications handles listing the caller's notifications
// GET /api/v1/notifications
func (h *PortfolioHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.portfolioService.ListNotifications(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list notifications")
		return
	}

	response.Success(c, notifications)
}

// ListAuditLog handles listing the caller's audit entries
// GET /api/v1/audit
func (h *PortfolioHandler) ListAuditLog(c *gin.Context) {
	entries, err := h.portfolioService.ListAuditLog(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list audit log")
		return
	}

	response.Success(c, entries)
}

// ListExecutionLogs handles listing recent rule executions
// GET /api/v1/executions?limit=100
func (h *PortfolioHandler) ListExecutionLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	logs, err := h.portfolioService.ListExecutionLogs(limit)
	if err != nil {
		response.InternalError(c, "failed to list execution logs")
		return
	}

	response.Success(c, logs)
}

func (h *PortfolioHandler) replyPortfolioError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPortfolioNotFound):
		response.NotFound(c, "portfolio not found")
	case errors.Is(err, service.ErrNotPortfolioOwner):
		response.Error(c, http.StatusForbidden, -1002, "portfolio belongs to another user")
	default:
		response.InternalError(c, "portfolio operation failed")
	}
}

// RegisterRoutes registers portfolio routes. All routes require auth.
func (h *PortfolioHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	portfolios := rg.Group("/portfolios")
	portfolios.Use(authMiddleware)
	{
		portfolios.POST("", h.CreatePortfolio)
		portfolios.GET("", h.ListPortfolios)
		portfolios.GET("/:id", h.GetPortfolio)
		portfolios.DELETE("/:id", h.DeletePortfolio)
		portfolios.GET("/:id/orders", h.GetPortfolioOrders)
	}

	rg.GET("/notifications", authMiddleware, h.ListNotifications)
	rg.GET("/audit", authMiddleware, h.ListAuditLog)
	rg.GET("/executions", authMiddleware, h.ListExecutionLogs)
}
