package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
)

// AccountHandler handles account API requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// CreateAccount handles account creation
// POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(&req)
	if err != nil {
		if errors.Is(err, service.ErrAccountNameTaken) {
			response.BadRequest(c, "account name already taken")
			return
		}
		response.InternalError(c, "failed to create account")
		return
	}

	response.Created(c, account)
}

// ListAccounts handles listing all accounts
// GET /api/v1/accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		response.InternalError(c, "failed to list accounts")
		return
	}

	response.Success(c, accounts)
}

// GetAccount handles fetching a single account
// GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to get account")
		return
	}

	response.Success(c, account)
}

// UpdateAccount handles account updates
// PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.UpdateAccount(id, &req)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to update account")
		return
	}

	response.Success(c, account)
}

// DeleteAccount handles account deletion
// DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(id); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to delete account")
		return
	}

	response.Success(c, gin.H{"deleted": id})
}

// GetPositions handles listing an account's positions
// GET /api/v1/accounts/:id/positions
func (h *AccountHandler) GetPositions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	positions, err := h.accountService.GetPositions(id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to list positions")
		return
	}

	response.Success(c, positions)
}

// GetOrders handles listing an account's orders
// GET /api/v1/accounts/:id/orders
func (h *AccountHandler) GetOrders(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orders, err := h.accountService.GetOrders(id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to list orders")
		return
	}

	response.Success(c, orders)
}

// GetTrades handles listing an account's trades
// GET /api/v1/accounts/:id/trades
func (h *AccountHandler) GetTrades(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	trades, err := h.accountService.GetTrades(id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to list trades")
		return
	}

	response.Success(c, trades)
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.PUT("/:id", h.UpdateAccount)
		accounts.DELETE("/:id", h.DeleteAccount)
		accounts.GET("/:id/positions", h.GetPositions)
		accounts.GET("/:id/orders", h.GetOrders)
		accounts.GET("/:id/trades", h.GetTrades)
	}
}

// parseIDParam parses a numeric path parameter, replying 400 on failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
