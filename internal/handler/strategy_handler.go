package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/middleware"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/internal/worker"
	"github.com/trading-ledger/pkg/response"
)

// StrategyHandler handles strategy and rule API requests
type StrategyHandler struct {
	strategyService *service.StrategyService
	ruleWorker      *worker.RuleWorker
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(strategyService *service.StrategyService, ruleWorker *worker.RuleWorker) *StrategyHandler {
	return &StrategyHandler{
		strategyService: strategyService,
		ruleWorker:      ruleWorker,
	}
}

// CreateStrategy handles strategy creation
// POST /api/v1/strategies
func (h *StrategyHandler) CreateStrategy(c *gin.Context) {
	var req service.CreateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	strategy, err := h.strategyService.CreateStrategy(middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrStrategyNameTaken) {
			response.BadRequest(c, "strategy name already taken")
			return
		}
		response.InternalError(c, "failed to create strategy")
		return
	}

	response.Created(c, strategy)
}

// ListStrategies handles listing the caller's strategies
// GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies, err := h.strategyService.ListStrategies(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to list strategies")
		return
	}

	response.Success(c, strategies)
}

// GetStrategy handles fetching one strategy with its rules
// GET /api/v1/strategies/:id
func (h *StrategyHandler) GetStrategy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	strategy, err := h.strategyService.GetStrategy(middleware.GetUserID(c), id)
	if err != nil {
		h.replyStrategyError(c, err)
		return
	}

	response.Success(c, strategy)
}

// UpdateStrategy handles strategy updates
// PUT /api/v1/strategies/:id
func (h *StrategyHandler) UpdateStrategy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	strategy, err := h.strategyService.UpdateStrategy(middleware.GetUserID(c), id, &req)
	if err != nil {
		h.replyStrategyError(c, err)
		return
	}

	response.Success(c, strategy)
}

// DeleteStrategy handles strategy deletion
// DELETE /api/v1/strategies/:id
func (h *StrategyHandler) DeleteStrategy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.strategyService.DeleteStrategy(middleware.GetUserID(c), id); err != nil {
		h.replyStrategyError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": id})
}

// CreateRule handles attaching a rule to a strategy
// POST /api/v1/strategies/:id/rules
func (h *StrategyHandler) CreateRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rule, err := h.strategyService.CreateRule(middleware.GetUserID(c), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCondition):
			response.BadRequest(c, "condition must be one of <, >, <=, >=")
		case errors.Is(err, service.ErrInvalidSide):
			response.BadRequest(c, "action must be buy or sell")
		default:
			h.replyStrategyError(c, err)
		}
		return
	}

	response.Created(c, rule)
}

// ListRules handles listing a strategy's rules
// GET /api/v1/strategies/:id/rules
func (h *StrategyHandler) ListRules(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rules, err := h.strategyService.ListRules(middleware.GetUserID(c), id)
	if err != nil {
		h.replyStrategyError(c, err)
		return
	}

	response.Success(c, rules)
}

// DeleteRule handles removing a rule from a strategy
// DELETE /api/v1/strategies/:id/rules/:rule_id
func (h *StrategyHandler) DeleteRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ruleID, ok := parseIDParam(c, "rule_id")
	if !ok {
		return
	}

	if err := h.strategyService.DeleteRule(middleware.GetUserID(c), id, ruleID); err != nil {
		if errors.Is(err, service.ErrRuleNotFound) {
			response.NotFound(c, "rule not found")
			return
		}
		h.replyStrategyError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": ruleID})
}

// RunEngine triggers one rule evaluation cycle immediately
// POST /api/v1/engine/run
func (h *StrategyHandler) RunEngine(c *gin.Context) {
	h.ruleWorker.RunCycle()
	response.Success(c, gin.H{"status": "cycle completed"})
}

func (h *StrategyHandler) replyStrategyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStrategyNotFound):
		response.NotFound(c, "strategy not found")
	case errors.Is(err, service.ErrNotStrategyOwner):
		response.Error(c, http.StatusForbidden, -1002, "strategy belongs to another user")
	default:
		response.InternalError(c, "strategy operation failed")
	}
}

// RegisterRoutes registers strategy routes. All routes require auth.
func (h *StrategyHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	strategies := rg.Group("/strategies")
	strategies.Use(authMiddleware)
	{
		strategies.POST("", h.CreateStrategy)
		strategies.GET("", h.ListStrategies)
		strategies.GET("/:id", h.GetStrategy)
		strategies.PUT("/:id", h.UpdateStrategy)
		strategies.DELETE("/:id", h.DeleteStrategy)
		strategies.POST("/:id/rules", h.CreateRule)
		strategies.GET("/:id/rules", h.ListRules)
		strategies.DELETE("/:id/rules/:rule_id", h.DeleteRule)
	}

	rg.POST("/engine/run", authMiddleware, h.RunEngine)
}
