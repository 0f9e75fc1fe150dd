package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
)

// PriceHandler handles market price API requests
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// GetPrice handles fetching the latest price for a symbol
// GET /api/v1/prices/:symbol
func (h *PriceHandler) GetPrice(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		response.BadRequest(c, "symbol is required")
		return
	}

	price, err := h.priceService.GetLatestPrice(symbol)
	if err != nil {
		if errors.Is(err, service.ErrPriceUnavailable) {
			response.NotFound(c, "price unavailable for "+symbol)
			return
		}
		response.InternalError(c, "failed to get price")
		return
	}

	response.Success(c, gin.H{
		"symbol":    symbol,
		"price":     price,
		"timestamp": time.Now().UnixMilli(),
	})
}

// RegisterRoutes registers price routes
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/prices/:symbol", h.GetPrice)
}
