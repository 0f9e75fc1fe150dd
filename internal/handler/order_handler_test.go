package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trading-ledger/internal/handler"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/internal/service"
	"github.com/trading-ledger/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *repository.AccountRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Position{},
		&models.Order{},
		&models.Trade{},
	))

	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tradeRepo := repository.NewTradeRepository(db)

	tradingService := service.NewTradingService(db, accountRepo, positionRepo, orderRepo, tradeRepo)

	router := gin.New()
	v1 := router.Group("/api/v1")
	handler.NewOrderHandler(tradingService).RegisterRoutes(v1)
	handler.NewTradeHandler(tradingService).RegisterRoutes(v1)

	return router, accountRepo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object: %s", w.Body.String())
	return data
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router, accountRepo := newTestRouter(t)

	account := &models.Account{Name: "alice", Cash: 1000}
	require.NoError(t, accountRepo.Create(account))

	// Place an order
	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"account_id": account.ID,
		"symbol":     "AAPL",
		"side":       "buy",
		"quantity":   10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, "open", data["status"])
	orderID := uint(data["id"].(float64))

	// Partially fill it
	w = doJSON(t, router, http.MethodPost, "/api/v1/trades", gin.H{
		"order_id": orderID,
		"quantity": 5,
		"price":    20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, "partially_filled", data["status"])

	// Cash was debited
	got, err := accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 900.0, got.Cash, 1e-9)

	// Cancel the remainder
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeData(t, w)
	assert.Equal(t, "canceled", data["status"])

	// No fills after cancelation
	w = doJSON(t, router, http.MethodPost, "/api/v1/trades", gin.H{
		"order_id": orderID,
		"quantity": 5,
		"price":    20,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteTradeRejectsOverfillOverHTTP(t *testing.T) {
	router, accountRepo := newTestRouter(t)

	account := &models.Account{Name: "bob", Cash: 100000}
	require.NoError(t, accountRepo.Create(account))

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"account_id": account.ID,
		"symbol":     "AAPL",
		"side":       "buy",
		"quantity":   10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(decodeData(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/api/v1/trades", gin.H{
		"order_id": orderID,
		"quantity": 15,
		"price":    20,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderUnknownAccountOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"account_id": 9999,
		"symbol":     "AAPL",
		"side":       "buy",
		"quantity":   10,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
