package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/trading-ledger/internal/ledger"
	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/pkg/logger"
	"gorm.io/gorm"
)

// PriceSource supplies the latest known market price for a symbol
type PriceSource interface {
	GetLatestPrice(symbol string) (float64, error)
}

// errNoPortfolio marks a rule whose user holds no portfolio for the
// rule's symbol; the cycle skips it without producing any records
var errNoPortfolio = errors.New("no portfolio for rule symbol")

// RuleWorker polls market prices on a fixed interval and applies
// synthetic portfolio fills for every rule whose condition holds.
// Rules fire repeatedly; the per-rule cooldown is the only throttle.
type RuleWorker struct {
	db               *gorm.DB
	strategyRepo     *repository.StrategyRepository
	portfolioRepo    *repository.PortfolioRepository
	executionLogRepo *repository.ExecutionLogRepository
	notificationRepo *repository.NotificationRepository
	prices           PriceSource
	interval         time.Duration
	cooldown         time.Duration
	stopChan         chan struct{}

	mu        sync.Mutex
	lastFired map[uint]time.Time
}

// NewRuleWorker creates a new rule evaluation worker
func NewRuleWorker(
	db *gorm.DB,
	strategyRepo *repository.StrategyRepository,
	portfolioRepo *repository.PortfolioRepository,
	executionLogRepo *repository.ExecutionLogRepository,
	notificationRepo *repository.NotificationRepository,
	prices PriceSource,
	interval time.Duration,
	cooldown time.Duration,
) *RuleWorker {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &RuleWorker{
		db:               db,
		strategyRepo:     strategyRepo,
		portfolioRepo:    portfolioRepo,
		executionLogRepo: executionLogRepo,
		notificationRepo: notificationRepo,
		prices:           prices,
		interval:         interval,
		cooldown:         cooldown,
		stopChan:         make(chan struct{}),
		lastFired:        make(map[uint]time.Time),
	}
}

// Start begins the evaluation loop
func (w *RuleWorker) Start() {
	logger.Info("Rule worker started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunCycle()
		case <-w.stopChan:
			logger.Info("Rule worker stopped")
			return
		}
	}
}

// Stop stops the evaluation loop
func (w *RuleWorker) Stop() {
	close(w.stopChan)
}

// RunCycle evaluates every rule once. One rule failing never prevents
// the rest of the cycle from running.
func (w *RuleWorker) RunCycle() {
	rules, err := w.strategyRepo.GetAllRules()
	if err != nil {
		logger.Error("Rule worker: failed to load rules: %v", err)
		return
	}

	for i := range rules {
		w.evaluateRule(&rules[i])
	}
}

func (w *RuleWorker) evaluateRule(rule *models.StrategyRule) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Rule worker: panic evaluating rule %d: %v", rule.ID, r)
		}
	}()

	if w.onCooldown(rule.ID) {
		return
	}

	price, err := w.prices.GetLatestPrice(rule.Symbol)
	if err != nil {
		logger.Debug("Rule worker: no price for %s, skipping rule %d", rule.Symbol, rule.ID)
		return
	}

	if !rule.ConditionMet(price) {
		return
	}

	if err := w.executeRule(rule, price); err != nil {
		switch {
		case errors.Is(err, errNoPortfolio):
			logger.Debug("Rule worker: user holds no %s portfolio, skipping rule %d",
				rule.Symbol, rule.ID)
		case errors.Is(err, ledger.ErrInsufficientPosition):
			logger.Debug("Rule worker: rule %d wants to sell more %s than held, skipping",
				rule.ID, rule.Symbol)
		default:
			logger.Error("Rule worker: failed to execute rule %d: %v", rule.ID, err)
		}
		return
	}

	w.markFired(rule.ID)
	logger.Info("Rule worker: rule %d fired (%s %s %.8f @ %.8f)",
		rule.ID, rule.Action, rule.Symbol, rule.Quantity, price)
}

// executeRule applies the fill, the order record, the execution log, and
// the notification in one transaction
func (w *RuleWorker) executeRule(rule *models.StrategyRule, price float64) error {
	userID := rule.Strategy.UserID
	now := time.Now()

	return w.db.Transaction(func(tx *gorm.DB) error {
		portfolioRepo := w.portfolioRepo.WithTx(tx)

		portfolio, err := portfolioRepo.GetByUserIDAndAssetForUpdate(userID, rule.Symbol)
		if err != nil {
			if errors.Is(err, repository.ErrPortfolioNotFound) {
				return errNoPortfolio
			}
			return err
		}

		if err := ledger.ApplyPortfolioFill(portfolio, rule.Action, rule.Quantity, price); err != nil {
			return err
		}
		if err := portfolioRepo.Update(portfolio); err != nil {
			return err
		}

		order := &models.PortfolioOrder{
			PortfolioID: portfolio.ID,
			Asset:       rule.Symbol,
			Quantity:    rule.Quantity,
			Price:       price,
			Type:        rule.Action,
			Timestamp:   now,
		}
		if err := portfolioRepo.CreateOrder(order); err != nil {
			return err
		}

		execLog := &models.ExecutionLog{
			StrategyID: rule.StrategyID,
			RuleID:     rule.ID,
			Symbol:     rule.Symbol,
			Price:      price,
			Quantity:   rule.Quantity,
			Action:     rule.Action,
			Timestamp:  now,
		}
		if err := w.executionLogRepo.WithTx(tx).Create(execLog); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:    userID,
			Message:   executionMessage(rule, price),
			Timestamp: now,
		}
		return w.notificationRepo.WithTx(tx).Create(notification)
	})
}

func executionMessage(rule *models.StrategyRule, price float64) string {
	return fmt.Sprintf("Your order to %s %g shares of %s has been executed at a price of $%.2f",
		rule.Action, rule.Quantity, rule.Symbol, price)
}

func (w *RuleWorker) onCooldown(ruleID uint) bool {
	if w.cooldown <= 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.lastFired[ruleID]
	return ok && time.Since(last) < w.cooldown
}

func (w *RuleWorker) markFired(ruleID uint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastFired[ruleID] = time.Now()
}
