package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/trading-ledger/internal/models"
	"github.com/trading-ledger/internal/repository"
	"github.com/trading-ledger/pkg/logger"
)

var (
	ErrStrategyNotFound  = errors.New("strategy not found")
	ErrRuleNotFound      = errors.New("rule not found")
	ErrStrategyNameTaken = errors.New("strategy name already taken")
	ErrNotStrategyOwner  = errors.New("strategy belongs to another user")
	ErrInvalidCondition  = errors.New("invalid rule condition")
)

// StrategyService manages strategies and their price-threshold rules
type StrategyService struct {
	strategyRepo     *repository.StrategyRepository
	notificationRepo *repository.NotificationRepository
}

// NewStrategyService creates a new StrategyService
func NewStrategyService(
	strategyRepo *repository.StrategyRepository,
	notificationRepo *repository.NotificationRepository,
) *StrategyService {
	return &StrategyService{
		strategyRepo:     strategyRepo,
		notificationRepo: notificationRepo,
	}
}

// CreateStrategyRequest represents a request to create a strategy
type CreateStrategyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=255"`
}

// CreateStrategy creates a strategy owned by the given user
func (s *StrategyService) CreateStrategy(userID uint, req *CreateStrategyRequest) (*models.Strategy, error) {
	strategy := &models.Strategy{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if err := s.strategyRepo.Create(strategy); err != nil {
		return nil, ErrStrategyNameTaken
	}

	s.audit(userID, fmt.Sprintf("created strategy %q", strategy.Name))
	return strategy, nil
}

// GetStrategy returns a strategy with its rules, enforcing ownership
func (s *StrategyService) GetStrategy(userID, strategyID uint) (*models.Strategy, error) {
	strategy, err := s.strategyRepo.GetByIDWithRules(strategyID)
	if err != nil {
		if errors.Is(err, repository.ErrStrategyNotFound) {
			return nil, ErrStrategyNotFound
		}
		return nil, err
	}
	if strategy.UserID != userID {
		return nil, ErrNotStrategyOwner
	}
	return strategy, nil
}

// ListStrategies returns all strategies owned by a user
func (s *StrategyService) ListStrategies(userID uint) ([]models.Strategy, error) {
	return s.strategyRepo.GetByUserID(userID)
}

// UpdateStrategyRequest represents a request to update a strategy
type UpdateStrategyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=255"`
	Active      *bool  `json:"active"`
}

// UpdateStrategy updates a strategy's metadata
func (s *StrategyService) UpdateStrategy(userID, strategyID uint, req *UpdateStrategyRequest) (*models.Strategy, error) {
	strategy, err := s.GetStrategy(userID, strategyID)
	if err != nil {
		return nil, err
	}

	strategy.Name = req.Name
	strategy.Description = req.Description
	if req.Active != nil {
		strategy.Active = *req.Active
	}
	if err := s.strategyRepo.Update(strategy); err != nil {
		return nil, err
	}

	s.audit(userID, fmt.Sprintf("updated strategy %q", strategy.Name))
	return strategy, nil
}

// DeleteStrategy deletes a strategy together with its rules
func (s *StrategyService) DeleteStrategy(userID, strategyID uint) error {
	strategy, err := s.GetStrategy(userID, strategyID)
	if err != nil {
		return err
	}

	if err := s.strategyRepo.Delete(strategyID); err != nil {
		return err
	}

	s.audit(userID, fmt.Sprintf("deleted strategy %q", strategy.Name))
	return nil
}

// CreateRuleRequest represents a request to attach a rule to a strategy
type CreateRuleRequest struct {
	Symbol      string  `json:"symbol" binding:"required,min=1,max=20"`
	Condition   string  `json:"condition" binding:"required"`
	TargetPrice float64 `json:"target_price" binding:"required,gt=0"`
	Action      string  `json:"action" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
}

// CreateRule attaches a price-threshold rule to a strategy
func (s *StrategyService) CreateRule(userID, strategyID uint, req *CreateRuleRequest) (*models.StrategyRule, error) {
	if _, err := s.GetStrategy(userID, strategyID); err != nil {
		return nil, err
	}

	condition := models.RuleCondition(req.Condition)
	if !condition.Valid() {
		return nil, ErrInvalidCondition
	}

	action := models.Side(req.Action)
	if action != models.SideBuy && action != models.SideSell {
		return nil, ErrInvalidSide
	}

	rule := &models.StrategyRule{
		StrategyID:  strategyID,
		Symbol:      req.Symbol,
		Condition:   condition,
		TargetPrice: req.TargetPrice,
		Action:      action,
		Quantity:    req.Quantity,
	}
	if err := s.strategyRepo.CreateRule(rule); err != nil {
		return nil, err
	}

	s.audit(userID, fmt.Sprintf("added rule %s %s %.2f on %s", req.Action, req.Condition, req.TargetPrice, req.Symbol))
	return rule, nil
}

// ListRules returns all rules of a strategy
func (s *StrategyService) ListRules(userID, strategyID uint) ([]models.StrategyRule, error) {
	if _, err := s.GetStrategy(userID, strategyID); err != nil {
		return nil, err
	}
	return s.strategyRepo.GetRulesByStrategyID(strategyID)
}

// DeleteRule removes a rule from a strategy
func (s *StrategyService) DeleteRule(userID, strategyID, ruleID uint) error {
	if _, err := s.GetStrategy(userID, strategyID); err != nil {
		return err
	}

	rule, err := s.strategyRepo.GetRuleByID(ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	if rule.StrategyID != strategyID {
		return ErrRuleNotFound
	}

	if err := s.strategyRepo.DeleteRule(ruleID); err != nil {
		return err
	}

	s.audit(userID, fmt.Sprintf("removed rule on %s", rule.Symbol))
	return nil
}

// audit records a mutating action; failures are logged but never block
// the request
func (s *StrategyService) audit(userID uint, action string) {
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now(),
	}
	if err := s.notificationRepo.CreateAudit(entry); err != nil {
		logger.Error("Failed to write audit log: %v", err)
	}
}
