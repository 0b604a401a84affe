package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// EvaluatorHandler 无状态目标计算
type EvaluatorHandler struct {
	logger           *zap.Logger
	challengeService *service.ChallengeService
}

func NewEvaluatorHandler(logger *zap.Logger, challengeService *service.ChallengeService) *EvaluatorHandler {
	return &EvaluatorHandler{
		logger:           logger,
		challengeService: challengeService,
	}
}

// EvaluateRequest rules 与 challenge_id 二选一
type EvaluateRequest struct {
	Rules          json.RawMessage `json:"rules"`
	ChallengeID    string          `json:"challenge_id"`
	Metrics        json.RawMessage `json:"metrics"`
	InitialBalance float64         `json:"initial_balance"`
}

// Evaluate 根据传入的规则与指标计算目标，不落库
// POST /api/evaluate
func (h *EvaluatorHandler) Evaluate(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if !isObject(req.Metrics) {
		return fmt.Errorf("%w: metrics must be an object", xe.ErrInvalidObjectiveReq)
	}

	var rules *objective.Rules
	var err error
	switch {
	case isObject(req.Rules):
		rules, err = objective.ParseRules(req.Rules)
		if err != nil {
			return fmt.Errorf("%w: %v", xe.ErrInvalidObjectiveReq, err)
		}
	case len(req.Rules) > 0 && string(req.Rules) != "null":
		return fmt.Errorf("%w: rules", xe.ErrInvalidObjectiveReq)
	case req.ChallengeID != "":
		rules, err = h.challengeService.Rules(c.Request().Context(), req.ChallengeID)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: rules or challenge_id is required", xe.ErrInvalidObjectiveReq)
	}

	metrics, err := objective.ParseMetrics(req.Metrics)
	if err != nil {
		return fmt.Errorf("%w: %v", xe.ErrInvalidObjectiveReq, err)
	}

	report, err := objective.Evaluate(rules, metrics, req.InitialBalance)
	if err != nil {
		return fmt.Errorf("%w: %v", xe.ErrInvalidObjectiveReq, err)
	}
	return c.JSON(http.StatusOK, report)
}

func isObject(raw json.RawMessage) bool {
	return gjson.ValidBytes(raw) && gjson.ParseBytes(raw).IsObject()
}

func (h *EvaluatorHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/evaluate", h.Evaluate)
}
