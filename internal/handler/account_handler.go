package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// AccountHandler 挑战账户与评估
type AccountHandler struct {
	logger            *zap.Logger
	accountService    *service.AccountService
	evaluationService *service.EvaluationService
}

func NewAccountHandler(logger *zap.Logger, accountService *service.AccountService, evaluationService *service.EvaluationService) *AccountHandler {
	return &AccountHandler{
		logger:            logger,
		accountService:    accountService,
		evaluationService: evaluationService,
	}
}

// List 账户列表
// GET /api/accounts?status=active
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.accountService.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": accounts,
		"total": len(accounts),
	})
}

// Create 新增账户
// POST /api/accounts
func (h *AccountHandler) Create(c echo.Context) error {
	var req service.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	account, err := h.accountService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, account)
}

// Get 账户详情
// GET /api/accounts/:id
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.accountService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Update 修改账户
// PUT /api/accounts/:id
func (h *AccountHandler) Update(c echo.Context) error {
	var req service.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	account, err := h.accountService.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Disable 停用账户
// DELETE /api/accounts/:id
func (h *AccountHandler) Disable(c echo.Context) error {
	if err := h.accountService.Disable(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "account disabled",
	})
}

// Objectives 实时评估账户目标
// GET /api/accounts/:id/objectives
func (h *AccountHandler) Objectives(c echo.Context) error {
	result, err := h.evaluationService.Evaluate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"account_id":     result.Account.ID,
		"status":         result.Account.Status,
		"status_changed": result.StatusChanged(),
		"challenge":      result.Challenge.Name,
		"summary":        result.Summary,
		"report":         result.Report,
		"evaluated_at":   result.Evaluation.EvaluatedAt,
	})
}

// Evaluations 历史评估
// GET /api/accounts/:id/evaluations?limit=50
func (h *AccountHandler) Evaluations(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limit", xe.ErrInvalidParams)
		}
		limit = n
	}

	evaluations, err := h.evaluationService.History(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": evaluations,
		"total": len(evaluations),
	})
}

// Export 导出历史评估 CSV
// GET /api/accounts/:id/evaluations/export
func (h *AccountHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := h.accountService.Get(ctx, id); err != nil {
		return err
	}

	filename := fmt.Sprintf("evaluations-%s-%s.csv", id, time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	if err := h.evaluationService.ExportCSV(ctx, id, c.Response()); err != nil {
		h.logger.Error("csv export failed", zap.String("account_id", id), zap.Error(err))
		return nil
	}
	return nil
}

func (h *AccountHandler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	accounts := g.Group("/accounts")
	accounts.GET("", h.List)
	accounts.POST("", h.Create, write...)
	accounts.GET("/:id", h.Get)
	accounts.PUT("/:id", h.Update, write...)
	accounts.DELETE("/:id", h.Disable, write...)
	// 评估会落库并触发通知，只允许管理员
	accounts.GET("/:id/objectives", h.Objectives, write...)
	accounts.GET("/:id/evaluations", h.Evaluations)
	accounts.GET("/:id/evaluations/export", h.Export)
}
