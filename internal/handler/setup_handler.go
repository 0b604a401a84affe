package handler

import (
	"net/http"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SetupHandler 首次初始化
type SetupHandler struct {
	logger      *zap.Logger
	authService *service.AuthService
}

func NewSetupHandler(logger *zap.Logger, authService *service.AuthService) *SetupHandler {
	return &SetupHandler{
		logger:      logger,
		authService: authService,
	}
}

// CheckSetupStatus 是否需要初始化
// GET /api/setup/status
func (h *SetupHandler) CheckSetupStatus(c echo.Context) error {
	needsSetup, err := h.authService.NeedsSetup(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"needs_setup": needsSetup,
	})
}

// InitialSetup 创建第一个管理员
// POST /api/setup/init
func (h *SetupHandler) InitialSetup(c echo.Context) error {
	ctx := c.Request().Context()

	needsSetup, err := h.authService.NeedsSetup(ctx)
	if err != nil {
		return err
	}
	if !needsSetup {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "system is already initialized",
		})
	}

	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required,min=5"`
		Nickname string `json:"nickname"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = req.Username
	}

	if err := h.authService.CreateUser(ctx, req.Username, req.Password, nickname, models.RoleAdmin); err != nil {
		return err
	}

	h.logger.Info("initial admin user created",
		zap.String("username", req.Username),
		zap.String("ip", c.RealIP()))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "setup complete",
		"user": map[string]interface{}{
			"username": req.Username,
			"nickname": nickname,
			"role":     models.RoleAdmin,
		},
	})
}

func (h *SetupHandler) RegisterRoutes(g *echo.Group) {
	setup := g.Group("/setup")
	setup.GET("/status", h.CheckSetupStatus)
	setup.POST("/init", h.InitialSetup)
}
