package handler

import (
	"errors"
	"net/http"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler 登录与当前用户
type AuthHandler struct {
	logger      *zap.Logger
	authService *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		authService: authService,
	}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.LoginRequest
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

	resp, err := h.authService.Login(ctx, req, c.RealIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"error": "invalid username or password",
			})
		}
		if errors.Is(err, service.ErrUserNotActive) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"error": "user is disabled",
			})
		}

		h.logger.Error("login failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "login failed, please try again later",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// GetCurrentUser 当前登录用户
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	user, err := h.authService.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword 修改密码
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=5"`
	}
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	userID, _ := c.Get("user_id").(string)
	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.logger.Warn("failed to change password",
			zap.String("user_id", userID),
			zap.Error(err))
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "password changed",
	})
}

// RegisterRoutes 公开接口
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/login", h.Login)
}

// RegisterProtectedRoutes g 需已挂载 JWT 中间件
func (h *AuthHandler) RegisterProtectedRoutes(g *echo.Group) {
	auth := g.Group("/auth")
	auth.GET("/me", h.GetCurrentUser)
	auth.POST("/change-password", h.ChangePassword)
}
