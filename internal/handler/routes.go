package handler

import (
	"github.com/dushixiang/propdesk/internal/middleware"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handlers 全部 HTTP 处理器
type Handlers struct {
	Setup       *SetupHandler
	Auth        *AuthHandler
	Challenge   *ChallengeHandler
	Account     *AccountHandler
	Evaluator   *EvaluatorHandler
	Loop        *LoopHandler
	Purchase    *PurchaseHandler
	AuthService *service.AuthService
}

// RegisterRoutes 挂载 /api 下的全部路由，写操作仅限管理员
func (h *Handlers) RegisterRoutes(api *echo.Group, logger *zap.Logger) {
	h.Setup.RegisterRoutes(api)
	h.Auth.RegisterRoutes(api)

	protected := api.Group("", middleware.JWTAuth(middleware.JWTAuthConfig{
		AuthService: h.AuthService,
		Logger:      logger,
	}))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	h.Auth.RegisterProtectedRoutes(protected)
	h.Challenge.RegisterRoutes(protected, adminOnly)
	h.Account.RegisterRoutes(protected, adminOnly)
	h.Evaluator.RegisterRoutes(protected)
	h.Loop.RegisterRoutes(protected, adminOnly)
	h.Purchase.RegisterRoutes(protected, adminOnly)
}
