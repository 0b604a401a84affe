package handler

import (
	"net/http"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ChallengeHandler 挑战配置
type ChallengeHandler struct {
	logger           *zap.Logger
	challengeService *service.ChallengeService
}

func NewChallengeHandler(logger *zap.Logger, challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		logger:           logger,
		challengeService: challengeService,
	}
}

// List 挑战列表
// GET /api/challenges
func (h *ChallengeHandler) List(c echo.Context) error {
	challenges, err := h.challengeService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": challenges,
		"total": len(challenges),
	})
}

// Get 挑战详情
// GET /api/challenges/:id
func (h *ChallengeHandler) Get(c echo.Context) error {
	challenge, err := h.challengeService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"challenge": challenge,
		"rules":     challenge.Rules(),
	})
}

// Sync 从 Strapi 同步
// POST /api/challenges/sync
func (h *ChallengeHandler) Sync(c echo.Context) error {
	result, err := h.challengeService.Sync(c.Request().Context())
	if err != nil {
		h.logger.Error("challenge sync failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ChallengeHandler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	challenges := g.Group("/challenges")
	challenges.GET("", h.List)
	challenges.GET("/:id", h.Get)
	challenges.POST("/sync", h.Sync, write...)
}
