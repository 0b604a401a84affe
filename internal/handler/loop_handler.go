package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoopHandler 评估调度控制
type LoopHandler struct {
	loop   *service.EvaluationLoop
	logger *zap.Logger

	mu         sync.Mutex
	loopCancel context.CancelFunc
}

func NewLoopHandler(loop *service.EvaluationLoop, logger *zap.Logger) *LoopHandler {
	return &LoopHandler{
		loop:   loop,
		logger: logger,
	}
}

// Status 调度状态
// GET /api/loop/status
func (h *LoopHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.loop.Status())
}

// Start 启动评估调度
// POST /api/loop/start
func (h *LoopHandler) Start(c echo.Context) error {
	if h.loop.IsRunning() {
		return xe.ErrLoopAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.loopCancel = cancel
	h.mu.Unlock()

	go func() {
		if err := h.loop.Start(ctx); err != nil && ctx.Err() == nil {
			h.logger.Error("evaluation loop error", zap.Error(err))
		}
	}()

	h.logger.Info("evaluation loop started via API")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "evaluation loop started",
	})
}

// Stop 停止评估调度
// POST /api/loop/stop
func (h *LoopHandler) Stop(c echo.Context) error {
	if !h.loop.IsRunning() {
		return xe.ErrLoopNotRunning
	}

	h.loop.Stop()
	h.mu.Lock()
	if h.loopCancel != nil {
		h.loopCancel()
		h.loopCancel = nil
	}
	h.mu.Unlock()

	h.logger.Info("evaluation loop stopped via API")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "evaluation loop stopped",
	})
}

// Run 立即执行一轮评估
// POST /api/loop/run
func (h *LoopHandler) Run(c echo.Context) error {
	h.loop.ExecuteCycle(c.Request().Context())
	return c.JSON(http.StatusOK, h.loop.Status())
}

func (h *LoopHandler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	loop := g.Group("/loop")
	loop.GET("/status", h.Status)
	loop.POST("/start", h.Start, write...)
	loop.POST("/stop", h.Stop, write...)
	loop.POST("/run", h.Run, write...)
}
