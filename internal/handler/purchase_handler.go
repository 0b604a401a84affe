package handler

import (
	"net/http"

	"github.com/dushixiang/propdesk/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// PurchaseHandler 订单导入
type PurchaseHandler struct {
	logger          *zap.Logger
	purchaseService *service.PurchaseService
}

func NewPurchaseHandler(logger *zap.Logger, purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		logger:          logger,
		purchaseService: purchaseService,
	}
}

// List 已导入订单
// GET /api/purchases?limit=50
func (h *PurchaseHandler) List(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	purchases, err := h.purchaseService.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"enabled": h.purchaseService.Enabled(),
		"items":   purchases,
		"total":   len(purchases),
	})
}

// Sync 从 WooCommerce 导入订单
// POST /api/purchases/sync
func (h *PurchaseHandler) Sync(c echo.Context) error {
	result, err := h.purchaseService.Sync(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *PurchaseHandler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	purchases := g.Group("/purchases")
	purchases.GET("", h.List)
	purchases.POST("/sync", h.Sync, write...)
}
