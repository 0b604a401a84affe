package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/repo"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/woocommerce"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 视为已付款的订单状态
var paidStatuses = []string{"processing", "completed"}

// syncOverlap 增量同步向前回看的窗口，覆盖先 pending 后付款以及同一秒创建的订单
const syncOverlap = 24 * time.Hour

// OrderSource 订单来源
type OrderSource interface {
	ListOrders(ctx context.Context, params woocommerce.ListOrdersParams) ([]woocommerce.Order, error)
}

// PurchaseService 挑战订单导入
type PurchaseService struct {
	logger       *zap.Logger
	source       OrderSource
	PurchaseRepo *repo.PurchaseRepo
}

// NewPurchaseService client 为 nil 表示未启用 WooCommerce
func NewPurchaseService(logger *zap.Logger, db *gorm.DB, client *woocommerce.Client) *PurchaseService {
	var source OrderSource
	if client != nil {
		source = client
	}
	return newPurchaseService(logger, db, source)
}

func newPurchaseService(logger *zap.Logger, db *gorm.DB, source OrderSource) *PurchaseService {
	return &PurchaseService{
		logger:       logger,
		source:       source,
		PurchaseRepo: repo.NewPurchaseRepo(db),
	}
}

func (s *PurchaseService) Enabled() bool {
	return s.source != nil
}

// PurchaseSyncResult 导入统计
type PurchaseSyncResult struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Sync 导入本地最新订单之后（含回看窗口）的已付款订单，已存在的订单跳过
func (s *PurchaseService) Sync(ctx context.Context) (*PurchaseSyncResult, error) {
	if s.source == nil {
		return nil, xe.ErrPurchasesDisabled
	}

	params := woocommerce.ListOrdersParams{Status: paidStatuses}
	newest, err := s.PurchaseRepo.FindNewest(ctx)
	if err != nil {
		return nil, err
	}
	if newest != nil {
		params.After = newest.CreatedAt.Add(-syncOverlap)
	}

	orders, err := s.source.ListOrders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("sync purchases: %w", err)
	}

	result := &PurchaseSyncResult{Fetched: len(orders)}
	for _, order := range orders {
		_, err := s.PurchaseRepo.FindByOrderID(ctx, order.ID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		purchase := &models.Purchase{
			ID:        ulid.Make().String(),
			OrderID:   order.ID,
			Number:    order.Number,
			Status:    order.Status,
			Total:     order.Total,
			Currency:  order.Currency,
			Email:     order.BillingEmail,
			Name:      order.BillingName,
			Product:   productName(order),
			CreatedAt: order.CreatedAt,
		}
		if err := s.PurchaseRepo.Create(ctx, purchase); err != nil {
			return nil, err
		}
		result.Imported++
	}

	s.logger.Info("purchases synced",
		zap.Int("fetched", result.Fetched),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func productName(order woocommerce.Order) string {
	if len(order.LineItems) == 0 {
		return ""
	}
	return order.LineItems[0].Name
}

func (s *PurchaseService) List(ctx context.Context, limit int) ([]models.Purchase, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.PurchaseRepo.FindRecent(ctx, limit)
}
