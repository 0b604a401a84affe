package repo

import (
	"context"
	"errors"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

type PurchaseRepo struct {
	orz.Repository[models.Purchase, string]
}

func NewPurchaseRepo(db *gorm.DB) *PurchaseRepo {
	return &PurchaseRepo{
		Repository: orz.NewRepository[models.Purchase, string](db),
	}
}

// FindByOrderID 按 WooCommerce 订单号查找
func (r *PurchaseRepo) FindByOrderID(ctx context.Context, orderID int) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.GetDB(ctx).Where("order_id = ?", orderID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindRecent 最近的订单
func (r *PurchaseRepo) FindRecent(ctx context.Context, limit int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.GetDB(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&purchases).Error
	return purchases, err
}

// FindNewest 最新一笔订单，没有记录时返回 nil
func (r *PurchaseRepo) FindNewest(ctx context.Context) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.GetDB(ctx).Order("created_at DESC").First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}
