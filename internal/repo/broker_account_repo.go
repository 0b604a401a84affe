package repo

import (
	"context"
	"time"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

type BrokerAccountRepo struct {
	orz.Repository[models.BrokerAccount, string]
}

func NewBrokerAccountRepo(db *gorm.DB) *BrokerAccountRepo {
	return &BrokerAccountRepo{
		Repository: orz.NewRepository[models.BrokerAccount, string](db),
	}
}

func (r *BrokerAccountRepo) FindByID(ctx context.Context, id string) (*models.BrokerAccount, error) {
	var account models.BrokerAccount
	err := r.GetDB(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByMetaApiID 按 MetaApi 账户 id 查找
func (r *BrokerAccountRepo) FindByMetaApiID(ctx context.Context, metaApiID string) (*models.BrokerAccount, error) {
	var account models.BrokerAccount
	err := r.GetDB(ctx).Where("meta_api_id = ?", metaApiID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindActive 所有仍在挑战中的账户
func (r *BrokerAccountRepo) FindActive(ctx context.Context) ([]models.BrokerAccount, error) {
	var accounts []models.BrokerAccount
	err := r.GetDB(ctx).
		Where("status = ?", models.AccountStatusActive).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// FindByStatus status 为空时返回全部
func (r *BrokerAccountRepo) FindByStatus(ctx context.Context, status string) ([]models.BrokerAccount, error) {
	var accounts []models.BrokerAccount
	db := r.GetDB(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC").Find(&accounts).Error
	return accounts, err
}

// UpdateEvaluated 仅当状态仍为 from 时写入评估结果，返回是否命中
func (r *BrokerAccountRepo) UpdateEvaluated(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	tx := r.GetDB(ctx).Model(&models.BrokerAccount{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":            to,
			"last_evaluated_at": at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
