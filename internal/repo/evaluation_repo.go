package repo

import (
	"context"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

type EvaluationRepo struct {
	orz.Repository[models.Evaluation, string]
}

func NewEvaluationRepo(db *gorm.DB) *EvaluationRepo {
	return &EvaluationRepo{
		Repository: orz.NewRepository[models.Evaluation, string](db),
	}
}

// FindLatestByAccount 账户最近一次评估
func (r *EvaluationRepo) FindLatestByAccount(ctx context.Context, accountID string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.GetDB(ctx).
		Where("account_id = ?", accountID).
		Order("evaluated_at DESC").
		First(&evaluation).Error
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// FindByAccount 按时间倒序，limit <= 0 时不限制
func (r *EvaluationRepo) FindByAccount(ctx context.Context, accountID string, limit int) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	db := r.GetDB(ctx).
		Where("account_id = ?", accountID).
		Order("evaluated_at DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&evaluations).Error
	return evaluations, err
}
