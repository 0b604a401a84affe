package repo

import (
	"context"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

type ChallengeRepo struct {
	orz.Repository[models.Challenge, string]
}

func NewChallengeRepo(db *gorm.DB) *ChallengeRepo {
	return &ChallengeRepo{
		Repository: orz.NewRepository[models.Challenge, string](db),
	}
}

// FindByStrapiID 按 Strapi id 查找
func (r *ChallengeRepo) FindByStrapiID(ctx context.Context, strapiID int) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.GetDB(ctx).Where("strapi_id = ?", strapiID).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FindByID 按主键查找
func (r *ChallengeRepo) FindByID(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.GetDB(ctx).Where("id = ?", id).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepo) FindAllOrdered(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.GetDB(ctx).Order("strapi_id ASC").Find(&challenges).Error
	return challenges, err
}
