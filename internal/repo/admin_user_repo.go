package repo

import (
	"context"
	"time"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

type AdminUserRepo struct {
	orz.Repository[models.AdminUser, string]
}

func NewAdminUserRepo(db *gorm.DB) *AdminUserRepo {
	return &AdminUserRepo{
		Repository: orz.NewRepository[models.AdminUser, string](db),
	}
}

// FindByUsername 根据用户名查找用户
func (r *AdminUserRepo) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.GetDB(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 根据ID查找用户
func (r *AdminUserRepo) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.GetDB(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin 记录登录时间和IP
func (r *AdminUserRepo) UpdateLastLogin(ctx context.Context, id string, ip string) error {
	return r.GetDB(ctx).Model(&models.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at": time.Now(),
			"last_login_ip": ip,
		}).Error
}

func (r *AdminUserRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.GetDB(ctx).Model(&models.AdminUser{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}
