package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase 从 WooCommerce 导入的挑战订单
type Purchase struct {
	ID         string          `gorm:"primaryKey;size:26" json:"id"`
	OrderID    int             `gorm:"uniqueIndex;not null" json:"order_id"`
	Number     string          `gorm:"size:50" json:"number"`
	Status     string          `gorm:"size:30" json:"status"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	Currency   string          `gorm:"size:10" json:"currency"`
	Email      string          `gorm:"size:200;index" json:"email"`
	Name       string          `gorm:"size:200" json:"name"`
	Product    string          `gorm:"size:200" json:"product"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	ImportedAt time.Time       `gorm:"autoCreateTime" json:"imported_at"`
}

func (Purchase) TableName() string {
	return "purchase"
}
