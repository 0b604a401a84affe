package models

import (
	"time"

	"github.com/dushixiang/propdesk/pkg/objective"
)

// Challenge 从 Strapi 同步的挑战配置
type Challenge struct {
	ID                      string    `gorm:"primaryKey;size:26" json:"id"`
	StrapiID                int       `gorm:"uniqueIndex;not null" json:"strapi_id"`
	Name                    string    `gorm:"size:200;not null" json:"name"`
	Phase                   string    `gorm:"size:50" json:"phase"`
	Price                   float64   `json:"price"`
	InitialBalance          float64   `json:"initial_balance"`
	MinimumTradingDays      int       `json:"minimum_trading_days"`
	MaximumDailyLossPercent float64   `json:"maximum_daily_loss_percent"`
	MaxDrawdownPercent      float64   `json:"max_drawdown_percent"`
	ProfitTargetPercent     float64   `json:"profit_target_percent"`
	SyncedAt                time.Time `json:"synced_at"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenge"
}

// Rules 转换为评估规则
func (c Challenge) Rules() objective.Rules {
	return objective.Rules{
		MinimumTradingDays:      c.MinimumTradingDays,
		MaximumDailyLossPercent: c.MaximumDailyLossPercent,
		MaxDrawdownPercent:      c.MaxDrawdownPercent,
		ProfitTargetPercent:     c.ProfitTargetPercent,
	}
}
