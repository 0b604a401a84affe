package models

import "time"

// 交易平台
const (
	PlatformMT4 = "mt4"
	PlatformMT5 = "mt5"
)

// 账户状态
const (
	AccountStatusActive   = "active"
	AccountStatusPassed   = "passed"
	AccountStatusFailed   = "failed"
	AccountStatusDisabled = "disabled"
)

// BrokerAccount 参与挑战的 MT4/MT5 账户
type BrokerAccount struct {
	ID              string     `gorm:"primaryKey;size:26" json:"id"`
	Login           string     `gorm:"size:50;not null" json:"login"`
	Server          string     `gorm:"size:100" json:"server"`
	Platform        string     `gorm:"size:10;not null" json:"platform"`
	MetaApiID       string     `gorm:"uniqueIndex;size:64;not null" json:"metaapi_id"`
	ChallengeID     string     `gorm:"index;size:26;not null" json:"challenge_id"`
	InitialBalance  float64    `json:"initial_balance"`
	TraderEmail     string     `gorm:"size:200" json:"trader_email"`
	TraderName      string     `gorm:"size:200" json:"trader_name"`
	Status          string     `gorm:"index;size:20;not null;default:'active'" json:"status"`
	LastEvaluatedAt *time.Time `json:"last_evaluated_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BrokerAccount) TableName() string {
	return "broker_account"
}
