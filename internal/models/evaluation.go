package models

import (
	"time"

	"github.com/dushixiang/propdesk/pkg/objective"
	"gorm.io/datatypes"
)

// Evaluation 账户一次目标评估的快照
type Evaluation struct {
	ID             string                                   `gorm:"primaryKey;size:26" json:"id"`
	AccountID      string                                   `gorm:"index;size:26;not null" json:"account_id"`
	ChallengeID    string                                   `gorm:"size:26" json:"challenge_id"`
	Passed         bool                                     `json:"passed"`
	Degraded       bool                                     `json:"degraded"`
	InitialBalance float64                                  `json:"initial_balance"`
	Objectives     datatypes.JSONSlice[objective.Objective] `gorm:"type:json" json:"objectives"`
	Notes          datatypes.JSONSlice[string]              `gorm:"type:json" json:"notes"`
	EvaluatedAt    time.Time                                `gorm:"index" json:"evaluated_at"`
	CreatedAt      time.Time                                `gorm:"autoCreateTime" json:"created_at"`
}

func (Evaluation) TableName() string {
	return "evaluation"
}
