package objective

import "errors"

// DefaultInitialBalance 未提供初始资金时使用的默认值
const DefaultInitialBalance = 10000.0

var (
	ErrRulesMissing   = errors.New("objective: challenge rules not loaded")
	ErrMetricsMissing = errors.New("objective: account metrics not loaded")
)

// Kind 目标类型
type Kind string

const (
	KindMinTradingDays Kind = "min_trading_days"
	KindMaxDailyLoss   Kind = "max_daily_loss"
	KindMaxTotalLoss   Kind = "max_total_loss"
	KindProfitTarget   Kind = "profit_target"
)

// 观测值来源
const (
	SourceDays        = "days_since_trading_started"
	SourceDailyGrowth = "daily_growth"
	SourceWorstTrade  = "worst_trade"
	SourceProfit      = "profit"
	SourceMaxDrawdown = "max_drawdown"
	SourceLostTrades  = "lost_trades"
	SourceNone        = "none"
)

// Rules 挑战规则，百分比均相对初始资金
type Rules struct {
	MinimumTradingDays      int     `json:"minimumTradingDays" yaml:"minimumTradingDays"`
	MaximumDailyLossPercent float64 `json:"maximumDailyLossPercent" yaml:"maximumDailyLossPercent"`
	MaxDrawdownPercent      float64 `json:"maxDrawdownPercent" yaml:"maxDrawdownPercent"`
	ProfitTargetPercent     float64 `json:"profitTargetPercent" yaml:"profitTargetPercent"`
}

// DailyGrowth 单日盈亏
type DailyGrowth struct {
	Date           string  `json:"date"`
	Profit         float64 `json:"profit"`
	DrawdownProfit float64 `json:"drawdownProfit"`
}

// Metrics 账户交易指标，nil 指针表示上游未返回该字段
type Metrics struct {
	DaysSinceTradingStarted float64       `json:"daysSinceTradingStarted"`
	DailyGrowth             []DailyGrowth `json:"dailyGrowth"`
	// MaxDrawdown 按百分比解释
	MaxDrawdown *float64 `json:"maxDrawdown,omitempty"`
	Profit      float64  `json:"profit"`
	WorstTrade  *float64 `json:"worstTrade,omitempty"`
	LostTrades  *float64 `json:"lostTrades,omitempty"`
	AverageLoss *float64 `json:"averageLoss,omitempty"`
}

// Objective 单个挑战目标的评估结果
type Objective struct {
	Kind                    Kind    `json:"kind" csv:"kind"`
	Name                    string  `json:"name" csv:"name"`
	TargetAbsolute          float64 `json:"target_absolute" csv:"target_absolute"`
	ObservedAbsolute        float64 `json:"observed_absolute" csv:"observed_absolute"`
	ObservedPercentOfTarget float64 `json:"observed_percent_of_target" csv:"observed_percent_of_target"`
	Passed                  bool    `json:"passed" csv:"passed"`
	Degraded                bool    `json:"degraded" csv:"degraded"`
	Source                  string  `json:"source" csv:"source"`
	Description             string  `json:"description" csv:"-"`
	ExplainerVideoURL       string  `json:"explainer_video_url" csv:"-"`
}

// Report 一次评估的完整结果
type Report struct {
	Objectives     []Objective `json:"objectives"`
	InitialBalance float64     `json:"initial_balance"`
	Passed         bool        `json:"passed"`
	Degraded       bool        `json:"degraded"`
	Notes          []string    `json:"notes,omitempty"`
}

// Find 按类型查找目标
func (r *Report) Find(kind Kind) (Objective, bool) {
	for _, o := range r.Objectives {
		if o.Kind == kind {
			return o, true
		}
	}
	return Objective{}, false
}

// LossBreached 是否有亏损类目标未通过
func (r *Report) LossBreached() bool {
	for _, o := range r.Objectives {
		if (o.Kind == KindMaxDailyLoss || o.Kind == KindMaxTotalLoss) && !o.Passed {
			return true
		}
	}
	return false
}

// Float 返回指针，便于构造可选字段
func Float(v float64) *float64 {
	return &v
}
