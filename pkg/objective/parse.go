package objective

import (
	"errors"
	"math"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("objective: payload is not valid JSON")

// 上游各处字段命名不统一，统一在此归一化
var (
	daysAliases        = []string{"minimumTradingDays", "minimum_trading_days", "minTradingDays"}
	dailyLossAliases   = []string{"maximumDailyLossPercent", "maximumDailyLoss", "maxDailyLoss", "maximum_daily_loss"}
	drawdownAliases    = []string{"maxDrawdownPercent", "maxDrawdown", "maximumTotalLoss", "max_drawdown"}
	profitRuleAliases  = []string{"profitTargetPercent", "profitTarget", "profit_target"}
	metricsMaxDrawdown = []string{"maxDrawdown", "maxDrawdownPercent"}
)

// ParseRules 从松散 JSON 中解析挑战规则
func ParseRules(raw []byte) (*Rules, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(raw)
	if nested := root.Get("rules"); nested.IsObject() {
		root = nested
	}

	days, _ := number(first(root, daysAliases...))
	dailyLoss, _ := number(first(root, dailyLossAliases...))
	drawdown, _ := number(first(root, drawdownAliases...))
	profit, _ := number(first(root, profitRuleAliases...))

	return &Rules{
		MinimumTradingDays:      wholeDays(days),
		MaximumDailyLossPercent: dailyLoss,
		MaxDrawdownPercent:      drawdown,
		ProfitTargetPercent:     profit,
	}, nil
}

// ParseMetrics 从 MetaStats 风格的 JSON 中解析账户指标，dailyGrowth 不是数组时视为空
func ParseMetrics(raw []byte) (*Metrics, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(raw)
	if nested := root.Get("metrics"); nested.IsObject() {
		root = nested
	}

	m := &Metrics{}
	m.DaysSinceTradingStarted, _ = number(root.Get("daysSinceTradingStarted"))
	m.Profit, _ = number(root.Get("profit"))
	m.MaxDrawdown = optional(first(root, metricsMaxDrawdown...))
	m.WorstTrade = optional(root.Get("worstTrade"))
	m.LostTrades = optional(root.Get("lostTrades"))
	m.AverageLoss = optional(root.Get("averageLoss"))

	if growth := root.Get("dailyGrowth"); growth.IsArray() {
		for _, day := range growth.Array() {
			if !day.IsObject() {
				continue
			}
			profit, _ := number(day.Get("profit"))
			drawdown, _ := number(day.Get("drawdownProfit"))
			m.DailyGrowth = append(m.DailyGrowth, DailyGrowth{
				Date:           day.Get("date").String(),
				Profit:         profit,
				DrawdownProfit: drawdown,
			})
		}
	}
	return m, nil
}

// wholeDays 向下取整并限制在 int32 范围内，NaN 视为 0
func wholeDays(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Floor(v))
}

func first(root gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// number 接受数字或数字字符串（允许 "%" 后缀）
func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		s := strings.TrimSuffix(strings.TrimSpace(v.Str), "%")
		f, err := cast.ToFloat64E(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func optional(v gjson.Result) *float64 {
	f, ok := number(v)
	if !ok {
		return nil
	}
	return &f
}
