package objective

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Evaluate 根据挑战规则和账户指标计算各项目标。
// 规则或指标缺失时返回 ErrRulesMissing / ErrMetricsMissing，其余异常输入一律降级为安全默认值。
func Evaluate(rules *Rules, metrics *Metrics, initialBalance float64) (*Report, error) {
	if rules == nil {
		return nil, ErrRulesMissing
	}
	if metrics == nil {
		return nil, ErrMetricsMissing
	}

	e := &evaluation{}
	balance := e.balance(initialBalance)
	r := e.rules(rules)

	objectives := []Objective{
		e.minTradingDays(r, metrics),
		e.maxDailyLoss(r, metrics, balance),
		e.maxTotalLoss(r, metrics, balance),
	}
	if r.ProfitTargetPercent > 0 {
		objectives = append(objectives, e.profitTarget(r, metrics, balance))
	}

	report := &Report{
		Objectives:     objectives,
		InitialBalance: balance,
		Passed:         true,
		Degraded:       len(e.notes) > 0,
		Notes:          e.notes,
	}
	for i := range report.Objectives {
		o := &report.Objectives[i]
		describe(o)
		if !o.Passed {
			report.Passed = false
		}
		if o.Degraded {
			report.Degraded = true
		}
	}
	return report, nil
}

type evaluation struct {
	notes []string
}

func (e *evaluation) note(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	for _, n := range e.notes {
		if n == msg {
			return
		}
	}
	e.notes = append(e.notes, msg)
}

// num 将 NaN/Inf 替换为 0，输入与中间结果都要经过这里
func (e *evaluation) num(field string, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.note("%s is not a finite number, using 0", field)
		return 0
	}
	return v
}

// opt 读取可选字段，缺失或非有限值时 ok 为 false
func (e *evaluation) opt(field string, v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		e.note("%s is not a finite number, ignoring it", field)
		return 0, false
	}
	return *v, true
}

func (e *evaluation) balance(v float64) float64 {
	switch {
	case v == 0:
		return DefaultInitialBalance
	case math.IsNaN(v) || math.IsInf(v, 0) || v < 0:
		e.note("initial balance %v is invalid, using %.0f", v, DefaultInitialBalance)
		return DefaultInitialBalance
	}
	return v
}

func (e *evaluation) rules(in *Rules) Rules {
	r := Rules{
		MinimumTradingDays:      in.MinimumTradingDays,
		MaximumDailyLossPercent: e.num("rules.maximumDailyLossPercent", in.MaximumDailyLossPercent),
		MaxDrawdownPercent:      e.num("rules.maxDrawdownPercent", in.MaxDrawdownPercent),
		ProfitTargetPercent:     e.num("rules.profitTargetPercent", in.ProfitTargetPercent),
	}
	if r.MinimumTradingDays < 0 {
		e.note("rules.minimumTradingDays %d is negative, using 0", r.MinimumTradingDays)
		r.MinimumTradingDays = 0
	}
	return r
}

func (e *evaluation) minTradingDays(r Rules, m *Metrics) Objective {
	days := math.Max(0, math.Floor(e.num("metrics.daysSinceTradingStarted", m.DaysSinceTradingStarted)))
	required := float64(r.MinimumTradingDays)
	percent := e.num("min_trading_days.percent", days/math.Max(1, required)*100)

	return Objective{
		Kind:                    KindMinTradingDays,
		Name:                    fmt.Sprintf("Minimum %d trading days", r.MinimumTradingDays),
		TargetAbsolute:          required,
		ObservedAbsolute:        days,
		ObservedPercentOfTarget: percent,
		Passed:                  days >= required,
		Source:                  SourceDays,
	}
}

func (e *evaluation) maxDailyLoss(r Rules, m *Metrics, balance float64) Objective {
	target := math.Max(0, e.num("max_daily_loss.target", balance*(r.MaximumDailyLossPercent/100)))

	var observed float64
	source := SourceDailyGrowth
	degraded := false

	if len(m.DailyGrowth) > 0 {
		for i, day := range m.DailyGrowth {
			loss := dayLoss(
				e.num(fmt.Sprintf("metrics.dailyGrowth[%d].profit", i), day.Profit),
				e.num(fmt.Sprintf("metrics.dailyGrowth[%d].drawdownProfit", i), day.DrawdownProfit),
			)
			if loss > observed {
				observed = loss
			}
		}
	} else {
		degraded = true
		worst, hasWorst := e.opt("metrics.worstTrade", m.WorstTrade)
		profit := e.num("metrics.profit", m.Profit)
		switch {
		case hasWorst && worst < 0:
			observed, source = math.Abs(worst), SourceWorstTrade
		case profit < 0:
			observed, source = math.Abs(profit), SourceProfit
		default:
			observed, source = 0, SourceNone
		}
	}
	observed = math.Max(0, e.num("max_daily_loss.observed", observed))

	return Objective{
		Kind:                    KindMaxDailyLoss,
		Name:                    "Max daily loss - " + money(target),
		TargetAbsolute:          target,
		ObservedAbsolute:        observed,
		ObservedPercentOfTarget: e.num("max_daily_loss.percent", percentOf(observed, target)),
		Passed:                  observed <= target,
		Degraded:                degraded,
		Source:                  source,
	}
}

// dayLoss 单日亏损取已实现亏损与日内回撤的较大者
func dayLoss(profit, drawdownProfit float64) float64 {
	var realized, drawdown float64
	if profit < 0 {
		realized = math.Abs(profit)
	}
	if drawdownProfit > 0 {
		drawdown = drawdownProfit
	}
	return math.Max(realized, drawdown)
}

func (e *evaluation) maxTotalLoss(r Rules, m *Metrics, balance float64) Objective {
	target := math.Max(0, e.num("max_total_loss.target", balance*(r.MaxDrawdownPercent/100)))

	var observed float64
	var source string
	degraded := true

	lost, hasLost := e.opt("metrics.lostTrades", m.LostTrades)
	avgLoss, hasAvg := e.opt("metrics.averageLoss", m.AverageLoss)
	profit := e.num("metrics.profit", m.Profit)

	if dd, ok := e.opt("metrics.maxDrawdown", m.MaxDrawdown); ok {
		observed, source, degraded = balance*(dd/100), SourceMaxDrawdown, false
	} else if hasLost && hasAvg {
		observed, source = math.Abs(lost*avgLoss), SourceLostTrades
	} else if profit < 0 {
		observed, source = math.Abs(profit), SourceProfit
	} else {
		observed, source = 0, SourceNone
	}
	observed = math.Max(0, e.num("max_total_loss.observed", observed))

	return Objective{
		Kind:                    KindMaxTotalLoss,
		Name:                    "Max total loss - " + money(target),
		TargetAbsolute:          target,
		ObservedAbsolute:        observed,
		ObservedPercentOfTarget: e.num("max_total_loss.percent", percentOf(observed, target)),
		Passed:                  observed <= target,
		Degraded:                degraded,
		Source:                  source,
	}
}

func (e *evaluation) profitTarget(r Rules, m *Metrics, balance float64) Objective {
	target := math.Max(0, e.num("profit_target.target", balance*(r.ProfitTargetPercent/100)))
	observed := math.Max(0, e.num("metrics.profit", m.Profit))

	percent := 0.0
	if observed != 0 {
		percent = e.num("profit_target.percent", percentOf(observed, target))
	}

	return Objective{
		Kind:                    KindProfitTarget,
		Name:                    "Profit target " + money(target),
		TargetAbsolute:          target,
		ObservedAbsolute:        observed,
		ObservedPercentOfTarget: percent,
		Passed:                  observed >= target,
		Source:                  SourceProfit,
	}
}

// percentOf 目标为 0 时返回 0 或 100，避免出现 NaN/Inf
func percentOf(observed, target float64) float64 {
	if target <= 0 {
		if observed <= 0 {
			return 0
		}
		return 100
	}
	return observed / target * 100
}

func money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}
