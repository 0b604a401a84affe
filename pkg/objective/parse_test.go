package objective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Rules
	}{
		{
			name: "canonical names",
			raw:  `{"minimumTradingDays":2,"maximumDailyLossPercent":5,"maxDrawdownPercent":10,"profitTargetPercent":8}`,
			want: Rules{MinimumTradingDays: 2, MaximumDailyLossPercent: 5, MaxDrawdownPercent: 10, ProfitTargetPercent: 8},
		},
		{
			name: "cms aliases with string values",
			raw:  `{"minTradingDays":"4","maxDailyLoss":"5%","maxDrawdown":" 12 ","profitTarget":"10"}`,
			want: Rules{MinimumTradingDays: 4, MaximumDailyLossPercent: 5, MaxDrawdownPercent: 12, ProfitTargetPercent: 10},
		},
		{
			name: "nested rules object",
			raw:  `{"id":7,"rules":{"minimum_trading_days":3.9,"maximum_daily_loss":4,"max_drawdown":8}}`,
			want: Rules{MinimumTradingDays: 3, MaximumDailyLossPercent: 4, MaxDrawdownPercent: 8},
		},
		{
			name: "out of range days saturate",
			raw:  `{"minimumTradingDays":1e19,"maximumDailyLossPercent":5}`,
			want: Rules{MinimumTradingDays: math.MaxInt32, MaximumDailyLossPercent: 5},
		},
		{
			name: "infinite days saturate",
			raw:  `{"minimumTradingDays":"Inf"}`,
			want: Rules{MinimumTradingDays: math.MaxInt32},
		},
		{
			name: "negative infinite days saturate",
			raw:  `{"minimumTradingDays":"-Inf"}`,
			want: Rules{MinimumTradingDays: math.MinInt32},
		},
		{
			name: "nan days fall back to zero",
			raw:  `{"minimumTradingDays":"NaN"}`,
			want: Rules{},
		},
		{
			name: "null and garbage fall back to zero",
			raw:  `{"minimumTradingDays":null,"maximumDailyLossPercent":"n/a","maxDrawdownPercent":true}`,
			want: Rules{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseRules_InvalidJSON(t *testing.T) {
	_, err := ParseRules([]byte(`{"minimumTradingDays":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestParseMetrics(t *testing.T) {
	raw := `{
		"metrics": {
			"daysSinceTradingStarted": 3.4,
			"profit": "900.5",
			"maxDrawdown": 4,
			"worstTrade": -120,
			"lostTrades": 2,
			"dailyGrowth": [
				{"date": "2024-05-01", "profit": -200, "drawdownProfit": 250},
				"junk",
				{"date": "2024-05-02", "profit": 1100.5}
			]
		}
	}`

	m, err := ParseMetrics([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 3.4, m.DaysSinceTradingStarted)
	assert.Equal(t, 900.5, m.Profit)
	require.NotNil(t, m.MaxDrawdown)
	assert.Equal(t, 4.0, *m.MaxDrawdown)
	require.NotNil(t, m.WorstTrade)
	assert.Equal(t, -120.0, *m.WorstTrade)
	require.NotNil(t, m.LostTrades)
	assert.Equal(t, 2.0, *m.LostTrades)
	assert.Nil(t, m.AverageLoss)

	require.Len(t, m.DailyGrowth, 2)
	assert.Equal(t, DailyGrowth{Date: "2024-05-01", Profit: -200, DrawdownProfit: 250}, m.DailyGrowth[0])
	assert.Equal(t, "2024-05-02", m.DailyGrowth[1].Date)
}

func TestParseMetrics_DailyGrowthNotArray(t *testing.T) {
	m, err := ParseMetrics([]byte(`{"profit":-50,"dailyGrowth":{"date":"d1","profit":-10}}`))
	require.NoError(t, err)
	assert.Empty(t, m.DailyGrowth)

	report, err := Evaluate(standardRules(), m, 10000)
	require.NoError(t, err)
	daily, _ := report.Find(KindMaxDailyLoss)
	assert.Equal(t, SourceProfit, daily.Source)
	assert.InDelta(t, 50.0, daily.ObservedAbsolute, 1e-9)
}

func TestParseMetrics_InvalidJSON(t *testing.T) {
	_, err := ParseMetrics([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}
