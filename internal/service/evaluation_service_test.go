package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/metaapi"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationService_Passes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	account := f.account(t, challenge.ID, "meta-1", 0)
	f.metrics.metrics["meta-1"] = passingMetrics()

	result, err := f.evaluation.Evaluate(ctx, account.ID)
	require.NoError(t, err)

	assert.True(t, result.Report.Passed)
	assert.Equal(t, 10000.0, result.Report.InitialBalance)
	assert.Equal(t, models.AccountStatusPassed, result.Account.Status)
	assert.True(t, result.StatusChanged())

	require.Len(t, f.notifier.changes, 1)
	change := f.notifier.changes[0]
	assert.Equal(t, models.AccountStatusActive, change.From)
	assert.Equal(t, models.AccountStatusPassed, change.To)
	assert.Equal(t, "Starter 10K", change.ChallengeName)

	stored, err := f.accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPassed, stored.Status)
	assert.NotNil(t, stored.LastEvaluatedAt)

	latest, err := f.evaluation.EvaluationRepo.FindLatestByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, latest.Passed)
	assert.Len(t, latest.Objectives, 4)

	// 终态账户再次评估不会再改变状态
	_, err = f.evaluation.Evaluate(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, f.notifier.changes, 1)
}

func TestEvaluationService_StatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		metrics *objective.Metrics
		want    string
		notify  bool
	}{
		{
			name:    "loss breach fails the account",
			metrics: &objective.Metrics{DaysSinceTradingStarted: 5, DailyGrowth: []objective.DailyGrowth{{Date: "d1", Profit: -650}}, Profit: 900},
			want:    models.AccountStatusFailed,
			notify:  true,
		},
		{
			name:    "profit target pending stays active",
			metrics: &objective.Metrics{DaysSinceTradingStarted: 5, DailyGrowth: []objective.DailyGrowth{{Date: "d1", Profit: 120}}, Profit: 120},
			want:    models.AccountStatusActive,
		},
		{
			name:    "not enough trading days stays active",
			metrics: &objective.Metrics{DaysSinceTradingStarted: 1, Profit: 1200, MaxDrawdown: objective.Float(1)},
			want:    models.AccountStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			challenge := f.syncedChallenge(t)
			account := f.account(t, challenge.ID, "meta-1", 0)
			f.metrics.metrics["meta-1"] = tt.metrics

			result, err := f.evaluation.Evaluate(context.Background(), account.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Account.Status)
			assert.Equal(t, tt.notify, len(f.notifier.changes) == 1)
		})
	}
}

func TestEvaluationService_InitialBalancePrecedence(t *testing.T) {
	tests := []struct {
		name             string
		accountBalance   float64
		challengeBalance float64
		deposits         float64
		want             float64
	}{
		{"account wins", 25000, 10000, 5000, 25000},
		{"challenge next", 0, 50000, 5000, 50000},
		{"deposits next", 0, 0, 5000, 5000},
		{"default last", 0, 0, 0, objective.DefaultInitialBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.strapi.challenges[0] = standardChallenge(1, tt.challengeBalance)
			challenge := f.syncedChallenge(t)
			account := f.account(t, challenge.ID, "meta-1", tt.accountBalance)
			f.metrics.metrics["meta-1"] = passingMetrics()
			f.metrics.summary["meta-1"] = &metaapi.AccountSummary{Deposits: tt.deposits}

			result, err := f.evaluation.Evaluate(context.Background(), account.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Report.InitialBalance)
			assert.Equal(t, tt.want, result.Evaluation.InitialBalance)
		})
	}
}

func TestEvaluationService_MetricsFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	account := f.account(t, challenge.ID, "meta-1", 0)

	f.metrics.err = errors.New("gateway timeout")
	_, err := f.evaluation.Evaluate(ctx, account.ID)
	assert.ErrorContains(t, err, "gateway timeout")

	f.metrics.err = metaapi.ErrAccountNotFound
	_, err = f.evaluation.Evaluate(ctx, account.ID)
	assert.ErrorIs(t, err, xe.ErrAccountNotFound)

	history, err := f.evaluation.History(ctx, account.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	stored, err := f.accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastEvaluatedAt)
	assert.Empty(t, f.notifier.changes)
}

func TestEvaluationService_DisabledAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	account := f.account(t, challenge.ID, "meta-1", 0)
	require.NoError(t, f.accounts.Disable(ctx, account.ID))

	_, err := f.evaluation.Evaluate(ctx, account.ID)
	assert.ErrorIs(t, err, xe.ErrAccountDisabled)

	_, err = f.evaluation.Evaluate(ctx, "missing")
	assert.ErrorIs(t, err, xe.ErrAccountNotFound)
}

func TestEvaluationService_DisabledDuringEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	account := f.account(t, challenge.ID, "meta-1", 0)
	f.metrics.metrics["meta-1"] = passingMetrics()
	f.metrics.onFetch = func() {
		require.NoError(t, f.accounts.Disable(ctx, account.ID))
	}

	result, err := f.evaluation.Evaluate(ctx, account.ID)
	require.NoError(t, err)

	assert.False(t, result.StatusChanged())
	assert.Equal(t, models.AccountStatusDisabled, result.Account.Status)
	assert.Empty(t, f.notifier.changes)

	stored, err := f.accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusDisabled, stored.Status)
}

func TestEvaluationService_EvaluateActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	f.account(t, challenge.ID, "meta-1", 0)
	f.account(t, challenge.ID, "meta-2", 0)
	f.account(t, challenge.ID, "meta-3", 0)
	f.metrics.metrics["meta-1"] = passingMetrics()
	f.metrics.metrics["meta-3"] = &objective.Metrics{DaysSinceTradingStarted: 1}

	result, err := f.evaluation.EvaluateActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, &CycleResult{Total: 3, Evaluated: 2, Failed: 1}, result)

	// meta-1 已通过，下一轮只剩两个进行中的账户
	result, err = f.evaluation.EvaluateActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestEvaluationService_HistoryAndExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	challenge := f.syncedChallenge(t)
	account := f.account(t, challenge.ID, "meta-1", 0)
	f.metrics.metrics["meta-1"] = &objective.Metrics{DaysSinceTradingStarted: 1, Profit: 100}

	for i := 0; i < 3; i++ {
		_, err := f.evaluation.Evaluate(ctx, account.ID)
		require.NoError(t, err)
	}

	history, err := f.evaluation.History(ctx, account.ID, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = f.evaluation.History(ctx, "missing", 2)
	assert.ErrorIs(t, err, xe.ErrAccountNotFound)

	var buf bytes.Buffer
	require.NoError(t, f.evaluation.ExportCSV(ctx, account.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+3*4)
	assert.Equal(t, "evaluation_id", records[0][0])
	assert.Contains(t, records[0], "observed_percent_of_target")
	assert.Equal(t, account.ID, records[1][2])
}
