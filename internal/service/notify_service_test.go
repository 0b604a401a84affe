package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/testkit"
	"github.com/dushixiang/propdesk/pkg/n8n"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusChange(t *testing.T, to string) StatusChange {
	t.Helper()
	report, err := objective.Evaluate(&objective.Rules{MinimumTradingDays: 2, MaximumDailyLossPercent: 5, MaxDrawdownPercent: 10, ProfitTargetPercent: 8}, passingMetrics(), 10000)
	require.NoError(t, err)
	return StatusChange{
		Account: models.BrokerAccount{
			ID:          "acc-1",
			Login:       "5001_234",
			Platform:    models.PlatformMT5,
			TraderEmail: "ada@example.com",
		},
		ChallengeName: "Starter 10K",
		From:          models.AccountStatusActive,
		To:            to,
		Report:        report,
	}
}

func TestNotifyService_AccountStatusChanged(t *testing.T) {
	sender := &fakeSender{}
	sink := &fakeSink{}
	s := &NotifyService{logger: testkit.Logger(), chatID: "-100200", sender: sender, sink: sink}

	s.AccountStatusChanged(context.Background(), statusChange(t, models.AccountStatusPassed))

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "-100200", sender.chatID)
	msg := sender.messages[0]
	assert.Contains(t, msg, "Challenge passed")
	assert.Contains(t, msg, `5001\_234 (MT5)`)
	assert.Contains(t, msg, "Starter 10K")
	assert.Contains(t, msg, "ada@example.com")
	assert.Contains(t, msg, "Profit target $800")

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, n8n.EventAccountPassed, event.Type)
	assert.True(t, event.Passed)
	assert.Equal(t, "ada@example.com", event.Email)
	assert.Len(t, event.Objectives, 4)
}

func TestNotifyService_FailuresAreSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("telegram down")}
	sink := &fakeSink{err: errors.New("n8n down")}
	s := &NotifyService{logger: testkit.Logger(), chatID: "1", sender: sender, sink: sink}

	assert.NotPanics(t, func() {
		s.AccountStatusChanged(context.Background(), statusChange(t, models.AccountStatusFailed))
	})
	assert.Len(t, sender.messages, 1)
	require.Len(t, sink.events, 1)
	assert.Equal(t, n8n.EventAccountFailed, sink.events[0].Type)
}

func TestNewNotifyService_WithoutChannels(t *testing.T) {
	s := NewNotifyService(testkit.Logger(), &config.Config{}, nil, n8n.New("", false, config.HTTPConf{}.Options()))
	assert.Nil(t, s.sender)
	assert.Nil(t, s.sink)
	s.AccountStatusChanged(context.Background(), statusChange(t, models.AccountStatusPassed))
}
