package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/testkit"
	"github.com/dushixiang/propdesk/pkg/metaapi"
	"github.com/dushixiang/propdesk/pkg/n8n"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dushixiang/propdesk/pkg/strapi"
	"github.com/dushixiang/propdesk/pkg/woocommerce"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStrapi struct {
	challenges []strapi.Challenge
	err        error
}

func (f *fakeStrapi) ListChallenges(ctx context.Context) ([]strapi.Challenge, error) {
	return f.challenges, f.err
}

type fakeMetrics struct {
	metrics map[string]*objective.Metrics
	summary map[string]*metaapi.AccountSummary
	err     error
	// onFetch 在返回指标前调用，用于模拟并发修改
	onFetch func()
}

func (f *fakeMetrics) GetMetrics(ctx context.Context, accountID string) (*objective.Metrics, *metaapi.AccountSummary, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	m, ok := f.metrics[accountID]
	if !ok {
		return nil, nil, errors.New("upstream unavailable")
	}
	return m, f.summary[accountID], nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	changes []StatusChange
}

func (f *fakeNotifier) AccountStatusChanged(ctx context.Context, change StatusChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, change)
}

type fakeSender struct {
	chatID   string
	messages []string
	err      error
}

func (f *fakeSender) Notify(chatId, msg string) error {
	f.chatID = chatId
	f.messages = append(f.messages, msg)
	return f.err
}

type fakeSink struct {
	events []n8n.Event
	err    error
}

func (f *fakeSink) Notify(ctx context.Context, event n8n.Event) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeOrders struct {
	orders []woocommerce.Order
	params []woocommerce.ListOrdersParams
}

func (f *fakeOrders) ListOrders(ctx context.Context, params woocommerce.ListOrdersParams) ([]woocommerce.Order, error) {
	f.params = append(f.params, params)
	var out []woocommerce.Order
	for _, o := range f.orders {
		if params.After.IsZero() || o.CreatedAt.After(params.After) {
			out = append(out, o)
		}
	}
	return out, nil
}

type fixture struct {
	db         *gorm.DB
	strapi     *fakeStrapi
	metrics    *fakeMetrics
	notifier   *fakeNotifier
	challenges *ChallengeService
	accounts   *AccountService
	evaluation *EvaluationService
}

func standardChallenge(id int, balance float64) strapi.Challenge {
	return strapi.Challenge{
		ID:             id,
		Name:           "Starter 10K",
		Phase:          "phase-1",
		InitialBalance: balance,
		Rules: objective.Rules{
			MinimumTradingDays:      2,
			MaximumDailyLossPercent: 5,
			MaxDrawdownPercent:      10,
			ProfitTargetPercent:     8,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testkit.NewDB(t)
	logger := testkit.Logger()

	f := &fixture{
		db:       db,
		strapi:   &fakeStrapi{challenges: []strapi.Challenge{standardChallenge(1, 10000)}},
		metrics:  &fakeMetrics{metrics: map[string]*objective.Metrics{}, summary: map[string]*metaapi.AccountSummary{}},
		notifier: &fakeNotifier{},
	}
	f.challenges = newChallengeService(logger, db, f.strapi)
	f.accounts = NewAccountService(logger, db, f.challenges)
	f.evaluation = newEvaluationService(logger, db, config.EvaluationConf{}, f.metrics, f.notifier, f.accounts, f.challenges)
	return f
}

// syncedChallenge 同步后返回本地挑战
func (f *fixture) syncedChallenge(t *testing.T) models.Challenge {
	t.Helper()
	_, err := f.challenges.Sync(context.Background())
	require.NoError(t, err)
	list, err := f.challenges.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0]
}

func (f *fixture) account(t *testing.T, challengeID, metaApiID string, balance float64) *models.BrokerAccount {
	t.Helper()
	account, err := f.accounts.Create(context.Background(), CreateAccountRequest{
		Login:          "500" + metaApiID,
		Platform:       "MT5",
		MetaApiID:      metaApiID,
		ChallengeID:    challengeID,
		InitialBalance: balance,
		TraderEmail:    "trader@example.com",
	})
	require.NoError(t, err)
	return account
}

func passingMetrics() *objective.Metrics {
	return &objective.Metrics{
		DaysSinceTradingStarted: 3,
		DailyGrowth:             []objective.DailyGrowth{{Date: "d1", Profit: -200}},
		MaxDrawdown:             objective.Float(4),
		Profit:                  900,
	}
}
