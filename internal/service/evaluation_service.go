package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dushixiang/propdesk/internal/config"
	"github.com/dushixiang/propdesk/internal/models"
	"github.com/dushixiang/propdesk/internal/repo"
	"github.com/dushixiang/propdesk/internal/xe"
	"github.com/dushixiang/propdesk/pkg/metaapi"
	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/go-orz/orz"
	"github.com/gocarina/gocsv"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MetricsSource 账户指标来源
type MetricsSource interface {
	GetMetrics(ctx context.Context, accountID string) (*objective.Metrics, *metaapi.AccountSummary, error)
}

// StatusNotifier 账户状态变化通知
type StatusNotifier interface {
	AccountStatusChanged(ctx context.Context, change StatusChange)
}

// EvaluationService 账户目标评估
type EvaluationService struct {
	*orz.Service
	logger           *zap.Logger
	conf             config.EvaluationConf
	metrics          MetricsSource
	notifier         StatusNotifier
	accountService   *AccountService
	challengeService *ChallengeService
	EvaluationRepo   *repo.EvaluationRepo
}

func NewEvaluationService(
	logger *zap.Logger,
	db *gorm.DB,
	conf *config.Config,
	metrics *metaapi.Client,
	notifier *NotifyService,
	accountService *AccountService,
	challengeService *ChallengeService,
) *EvaluationService {
	return newEvaluationService(logger, db, conf.Evaluation, metrics, notifier, accountService, challengeService)
}

func newEvaluationService(
	logger *zap.Logger,
	db *gorm.DB,
	conf config.EvaluationConf,
	metrics MetricsSource,
	notifier StatusNotifier,
	accountService *AccountService,
	challengeService *ChallengeService,
) *EvaluationService {
	if conf.DefaultInitialBalance <= 0 {
		conf.DefaultInitialBalance = objective.DefaultInitialBalance
	}
	return &EvaluationService{
		Service:          orz.NewService(db),
		logger:           logger,
		conf:             conf,
		metrics:          metrics,
		notifier:         notifier,
		accountService:   accountService,
		challengeService: challengeService,
		EvaluationRepo:   repo.NewEvaluationRepo(db),
	}
}

// EvaluationResult 一次评估的结果
type EvaluationResult struct {
	Account    *models.BrokerAccount   `json:"account"`
	Challenge  *models.Challenge       `json:"challenge"`
	Evaluation *models.Evaluation      `json:"evaluation"`
	Report     *objective.Report       `json:"report"`
	Summary    *metaapi.AccountSummary `json:"summary"`
	PrevStatus string                  `json:"prev_status"`
}

// StatusChanged 本次评估是否改变了账户状态
func (r *EvaluationResult) StatusChanged() bool {
	return r.PrevStatus != r.Account.Status
}

// Evaluate 拉取指标、计算目标、保存快照并更新账户状态
func (s *EvaluationService) Evaluate(ctx context.Context, accountID string) (*EvaluationResult, error) {
	account, err := s.accountService.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == models.AccountStatusDisabled {
		return nil, fmt.Errorf("%w: %s", xe.ErrAccountDisabled, accountID)
	}

	challenge, err := s.challengeService.Get(ctx, account.ChallengeID)
	if err != nil {
		return nil, err
	}
	rules := challenge.Rules()

	metrics, summary, err := s.metrics.GetMetrics(ctx, account.MetaApiID)
	if err != nil {
		if errors.Is(err, metaapi.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: metaapi has no account %s", xe.ErrAccountNotFound, account.MetaApiID)
		}
		return nil, fmt.Errorf("fetch metrics for account %s: %w", account.ID, err)
	}

	balance := s.initialBalance(account, challenge, summary)
	report, err := objective.Evaluate(&rules, metrics, balance)
	if err != nil {
		return nil, fmt.Errorf("evaluate account %s: %w", account.ID, err)
	}

	now := time.Now()
	evaluation := &models.Evaluation{
		ID:             ulid.Make().String(),
		AccountID:      account.ID,
		ChallengeID:    challenge.ID,
		Passed:         report.Passed,
		Degraded:       report.Degraded,
		InitialBalance: report.InitialBalance,
		Objectives:     report.Objectives,
		Notes:          report.Notes,
		EvaluatedAt:    now,
	}

	prev := account.Status
	next := nextStatus(prev, report)

	var updated bool
	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.EvaluationRepo.Create(ctx, evaluation); err != nil {
			return err
		}
		var err error
		updated, err = s.accountService.AccountRepo.UpdateEvaluated(ctx, account.ID, prev, next, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("save evaluation for account %s: %w", account.ID, err)
	}
	if updated {
		account.Status = next
		account.LastEvaluatedAt = &now
	} else {
		// 评估期间状态被其他请求修改（例如停用），以库中状态为准，不做状态迁移
		current, err := s.accountService.Get(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("account status changed during evaluation, skipping transition",
			zap.String("account_id", account.ID),
			zap.String("expected", prev),
			zap.String("current", current.Status))
		account = current
		prev, next = current.Status, current.Status
	}

	result := &EvaluationResult{
		Account:    account,
		Challenge:  challenge,
		Evaluation: evaluation,
		Report:     report,
		Summary:    summary,
		PrevStatus: prev,
	}

	s.logger.Info("account evaluated",
		zap.String("account_id", account.ID),
		zap.String("login", account.Login),
		zap.Bool("passed", report.Passed),
		zap.Bool("degraded", report.Degraded),
		zap.String("status", next))

	if result.StatusChanged() && s.notifier != nil {
		s.notifier.AccountStatusChanged(ctx, StatusChange{
			Account:       *account,
			ChallengeName: challenge.Name,
			From:          prev,
			To:            next,
			Report:        report,
		})
	}
	return result, nil
}

// initialBalance 依次取账户、挑战、入金总额，都没有时用默认值
func (s *EvaluationService) initialBalance(account *models.BrokerAccount, challenge *models.Challenge, summary *metaapi.AccountSummary) float64 {
	switch {
	case account.InitialBalance > 0:
		return account.InitialBalance
	case challenge.InitialBalance > 0:
		return challenge.InitialBalance
	case summary != nil && summary.Deposits > 0:
		return summary.Deposits
	}
	return s.conf.DefaultInitialBalance
}

// nextStatus 只有进行中的账户会变更状态，passed/failed 为终态
func nextStatus(current string, report *objective.Report) string {
	if current != models.AccountStatusActive {
		return current
	}
	switch {
	case report.LossBreached():
		return models.AccountStatusFailed
	case report.Passed:
		return models.AccountStatusPassed
	}
	return models.AccountStatusActive
}

// CycleResult 一轮批量评估的统计
type CycleResult struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Failed    int `json:"failed"`
}

// EvaluateActive 评估所有进行中的账户，单个账户失败不影响其他账户
func (s *EvaluationService) EvaluateActive(ctx context.Context) (*CycleResult, error) {
	accounts, err := s.accountService.AccountRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active accounts: %w", err)
	}

	result := &CycleResult{Total: len(accounts)}
	for _, account := range accounts {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, err := s.Evaluate(ctx, account.ID); err != nil {
			result.Failed++
			s.logger.Error("account evaluation failed",
				zap.String("account_id", account.ID),
				zap.String("login", account.Login),
				zap.Error(err))
			continue
		}
		result.Evaluated++
	}
	return result, nil
}

// History 账户的历史评估，按时间倒序
func (s *EvaluationService) History(ctx context.Context, accountID string, limit int) ([]models.Evaluation, error) {
	if _, err := s.accountService.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.EvaluationRepo.FindByAccount(ctx, accountID, limit)
}

type evaluationRow struct {
	EvaluationID            string  `csv:"evaluation_id"`
	EvaluatedAt             string  `csv:"evaluated_at"`
	AccountID               string  `csv:"account_id"`
	InitialBalance          float64 `csv:"initial_balance"`
	Passed                  bool    `csv:"passed"`
	Degraded                bool    `csv:"degraded"`
	Kind                    string  `csv:"kind"`
	Name                    string  `csv:"name"`
	TargetAbsolute          float64 `csv:"target_absolute"`
	ObservedAbsolute        float64 `csv:"observed_absolute"`
	ObservedPercentOfTarget float64 `csv:"observed_percent_of_target"`
	ObjectivePassed         bool    `csv:"objective_passed"`
	Source                  string  `csv:"source"`
}

// ExportCSV 每个目标一行导出账户的全部评估
func (s *EvaluationService) ExportCSV(ctx context.Context, accountID string, w io.Writer) error {
	evaluations, err := s.History(ctx, accountID, 0)
	if err != nil {
		return err
	}

	rows := make([]*evaluationRow, 0, len(evaluations)*4)
	for _, e := range evaluations {
		for _, o := range e.Objectives {
			rows = append(rows, &evaluationRow{
				EvaluationID:            e.ID,
				EvaluatedAt:             e.EvaluatedAt.UTC().Format(time.RFC3339),
				AccountID:               e.AccountID,
				InitialBalance:          e.InitialBalance,
				Passed:                  e.Passed,
				Degraded:                e.Degraded,
				Kind:                    string(o.Kind),
				Name:                    o.Name,
				TargetAbsolute:          o.TargetAbsolute,
				ObservedAbsolute:        o.ObservedAbsolute,
				ObservedPercentOfTarget: o.ObservedPercentOfTarget,
				ObjectivePassed:         o.Passed,
				Source:                  o.Source,
			})
		}
	}
	return gocsv.Marshal(rows, w)
}
